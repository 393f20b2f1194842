package md2img

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// stageFunc performs the work of one stage under the stage context.
type stageFunc func(ctx context.Context) error

// runStage runs fn under its own deadline and advances m on success.
// Failures come back as *RenderError attributed to stage.
func (r *Renderer) runStage(ctx context.Context, m *stageMachine, log *zap.Logger, stage Stage, fn stageFunc) error {
	if err := ctx.Err(); err != nil {
		return newRenderError(stage, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.stageTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(stageCtx); err != nil {
		return newRenderError(stage, stageFailure(ctx, stageCtx, stage, err))
	}
	took := time.Since(start)

	if err := m.advance(stage, took); err != nil {
		return newRenderError(stage, err)
	}
	r.observer.StageCompleted(stage, took)
	log.Debug("stage completed", zap.Stringer("stage", stage), zap.Duration("took", took))
	return nil
}

// stageFailure attributes err to its cause. Cancellation of the caller's
// context wins over everything; a deadline inside the stage becomes the
// stage's timeout error; anything else is returned unchanged.
func stageFailure(parent, stageCtx context.Context, stage Stage, err error) error {
	if perr := parent.Err(); perr != nil {
		return fmt.Errorf("%w: %v", perr, err)
	}
	if stageCtx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", stage.timeoutErr(), err)
	}
	return err
}

// awaitReadiness drives the page from blank to a visible render root.
func (r *Renderer) awaitReadiness(ctx context.Context, sess Session, m *stageMachine, log *zap.Logger, html string) error {
	if err := r.runStage(ctx, m, log, StageContentLoaded, func(ctx context.Context) error {
		return sess.Load(ctx, html)
	}); err != nil {
		return err
	}

	if err := r.runStage(ctx, m, log, StageLibraryReady, func(ctx context.Context) error {
		return sess.WaitGlobal(ctx, ComponentNamespace)
	}); err != nil {
		return err
	}

	return r.runStage(ctx, m, log, StageElementRendered, func(ctx context.Context) error {
		return sess.WaitVisible(ctx, RootSelector)
	})
}
