package md2img

import (
	"fmt"
	"time"
)

// Stage is a step of the render protocol. Stages only move forward, one at a time.
type Stage int

const (
	StagePending Stage = iota
	StageContentLoaded
	StageLibraryReady
	StageElementRendered
	StageExportTriggered
	StageImageCaptured
)

var stageNames = [...]string{
	StagePending:         "pending",
	StageContentLoaded:   "content_loaded",
	StageLibraryReady:    "library_ready",
	StageElementRendered: "element_rendered",
	StageExportTriggered: "export_triggered",
	StageImageCaptured:   "image_captured",
}

func (s Stage) String() string {
	if s < StagePending || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Next returns the only stage reachable from s.
// The second result is false once the protocol is complete.
func (s Stage) Next() (Stage, bool) {
	if s < StagePending || s >= StageImageCaptured {
		return s, false
	}
	return s + 1, true
}

// Stages returns the protocol stages in order, excluding StagePending.
func Stages() []Stage {
	return []Stage{
		StageContentLoaded,
		StageLibraryReady,
		StageElementRendered,
		StageExportTriggered,
		StageImageCaptured,
	}
}

// timeoutErr is the error reported when a stage runs out of time.
func (s Stage) timeoutErr() error {
	switch s {
	case StageLibraryReady:
		return ErrComponentLoadTimeout
	case StageElementRendered:
		return ErrElementNotFound
	case StageExportTriggered:
		return ErrExportTrigger
	case StageImageCaptured:
		return ErrCaptureTimeout
	default:
		return ErrPageLoad
	}
}

// stageRecord is one completed transition.
type stageRecord struct {
	Stage    Stage
	Duration time.Duration
}

// stageMachine tracks the current stage of one render.
// It is owned by a single goroutine.
type stageMachine struct {
	current Stage
	history []stageRecord
}

// advance moves to the given stage, which must be the successor of the current one.
func (m *stageMachine) advance(to Stage, took time.Duration) error {
	next, ok := m.current.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrStageOrder, m.current, to)
	}
	m.current = to
	m.history = append(m.history, stageRecord{Stage: to, Duration: took})
	return nil
}

// pending returns the stage the machine is trying to reach.
func (m *stageMachine) pending() Stage {
	next, ok := m.current.Next()
	if !ok {
		return m.current
	}
	return next
}

// done reports whether the final stage was reached.
func (m *stageMachine) done() bool {
	return m.current == StageImageCaptured
}
