package md2img

import (
	"errors"
	"testing"
)

func TestStage_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from   Stage
		want   Stage
		wantOK bool
	}{
		{StagePending, StageContentLoaded, true},
		{StageContentLoaded, StageLibraryReady, true},
		{StageLibraryReady, StageElementRendered, true},
		{StageElementRendered, StageExportTriggered, true},
		{StageExportTriggered, StageImageCaptured, true},
		{StageImageCaptured, StageImageCaptured, false},
		{Stage(-1), Stage(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			t.Parallel()

			got, ok := tt.from.Next()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("%s.Next() = (%s, %v), want (%s, %v)", tt.from, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStage_String(t *testing.T) {
	t.Parallel()

	if got := StageLibraryReady.String(); got != "library_ready" {
		t.Errorf("String() = %q, want %q", got, "library_ready")
	}
	if got := Stage(42).String(); got != "stage(42)" {
		t.Errorf("String() = %q, want %q", got, "stage(42)")
	}
}

func TestStage_TimeoutErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage Stage
		want  error
	}{
		{StageContentLoaded, ErrPageLoad},
		{StageLibraryReady, ErrComponentLoadTimeout},
		{StageElementRendered, ErrElementNotFound},
		{StageExportTriggered, ErrExportTrigger},
		{StageImageCaptured, ErrCaptureTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.stage.timeoutErr(); !errors.Is(got, tt.want) {
				t.Errorf("timeoutErr() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageMachine_Advance(t *testing.T) {
	t.Parallel()

	t.Run("full protocol in order", func(t *testing.T) {
		t.Parallel()

		var m stageMachine
		for _, s := range Stages() {
			if got := m.pending(); got != s {
				t.Fatalf("pending() = %s, want %s", got, s)
			}
			if err := m.advance(s, 0); err != nil {
				t.Fatalf("advance(%s) error = %v", s, err)
			}
		}
		if !m.done() {
			t.Error("done() = false after final stage")
		}
		if len(m.history) != len(Stages()) {
			t.Errorf("history has %d records, want %d", len(m.history), len(Stages()))
		}
	})

	t.Run("skipping is rejected", func(t *testing.T) {
		t.Parallel()

		var m stageMachine
		err := m.advance(StageLibraryReady, 0)
		if !errors.Is(err, ErrStageOrder) {
			t.Errorf("advance() error = %v, want ErrStageOrder", err)
		}
		if m.current != StagePending {
			t.Errorf("current = %s, want pending", m.current)
		}
	})

	t.Run("repeating is rejected", func(t *testing.T) {
		t.Parallel()

		var m stageMachine
		if err := m.advance(StageContentLoaded, 0); err != nil {
			t.Fatal(err)
		}
		if err := m.advance(StageContentLoaded, 0); !errors.Is(err, ErrStageOrder) {
			t.Errorf("advance() error = %v, want ErrStageOrder", err)
		}
	})

	t.Run("nothing after completion", func(t *testing.T) {
		t.Parallel()

		m := stageMachine{current: StageImageCaptured}
		if err := m.advance(StageImageCaptured, 0); !errors.Is(err, ErrStageOrder) {
			t.Errorf("advance() error = %v, want ErrStageOrder", err)
		}
		if got := m.pending(); got != StageImageCaptured {
			t.Errorf("pending() = %s, want %s", got, StageImageCaptured)
		}
	})
}
