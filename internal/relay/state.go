package relay

import "nexus-pusher/internal/naming"

// State is a pipeline state machine state.
type State string

const (
	Idle               State = "idle"
	CheckingTool       State = "checking-tool"
	RemovingStale      State = "removing-stale"
	Pulling            State = "pulling"
	Renaming           State = "renaming"
	TaggingForRegistry State = "tagging-for-registry"
	Authenticating     State = "authenticating"
	Pushing            State = "pushing"
	Succeeded          State = "succeeded"
	Failed             State = "failed"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// PipelineState is owned by exactly one run.
type PipelineState struct {
	RunID string
	// Current is the local image reference the next step operates on. It
	// starts as the source and becomes the rename target after Renaming.
	Current string
	Phase   State
	Log     []string
}

// Outcome is what a finished (or never started) run reports back.
type Outcome struct {
	RunID      string
	State      State
	Resolution naming.Resolution
	// Image is the final local reference.
	Image string
	Log   []string
	Err   error
}
