package relay

// Observer receives the progress of a run. Calls are made in order from the
// goroutine executing the run; exactly one of OnSuccess or OnFailure ends it.
type Observer interface {
	OnStart()
	OnLogLine(line string)
	OnSuccess()
	OnFailure(message string)
}

// StateObserver is optionally implemented by an Observer that wants state
// machine transitions.
type StateObserver interface {
	OnStateChange(from, to State)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) OnStart()         {}
func (NopObserver) OnLogLine(string) {}
func (NopObserver) OnSuccess()       {}
func (NopObserver) OnFailure(string) {}

// terminalGuard forwards to an Observer and swallows any terminal
// notification after the first.
type terminalGuard struct {
	Observer
	done bool
}

func guard(obs Observer) *terminalGuard {
	if obs == nil {
		obs = NopObserver{}
	}
	if g, ok := obs.(*terminalGuard); ok {
		return g
	}
	return &terminalGuard{Observer: obs}
}

func (g *terminalGuard) OnSuccess() {
	if g.done {
		return
	}
	g.done = true
	g.Observer.OnSuccess()
}

func (g *terminalGuard) OnFailure(message string) {
	if g.done {
		return
	}
	g.done = true
	g.Observer.OnFailure(message)
}

func (g *terminalGuard) OnStateChange(from, to State) {
	if so, ok := g.Observer.(StateObserver); ok {
		so.OnStateChange(from, to)
	}
}
