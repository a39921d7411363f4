package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nexus-pusher/internal/naming"
	"nexus-pusher/internal/runner"
)

// runContext carries everything one run needs; steps receive it instead of
// sharing mutable variables.
type runContext struct {
	p      *Pipeline
	in     Input
	res    naming.Resolution
	st     *PipelineState
	obs    *terminalGuard
	logger *zap.Logger
	runner *runner.Runner
}

// step is one state of the pipeline. enter, when set, decides whether the
// optional state is visited at all.
type step struct {
	state State
	enter func(context.Context, *runContext) bool
	run   func(context.Context, *runContext) error
}

var steps = []step{
	{state: CheckingTool, run: checkTool},
	{state: RemovingStale, enter: staleImagePresent, run: removeStale},
	{state: Pulling, run: pull},
	{state: Renaming, enter: renameRequested, run: rename},
	{state: TaggingForRegistry, run: tagForRegistry},
	{state: Authenticating, run: login},
	{state: Pushing, run: push},
}

// execute walks the steps in order and stops at the first error.
func (rc *runContext) execute(ctx context.Context) error {
	for _, s := range steps {
		if s.enter != nil && !s.enter(ctx, rc) {
			continue
		}
		rc.transition(s.state)
		if err := s.run(ctx, rc); err != nil {
			return err
		}
	}
	return nil
}

func (rc *runContext) log(line string) {
	rc.st.Log = append(rc.st.Log, line)
	rc.obs.OnLogLine(line)
}

func (rc *runContext) transition(to State) {
	from := rc.st.Phase
	if from == to {
		return
	}
	rc.st.Phase = to
	rc.logger.Debug("State change", zap.String("from", string(from)), zap.String("to", string(to)))
	rc.obs.OnStateChange(from, to)
}

// command runs the tool with args; stdin, when set, goes through the
// buffered executor mode.
func (rc *runContext) command(ctx context.Context, description string, timeout time.Duration, stdin string, args ...string) error {
	_, err := rc.runner.Run(ctx, runner.Request{
		Args:        append([]string{rc.p.tool}, args...),
		Description: description,
		Stdin:       stdin,
		Timeout:     timeout,
	})
	return err
}

func checkTool(ctx context.Context, rc *runContext) error {
	return rc.p.preflight(ctx, rc.runner, rc.log)
}

func staleImagePresent(ctx context.Context, rc *runContext) bool {
	return rc.p.ImageExists(ctx, rc.st.Current, rc.log)
}

func removeStale(ctx context.Context, rc *runContext) error {
	rc.log("Removing existing image: " + rc.st.Current)
	if err := rc.command(ctx, "Remove existing image", rc.p.timeouts.Command, "", "rmi", "-f", rc.st.Current); err != nil {
		return stepError(ErrRemoveStaleFailed, RemovingStale, err, "failed to remove existing image "+rc.st.Current,
			map[string]any{"image": rc.st.Current})
	}
	return nil
}

func pull(ctx context.Context, rc *runContext) error {
	rc.log("Starting image download...")
	if err := rc.command(ctx, "Pull image", rc.p.timeouts.Pull, "", "pull", rc.st.Current); err != nil {
		return stepError(ErrPullFailed, Pulling, err, "failed to pull "+rc.st.Current,
			map[string]any{"image": rc.st.Current})
	}
	return nil
}

func renameRequested(_ context.Context, rc *runContext) bool {
	return rc.res.Renamed
}

// rename tags the pulled image with the new name and removes the original
// tag. A failed removal is fatal even though the new tag already exists.
func rename(ctx context.Context, rc *runContext) error {
	source, target := rc.st.Current, rc.res.Target
	ctxFields := map[string]any{"source": source, "target": target}
	if err := rc.command(ctx, "Tag with new name", rc.p.timeouts.Command, "", "tag", source, target); err != nil {
		return stepError(ErrRenameFailed, Renaming, err, "failed to tag "+source+" as "+target, ctxFields)
	}
	if err := rc.command(ctx, "Remove original tag", rc.p.timeouts.Command, "", "rmi", source); err != nil {
		return stepError(ErrRenameFailed, Renaming, err, "failed to remove original tag "+source, ctxFields)
	}
	rc.st.Current = target
	rc.log("Image renamed to: " + target)
	return nil
}

func tagForRegistry(ctx context.Context, rc *runContext) error {
	if err := rc.command(ctx, "Tag image for registry", rc.p.timeouts.Command, "", "tag", rc.st.Current, rc.res.Registry); err != nil {
		return stepError(ErrTagFailed, TaggingForRegistry, err, "failed to tag "+rc.st.Current+" for registry",
			map[string]any{"source": rc.st.Current, "target": rc.res.Registry})
	}
	return nil
}

func login(ctx context.Context, rc *runContext) error {
	host := rc.in.RegistryHost
	rc.log("Logging in to " + host + "...")
	err := rc.command(ctx, "Login to registry", rc.p.timeouts.Login, rc.in.Password.Reveal(),
		"login", host, "-u", rc.in.Username, "--password-stdin")
	if err != nil {
		return stepError(ErrLoginFailed, Authenticating, err, "failed to login to "+host,
			map[string]any{"registry": host, "username": rc.in.Username})
	}
	return nil
}

func push(ctx context.Context, rc *runContext) error {
	rc.log("Pushing to " + rc.in.RegistryHost + "...")
	if err := rc.command(ctx, "Push to registry", rc.p.timeouts.Push, "", "push", rc.res.Registry); err != nil {
		return stepError(ErrPushFailed, Pushing, err, "failed to push "+rc.res.Registry,
			map[string]any{"image": rc.res.Registry})
	}
	return nil
}
