// Package relay moves one container image from a public registry into a
// private one by driving an external container tool: pull, optional
// rename, registry tag, login and push, failing fast at the first error.
package relay

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nexus-pusher/internal/naming"
	"nexus-pusher/internal/runner"
	"nexus-pusher/pkg/errx"
)

// DefaultTool is the container CLI used when none is configured.
const DefaultTool = "docker"

// Timeouts bounds each kind of external call.
type Timeouts struct {
	// Status bounds quick queries: version and the inventory probe.
	Status time.Duration
	Pull   time.Duration
	Push   time.Duration
	Login  time.Duration
	// Command bounds everything else (rmi, tag).
	Command time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Status:  10 * time.Second,
		Pull:    5 * time.Minute,
		Push:    10 * time.Minute,
		Login:   time.Minute,
		Command: 10 * time.Minute,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	def := DefaultTimeouts()
	pick := func(v, d time.Duration) time.Duration {
		if v <= 0 {
			return d
		}
		return v
	}
	return Timeouts{
		Status:  pick(t.Status, def.Status),
		Pull:    pick(t.Pull, def.Pull),
		Push:    pick(t.Push, def.Push),
		Login:   pick(t.Login, def.Login),
		Command: pick(t.Command, def.Command),
	}
}

// Options configures a Pipeline.
type Options struct {
	// Tool is the container CLI binary, e.g. "docker" or "podman".
	Tool     string
	Timeouts Timeouts
}

// Pipeline runs relays. It holds no per-run state and may be reused.
type Pipeline struct {
	exec     runner.Executor
	logger   *zap.Logger
	tool     string
	timeouts Timeouts
	newRunID func() string
}

// NewPipeline creates a Pipeline that starts processes through exec.
func NewPipeline(exec runner.Executor, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	tool := opts.Tool
	if tool == "" {
		tool = DefaultTool
	}
	return &Pipeline{
		exec:     exec,
		logger:   logger,
		tool:     tool,
		timeouts: opts.Timeouts.withDefaults(),
		newRunID: uuid.NewString,
	}
}

// Tool returns the configured container CLI.
func (p *Pipeline) Tool() string { return p.tool }

// Timeouts returns the effective timeouts.
func (p *Pipeline) Timeouts() Timeouts { return p.timeouts }

func (p *Pipeline) validators() []runner.Validator {
	return []runner.Validator{runner.AllowlistBins(p.tool), runner.NoControlChars()}
}

// Prepare validates in and resolves its reference plan. It never starts a
// process.
func (p *Pipeline) Prepare(in Input) (naming.Resolution, error) {
	if err := in.Validate(); err != nil {
		return naming.Resolution{}, err
	}
	in = in.Normalized()
	res := naming.Resolve(in.SourceImage, in.RegistryHost, in.NewName)
	if err := CheckReferences(res); err != nil {
		return naming.Resolution{}, err
	}
	return res, nil
}

// CheckReady reports whether the tool is installed and its daemon answers
// "info". The outcome is narrated through emit; it never fails otherwise.
func (p *Pipeline) CheckReady(ctx context.Context, emit runner.LineFunc) bool {
	emit = orDiscard(emit)
	cmd, err := p.exec.Command(ctx, p.tool, []string{"info"}, p.validators()...)
	if err != nil {
		emit(fmt.Sprintf("%s check failed: %v", p.tool, err))
		return false
	}
	out, err := cmd.CombinedOutput()
	if err == nil {
		return true
	}
	var coded interface{ ExitCode() int }
	switch {
	case errors.Is(err, exec.ErrNotFound):
		emit(fmt.Sprintf("%s not found. Is %s installed and in your PATH?", p.tool, p.tool))
	case errors.As(err, &coded):
		emit(fmt.Sprintf("%s error: %s", p.tool, strings.TrimSpace(string(out))))
	default:
		emit(fmt.Sprintf("%s check failed: %v", p.tool, err))
	}
	p.logger.Debug("Tool not ready", zap.String("tool", p.tool), zap.Error(err))
	return false
}

// Preflight checks that the tool is ready and answers "version". It is the
// first step of every relay and can be run on its own.
func (p *Pipeline) Preflight(ctx context.Context, emit runner.LineFunc) error {
	emit = orDiscard(emit)
	r := runner.New(p.exec, emit, runner.WithLogger(p.logger), runner.WithValidators(p.validators()...))
	return p.preflight(ctx, r, emit)
}

func (p *Pipeline) preflight(ctx context.Context, r *runner.Runner, emit runner.LineFunc) error {
	if !p.CheckReady(ctx, emit) {
		return newWithSentinel(ErrToolUnavailable, p.tool+" service not available")
	}
	_, err := r.Run(ctx, runner.Request{
		Args:        []string{p.tool, "version"},
		Description: "Check " + p.tool + " version",
		Timeout:     p.timeouts.Status,
	})
	if err != nil {
		return stepError(ErrVersionCheckFailed, CheckingTool, err, "failed to query "+p.tool+" version", nil)
	}
	return nil
}

// ImageExists reports whether ref is present in the local image store.
// Errors are narrated and reported as absent.
func (p *Pipeline) ImageExists(ctx context.Context, ref string, emit runner.LineFunc) bool {
	emit = orDiscard(emit)
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Status)
	defer cancel()

	cmd, err := p.exec.Command(ctx, p.tool, []string{"images", "-q", ref}, p.validators()...)
	if err != nil {
		emit(fmt.Sprintf("Error checking image: %v", err))
		return false
	}
	out, err := cmd.Output()
	if err != nil {
		emit(fmt.Sprintf("Error checking image: %v", err))
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// Run executes one relay synchronously. Invalid input is returned before
// obs sees anything; otherwise obs receives OnStart, the narrated log and
// exactly one terminal notification, and the returned error equals
// Outcome.Err.
func (p *Pipeline) Run(ctx context.Context, in Input, obs Observer) (Outcome, error) {
	res, err := p.Prepare(in)
	if err != nil {
		return Outcome{State: Idle, Err: err}, err
	}
	in = in.Normalized()

	st := &PipelineState{RunID: p.newRunID(), Current: in.SourceImage, Phase: Idle}
	rc := &runContext{
		p:      p,
		in:     in,
		res:    res,
		st:     st,
		obs:    guard(obs),
		logger: p.logger.With(zap.String("run_id", st.RunID)),
	}
	rc.runner = runner.New(p.exec, rc.log,
		runner.WithLogger(rc.logger),
		runner.WithValidators(p.validators()...),
	)

	rc.logger.Info("Starting relay",
		zap.String("source", res.Source),
		zap.String("target", res.Target),
		zap.String("registry_ref", res.Registry),
		zap.String("tool", p.tool),
	)
	rc.obs.OnStart()

	runErr := rc.execute(ctx)
	if runErr != nil {
		rc.transition(Failed)
		msg := errx.UserString(runErr)
		rc.log("Process failed: " + msg)
		rc.logger.Info("Relay failed", errx.ZapFields(runErr)...)
		rc.obs.OnFailure(msg)
	} else {
		rc.transition(Succeeded)
		rc.log("Success: image pushed to " + res.Registry)
		rc.logger.Info("Relay succeeded", zap.String("registry_ref", res.Registry))
		rc.obs.OnSuccess()
	}

	return Outcome{
		RunID:      st.RunID,
		State:      st.Phase,
		Resolution: res,
		Image:      st.Current,
		Log:        append([]string(nil), st.Log...),
		Err:        runErr,
	}, runErr
}

func orDiscard(emit runner.LineFunc) runner.LineFunc {
	if emit == nil {
		return func(string) {}
	}
	return emit
}
