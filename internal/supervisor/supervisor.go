package supervisor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/faults"
	"github.com/agentx-labs/bootkeeper/internal/logging"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/menu"
	"github.com/agentx-labs/bootkeeper/internal/platform"
	"github.com/agentx-labs/bootkeeper/internal/runtime"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
	"github.com/rs/zerolog"
)

// ManifestSource yields the manifest for a boot.
type ManifestSource interface {
	Fetch(ctx context.Context, mode manifest.Mode) (*manifest.FetchResult, error)
}

// SelectionStore persists the operator's choice.
type SelectionStore interface {
	Load() (*userdata.Selection, error)
	Save(id string) error
}

// FileUpdater brings tracked files up to date.
type FileUpdater interface {
	Apply(ctx context.Context, files []updater.TrackedFile) []updater.Outcome
	DryRun() bool
}

// Chooser presents the selection menu.
type Chooser interface {
	Choose(ctx context.Context, m *manifest.Manifest, fallback *manifest.Entry) (menu.Choice, error)
}

// Config holds the supervisor's settings.
type Config struct {
	// Version is the running supervisor's version.
	Version string
	// SelfLocalPath is the installed supervisor file.
	SelfLocalPath string
	// SelfRemotePath is the supervisor file relative to the manifest base.
	SelfRemotePath string
	// InstallDir resolves entry local names.
	InstallDir      string
	InterruptWindow time.Duration
	InterruptKey    string
	RecoveryDelay   time.Duration
}

// Deps are the capabilities the supervisor drives.
type Deps struct {
	Manifests  ManifestSource
	Selections SelectionStore
	Updater    FileUpdater
	Input      console.Input
	Menu       Chooser
	Launcher   runtime.Launcher
	Restarter  platform.Restarter

	// Sleep waits for the recovery delay; defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// Out receives operator-facing status lines.
	Out    io.Writer
	Logger zerolog.Logger
}

// Supervisor runs one boot at a time.
type Supervisor struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger
}

// Result describes a finished boot. Run only returns one when the restarter
// returned.
type Result struct {
	// Final is the terminal state that triggered the restart.
	Final State
	// Trail lists every state entered, in order.
	Trail []State
	// Entry is the selected entry, if resolution got that far.
	Entry *manifest.Entry
	// Outcomes are the per-file update results, if updates ran.
	Outcomes []updater.Outcome
	// Err is the failure that led to a recovery state.
	Err error
	// RestartErr is the restarter's error, if any.
	RestartErr error
}

// New returns a Supervisor.
func New(cfg Config, deps Deps) *Supervisor {
	if deps.Sleep == nil {
		deps.Sleep = sleep
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Supervisor{
		cfg:  cfg,
		deps: deps,
		log:  logging.Component(deps.Logger, "supervisor"),
	}
}

// Run executes the boot sequence and ends it with a restart. In production
// the restart replaces or terminates the process, so Run returns only when
// the restarter returns.
func (s *Supervisor) Run(ctx context.Context) Result {
	bc := &bootContext{}
	s.drive(ctx, bc)
	s.finish(ctx, bc)

	return Result{
		Final:      bc.state,
		Trail:      bc.trail,
		Entry:      bc.entry,
		Outcomes:   bc.outcomes,
		Err:        bc.err,
		RestartErr: bc.restartErr,
	}
}

// drive steps through states until a terminal one. A panic in any step
// lands in StateCriticalRecovery.
func (s *Supervisor) drive(ctx context.Context, bc *bootContext) {
	defer func() {
		if r := recover(); r != nil {
			bc.err = faults.Wrap(faults.ErrFault, "state "+bc.state.String(), fmt.Errorf("panic: %v", r))
			bc.enter(StateCriticalRecovery)
		}
	}()

	bc.enter(StateInit)
	for !bc.state.Terminal() {
		next, err := s.step(ctx, bc)
		if err != nil {
			bc.err = faults.Wrap(faults.ErrFault, "state "+bc.state.String(), err)
			next = StateCriticalRecovery
		}
		s.log.Debug().Str("from", bc.state.String()).Str("to", next.String()).Msg("transition")
		bc.enter(next)
	}
}

func (s *Supervisor) step(ctx context.Context, bc *bootContext) (State, error) {
	switch bc.state {
	case StateInit:
		return s.init(bc)
	case StateInterruptWindow:
		return s.interruptWindow(ctx, bc)
	case StateLoadSelection:
		return s.loadSelection(bc)
	case StateFetchManifest:
		return s.fetchManifest(ctx, bc)
	case StateResolveSelection:
		return s.resolveSelection(bc)
	case StateSelectionMenu:
		return s.selectionMenu(ctx, bc)
	case StatePlanUpdates:
		return s.planUpdates(bc)
	case StateApplyUpdates:
		return s.applyUpdates(ctx, bc)
	case StateLaunch:
		return s.launch(ctx, bc)
	default:
		return StateCriticalRecovery, fmt.Errorf("no transition from state %s", bc.state)
	}
}

// finish reports the terminal state, waits when required, and restarts.
func (s *Supervisor) finish(ctx context.Context, bc *bootContext) {
	switch bc.state {
	case StateSelfUpdateRestart:
		s.status("Supervisor updated, restarting.")
	case StateCleanExitRestart:
		s.status("%s exited, restarting.", bc.entryName())
	case StateCrashRecovery:
		s.status("%s stopped unexpectedly: %v", bc.entryName(), bc.err)
	case StateFatalRetry:
		switch faults.Kind(bc.err) {
		case faults.ErrNetwork:
			s.status("Update server unreachable and no cached program list: %v", bc.err)
		case faults.ErrParse:
			s.status("Program list is malformed and no cached copy exists: %v", bc.err)
		default:
			s.status("Cannot load the program list: %v", bc.err)
		}
	case StateCriticalRecovery:
		s.status("Supervisor error: %v", bc.err)
	}

	if bc.err != nil {
		ev := s.log.Error().Err(bc.err).Str("state", bc.state.String())
		if kind := faults.Kind(bc.err); kind != nil {
			ev = ev.Str("kind", kind.Error())
		}
		ev.Msg("boot failed")
	}

	if bc.state.delayed() && s.cfg.RecoveryDelay > 0 {
		s.status("Restarting in %s.", s.cfg.RecoveryDelay)
		if err := s.deps.Sleep(ctx, s.cfg.RecoveryDelay); err != nil {
			s.log.Warn().Err(err).Msg("recovery delay interrupted")
		}
	}

	s.log.Info().Str("state", bc.state.String()).Msg("restarting")
	if err := s.deps.Restarter.Restart(ctx); err != nil {
		bc.restartErr = err
		s.log.Error().Err(err).Msg("restart failed")
	}
}

func (s *Supervisor) status(format string, args ...any) {
	fmt.Fprintf(s.deps.Out, format+"\n", args...)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
