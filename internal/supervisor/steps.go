package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
)

func (s *Supervisor) init(_ *bootContext) (State, error) {
	s.log.Info().Str("version", s.cfg.Version).Msg("boot started")
	return StateInterruptWindow, nil
}

// interruptWindow gives the operator a short chance to force the menu.
// Input other than the interrupt key is ignored until the window closes.
func (s *Supervisor) interruptWindow(ctx context.Context, bc *bootContext) (State, error) {
	if s.cfg.InterruptWindow <= 0 || !s.deps.Input.Interactive() {
		return StateLoadSelection, nil
	}

	s.status("Press %s then Enter within %s to choose a program.", s.cfg.InterruptKey, s.cfg.InterruptWindow)
	deadline := time.Now().Add(s.cfg.InterruptWindow)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return StateLoadSelection, nil
		}

		line, err := s.deps.Input.WaitForInput(ctx, remaining)
		switch {
		case errors.Is(err, console.ErrTimedOut), errors.Is(err, io.EOF):
			return StateLoadSelection, nil
		case err != nil:
			return StateLoadSelection, fmt.Errorf("waiting for interrupt: %w", err)
		}

		if strings.EqualFold(strings.TrimSpace(line), s.cfg.InterruptKey) {
			s.log.Info().Msg("menu requested")
			bc.forceMenu = true
			return StateLoadSelection, nil
		}
	}
}

func (s *Supervisor) loadSelection(bc *bootContext) (State, error) {
	sel, err := s.deps.Selections.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring persisted selection")
		sel = nil
	}
	bc.selection = sel
	return StateFetchManifest, nil
}

func (s *Supervisor) fetchManifest(ctx context.Context, bc *bootContext) (State, error) {
	res, err := s.deps.Manifests.Fetch(ctx, manifest.ModeNormal)
	if err != nil {
		bc.err = err
		return StateFatalRetry, nil
	}
	if res.FromCache {
		s.status("Update server unavailable, using the last known program list.")
	}
	bc.fetch = res
	return StateResolveSelection, nil
}

func (s *Supervisor) resolveSelection(bc *bootContext) (State, error) {
	m := bc.fetch.Manifest
	entry, persisted := resolve(m, bc.selection)
	if entry == nil {
		return StateCriticalRecovery, fmt.Errorf("manifest has no entries")
	}
	bc.entry = entry

	var reason string
	switch {
	case bc.forceMenu:
		reason = "requested"
	case bc.selection != nil && !persisted:
		reason = "selection no longer available"
	case bc.fetch.Changed && len(bc.fetch.Added) > 0:
		reason = "new programs available"
	}

	if reason != "" {
		s.log.Info().Str("reason", reason).Msg("showing selection menu")
		return StateSelectionMenu, nil
	}

	if bc.selection == nil {
		s.persist(entry.ID)
	}
	return StatePlanUpdates, nil
}

func (s *Supervisor) selectionMenu(ctx context.Context, bc *bootContext) (State, error) {
	choice, err := s.deps.Menu.Choose(ctx, bc.fetch.Manifest, bc.entry)
	if err != nil {
		return StateCriticalRecovery, fmt.Errorf("selection menu: %w", err)
	}
	if choice.Entry != nil {
		bc.entry = choice.Entry
	}

	// An explicit choice is always saved. Without one the fallback is saved
	// only when it is not already the stored selection.
	switch {
	case choice.Chosen:
		s.persist(bc.entry.ID)
	case bc.selection == nil || bc.selection.SelectedID != bc.entry.ID:
		s.persist(bc.entry.ID)
	}
	return StatePlanUpdates, nil
}

// persist saves the selection. A failure is logged and the boot continues.
func (s *Supervisor) persist(id string) {
	if err := s.deps.Selections.Save(id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("saving selection")
		return
	}
	s.log.Info().Str("id", id).Msg("selection saved")
}

func (s *Supervisor) planUpdates(bc *bootContext) (State, error) {
	bc.files = s.trackedFiles(bc.entry)
	return StateApplyUpdates, nil
}

func (s *Supervisor) applyUpdates(ctx context.Context, bc *bootContext) (State, error) {
	bc.outcomes = s.deps.Updater.Apply(ctx, bc.files)
	for _, o := range bc.outcomes {
		switch o.Status {
		case updater.Replaced:
			s.status("Updated %s.", o.File.LocalPath)
		case updater.Failed:
			s.status("Could not update %s: %v", o.File.LocalPath, o.Err)
		}
	}

	if selfReplaced(bc.outcomes, s.cfg.SelfLocalPath) {
		return StateSelfUpdateRestart, nil
	}
	return StateLaunch, nil
}

func (s *Supervisor) launch(ctx context.Context, bc *bootContext) (State, error) {
	path := userdata.InstallPath(s.cfg.InstallDir, bc.entry.LocalPath)
	s.status("Starting %s.", bc.entry.DisplayName())
	s.log.Info().Str("id", bc.entry.ID).Str("path", path).Msg("launching")

	if err := s.deps.Launcher.Launch(ctx, path); err != nil {
		bc.err = err
		return StateCrashRecovery, nil
	}
	return StateCleanExitRestart, nil
}

// trackedFiles returns the supervisor's own file followed by the entry's.
func (s *Supervisor) trackedFiles(entry *manifest.Entry) []updater.TrackedFile {
	return []updater.TrackedFile{
		{LocalPath: s.cfg.SelfLocalPath, RemotePath: s.cfg.SelfRemotePath},
		{LocalPath: userdata.InstallPath(s.cfg.InstallDir, entry.LocalPath), RemotePath: entry.RemotePath},
	}
}

// resolve picks the persisted entry when it still exists, else the
// manifest default. persisted reports whether the persisted id resolved.
func resolve(m *manifest.Manifest, sel *userdata.Selection) (entry *manifest.Entry, persisted bool) {
	if sel != nil {
		if e, ok := m.Lookup(sel.SelectedID); ok {
			return e, true
		}
	}
	return m.Default(), false
}

func selfReplaced(outcomes []updater.Outcome, selfPath string) bool {
	for _, o := range outcomes {
		if o.File.LocalPath == selfPath && o.Status == updater.Replaced && !o.DryRun {
			return true
		}
	}
	return false
}
