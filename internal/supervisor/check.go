package supervisor

import (
	"context"
	"errors"

	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/updater"
)

// ErrNotDryRun is returned by Check when the updater would write.
var ErrNotDryRun = errors.New("check requires a dry-run updater")

// CheckReport is the read-only view of what the next boot would do.
type CheckReport struct {
	Manifest  *manifest.Manifest
	FromCache bool
	FetchErr  error
	Changed   bool
	Added     []string

	// Selected is the entry the next boot would launch.
	Selected *manifest.Entry
	// SelectionValid is false when no selection is persisted or the
	// persisted id is gone from the manifest.
	SelectionValid bool
	// MenuPending reports that the next boot would show the menu.
	MenuPending bool

	Outcomes []updater.Outcome
	// UpdateAvailable is set when any tracked file would be replaced.
	UpdateAvailable bool

	SupervisorVersion string
	AdvertisedVersion string
	SupervisorNewer   bool
}

// Check runs selection loading, manifest fetching, resolution and update
// planning without persisting anything, presenting a menu, launching, or
// restarting. The configured updater must be in dry-run mode.
func (s *Supervisor) Check(ctx context.Context) (*CheckReport, error) {
	if !s.deps.Updater.DryRun() {
		return nil, ErrNotDryRun
	}

	sel, err := s.deps.Selections.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring persisted selection")
		sel = nil
	}

	res, err := s.deps.Manifests.Fetch(ctx, manifest.ModeCheck)
	if err != nil {
		return nil, err
	}

	m := res.Manifest
	entry, persisted := resolve(m, sel)
	if entry == nil {
		return nil, errors.New("manifest has no entries")
	}

	report := &CheckReport{
		Manifest:          m,
		FromCache:         res.FromCache,
		FetchErr:          res.FetchErr,
		Changed:           res.Changed,
		Added:             res.Added,
		Selected:          entry,
		SelectionValid:    persisted,
		MenuPending:       (sel != nil && !persisted) || (res.Changed && len(res.Added) > 0),
		SupervisorVersion: s.cfg.Version,
		AdvertisedVersion: m.SupervisorVersion,
	}

	report.Outcomes = s.deps.Updater.Apply(ctx, s.trackedFiles(entry))
	for _, o := range report.Outcomes {
		if o.Status == updater.Replaced {
			report.UpdateAvailable = true
		}
	}

	newer, err := updater.IsSupervisorNewer(s.cfg.Version, m.SupervisorVersion)
	if err != nil {
		s.log.Debug().Err(err).Msg("comparing supervisor versions")
	}
	report.SupervisorNewer = newer

	return report, nil
}
