package updater

import (
	"context"
	"fmt"

	"github.com/agentx-labs/bootkeeper/internal/digest"
	"github.com/agentx-labs/bootkeeper/internal/storage"
)

// Apply processes files sequentially and returns one Outcome per file, in
// order. A failure on one file never stops the others.
func (u *Updater) Apply(ctx context.Context, files []TrackedFile) []Outcome {
	outcomes := make([]Outcome, 0, len(files))
	for _, f := range files {
		o := u.apply(ctx, f)
		ev := u.logger.Info()
		if o.Status == Failed {
			ev = u.logger.Warn().Err(o.Err)
		}
		ev.Str("file", f.LocalPath).
			Str("status", o.Status.String()).
			Bool("dry_run", o.DryRun).
			Msg("processed tracked file")
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (u *Updater) apply(ctx context.Context, f TrackedFile) Outcome {
	out := Outcome{File: f}

	local, err := u.store.ReadFile(f.LocalPath)
	switch {
	case err == nil:
		d := digest.Sum(local)
		out.OldDigest = &d
	case storage.IsNotExist(err):
		local = nil
	default:
		out.Status = Failed
		out.Err = err
		return out
	}

	remote, err := u.transport.Get(ctx, f.RemotePath)
	if err != nil {
		out.Err = err
		if out.OldDigest == nil {
			// Nothing existed and nothing changed.
			out.Status = Unchanged
			return out
		}
		out.Status = Failed
		return out
	}
	d := digest.Sum(remote)
	out.NewDigest = &d

	if out.OldDigest != nil && out.OldDigest.Equal(d) {
		out.Status = Unchanged
		return out
	}

	if u.dryRun {
		out.Status = Replaced
		out.DryRun = true
		return out
	}

	if out.OldDigest != nil {
		if err := u.store.WriteFile(BackupPath(f.LocalPath), local); err != nil {
			out.Status = Failed
			out.Err = fmt.Errorf("backing up %s: %w", f.LocalPath, err)
			return out
		}
	}

	if err := u.store.WriteFile(f.LocalPath, remote); err != nil {
		out.Status = Failed
		out.Err = fmt.Errorf("installing %s: %w", f.LocalPath, err)
		return out
	}

	out.Status = Replaced
	return out
}
