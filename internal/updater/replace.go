package updater

import (
	"fmt"

	"github.com/agentx-labs/bootkeeper/internal/storage"
)

// BackupSuffix is appended to a tracked file's path to form its backup.
const BackupSuffix = ".bak"

// BackupPath returns the single backup generation kept for local.
func BackupPath(local string) string {
	return local + BackupSuffix
}

// Restore swaps the backup of local back into place. The content it
// replaces becomes the new backup, so a second Restore undoes the first.
func (u *Updater) Restore(local string) error {
	backupPath := BackupPath(local)

	backup, err := u.store.ReadFile(backupPath)
	if storage.IsNotExist(err) {
		return fmt.Errorf("no backup for %s: %w", local, err)
	}
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}

	current, err := u.store.ReadFile(local)
	hasCurrent := err == nil
	if err != nil && !storage.IsNotExist(err) {
		return fmt.Errorf("reading current file: %w", err)
	}

	if u.dryRun {
		return nil
	}

	if err := u.store.WriteFile(local, backup); err != nil {
		return fmt.Errorf("restoring %s: %w", local, err)
	}
	if hasCurrent {
		if err := u.store.WriteFile(backupPath, current); err != nil {
			return fmt.Errorf("rotating backup: %w", err)
		}
	}

	u.logger.Info().Str("file", local).Msg("restored backup")
	return nil
}
