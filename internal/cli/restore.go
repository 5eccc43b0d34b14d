package cli

import (
	"fmt"
	"path/filepath"

	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore <local-path>",
	Short: "Swap a file's backup back into place",
	Long: `Swap the backup kept beside an installed file (<file>.bak) with the file
itself. The replaced content becomes the new backup, so running restore twice
undoes it. Relative paths are resolved against the install directory; the
name "self" refers to the supervisor's own file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := newWiring(false)
		if err != nil {
			return err
		}

		path := args[0]
		switch {
		case path == "self":
			path = w.selfPath
		case !filepath.IsAbs(path):
			path = userdata.InstallPath(w.settings.InstallDir, path)
		}

		if err := w.updater(false).Restore(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", path, updater.BackupPath(path))
		return nil
	},
}
