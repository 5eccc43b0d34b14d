package cli

import (
	"fmt"

	"github.com/agentx-labs/bootkeeper/internal/config"
	"github.com/agentx-labs/bootkeeper/internal/userdata"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config, state and install directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if err := config.EnsureDir(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Config file: %s\n", config.FilePath())

		if err := userdata.InitLayout(out, s.StateDir, s.InstallDir); err != nil {
			return fmt.Errorf("initializing directories: %w", err)
		}
		fmt.Fprintln(out, "\nDirectories initialized successfully.")
		return nil
	},
}
