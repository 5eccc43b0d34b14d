package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentx-labs/bootkeeper/internal/branding"
	"github.com/agentx-labs/bootkeeper/internal/config"
	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configFile string
	logLevel   string
	logFormat  string

	logger = zerolog.Nop()
)

// ExitError carries a process exit status without an error message.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format (text, json)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` keeps the installed programs of a device in sync with a remote
manifest and launches the selected one.

Run without arguments it performs a full boot: fetch the manifest, show the
selection menu when needed, update stale files, launch the selected program
and restart once it exits.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			config.SetFile(configFile)
		}
		config.Load()

		l, err := logging.New(os.Stderr, logLevel, logFormat, branding.CLIName())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: runBoot,
}

func runBoot(cmd *cobra.Command, args []string) error {
	w, err := newWiring(false)
	if err != nil {
		return err
	}

	res := w.supervisor(console.Stdin(), cmd.OutOrStdout(), false).Run(cmd.Context())
	if res.RestartErr != nil {
		return fmt.Errorf("restarting after %s: %w", res.Final, res.RestartErr)
	}
	return nil
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
