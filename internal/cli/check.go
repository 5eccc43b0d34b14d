package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentx-labs/bootkeeper/internal/supervisor"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// checkUpdateExitCode is the exit status of `check --exit-code` when an
// update is available.
const checkUpdateExitCode = 10

var (
	checkExitCode bool
	checkJSON     bool
)

func init() {
	checkCmd.Flags().BoolVar(&checkExitCode, "exit-code", false, fmt.Sprintf("Exit with status %d when an update is available", checkUpdateExitCode))
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether an update is available without changing anything",
	Long: `Fetches the manifest and compares every tracked file with its remote copy.
Nothing is written: the manifest cache, the selection and installed files are
left as they are, and no program is launched.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// checkFile is one tracked file in the JSON report.
type checkFile struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	OldDigest string `json:"old_digest,omitempty"`
	NewDigest string `json:"new_digest,omitempty"`
	Error     string `json:"error,omitempty"`
}

// checkOutput is the JSON form of a supervisor.CheckReport.
type checkOutput struct {
	UpdateAvailable   bool        `json:"update_available"`
	Selected          string      `json:"selected"`
	SelectionValid    bool        `json:"selection_valid"`
	MenuPending       bool        `json:"menu_pending"`
	ManifestChanged   bool        `json:"manifest_changed"`
	Added             []string    `json:"added,omitempty"`
	FromCache         bool        `json:"from_cache"`
	SupervisorVersion string      `json:"supervisor_version"`
	AdvertisedVersion string      `json:"advertised_version,omitempty"`
	SupervisorNewer   bool        `json:"supervisor_newer"`
	Files             []checkFile `json:"files"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	w, err := newWiring(true)
	if err != nil {
		return err
	}

	report, err := w.supervisor(nil, io.Discard, true).Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking for updates: %w", err)
	}

	out := cmd.OutOrStdout()
	if checkJSON {
		data, err := json.MarshalIndent(toCheckOutput(report), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		printCheckReport(out, report)
	}

	if checkExitCode && report.UpdateAvailable {
		return &ExitError{Code: checkUpdateExitCode}
	}
	return nil
}

func toCheckOutput(r *supervisor.CheckReport) checkOutput {
	o := checkOutput{
		UpdateAvailable:   r.UpdateAvailable,
		Selected:          r.Selected.ID,
		SelectionValid:    r.SelectionValid,
		MenuPending:       r.MenuPending,
		ManifestChanged:   r.Changed,
		Added:             r.Added,
		FromCache:         r.FromCache,
		SupervisorVersion: r.SupervisorVersion,
		AdvertisedVersion: r.AdvertisedVersion,
		SupervisorNewer:   r.SupervisorNewer,
		Files:             make([]checkFile, 0, len(r.Outcomes)),
	}
	for _, oc := range r.Outcomes {
		f := checkFile{Path: oc.File.LocalPath, Status: outcomeLabel(oc)}
		if oc.OldDigest != nil {
			f.OldDigest = oc.OldDigest.String()
		}
		if oc.NewDigest != nil {
			f.NewDigest = oc.NewDigest.String()
		}
		if oc.Err != nil {
			f.Error = oc.Err.Error()
		}
		o.Files = append(o.Files, f)
	}
	return o
}

// outcomeLabel describes a dry-run outcome from the operator's side.
func outcomeLabel(o updater.Outcome) string {
	switch {
	case o.Status == updater.Replaced && o.OldDigest == nil:
		return "missing"
	case o.Status == updater.Replaced:
		return "stale"
	case o.Status == updater.Failed:
		return "error"
	case o.Err != nil:
		return "unavailable"
	default:
		return "current"
	}
}

func printCheckReport(w io.Writer, r *supervisor.CheckReport) {
	re := lipgloss.NewRenderer(w)
	bold := re.NewStyle().Bold(true)
	good := re.NewStyle().Foreground(lipgloss.Color("2"))
	warn := re.NewStyle().Foreground(lipgloss.Color("3"))

	if r.UpdateAvailable {
		fmt.Fprintln(w, warn.Render("Update available."))
	} else {
		fmt.Fprintln(w, good.Render("Up to date."))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Render("Files"))
	for _, o := range r.Outcomes {
		label := outcomeLabel(o)
		style := good
		if label != "current" {
			style = warn
		}
		fmt.Fprintf(w, "  %-12s %s\n", style.Render(label), o.File.LocalPath)
		if o.Err != nil {
			fmt.Fprintf(w, "               %v\n", o.Err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Render("Selection"))
	fmt.Fprintf(w, "  program:  %s (%s)\n", r.Selected.DisplayName(), r.Selected.ID)
	if !r.SelectionValid {
		fmt.Fprintln(w, "  no valid persisted selection, the default applies")
	}
	if r.MenuPending {
		fmt.Fprintln(w, "  the selection menu will be shown on next boot")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Render("Manifest"))
	switch {
	case r.FromCache:
		fmt.Fprintf(w, "  server unavailable, using cached copy (%v)\n", r.FetchErr)
	case r.Changed:
		fmt.Fprintln(w, "  changed since last boot")
	default:
		fmt.Fprintln(w, "  unchanged since last boot")
	}
	if len(r.Added) > 0 {
		fmt.Fprintf(w, "  new programs: %v\n", r.Added)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, bold.Render("Supervisor"))
	fmt.Fprintf(w, "  running:    %s\n", r.SupervisorVersion)
	if r.AdvertisedVersion != "" {
		fmt.Fprintf(w, "  advertised: %s\n", updater.NormalizeVersion(r.AdvertisedVersion))
		if r.SupervisorNewer {
			fmt.Fprintln(w, "  a newer supervisor is available")
		}
	}
}
