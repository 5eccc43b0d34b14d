package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/updater"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the programs in the manifest",
	Long: `List the programs published in the manifest, grouped by category. The
currently selected program is marked with *. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a manifest entry for display.
type listEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Version  string `json:"version,omitempty"`
	File     string `json:"local_name"`
	Default  bool   `json:"default"`
	Selected bool   `json:"selected"`
}

func runList(cmd *cobra.Command, args []string) error {
	w, err := newWiring(true)
	if err != nil {
		return err
	}

	res, err := w.fetcher().Fetch(cmd.Context(), manifest.ModeCheck)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	selectedID := ""
	if sel, err := w.selections().Load(); err == nil && sel != nil {
		selectedID = sel.SelectedID
	}

	var entries []listEntry
	for _, g := range res.Manifest.Groups() {
		for _, e := range g.Entries {
			entries = append(entries, listEntry{
				ID:       e.ID,
				Name:     e.DisplayName(),
				Category: g.Category,
				Version:  e.Version,
				File:     e.LocalPath,
				Default:  e.IsDefault,
				Selected: e.ID == selectedID,
			})
		}
	}

	out := cmd.OutOrStdout()
	if listJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling entries: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if res.FromCache {
		fmt.Fprintf(out, "Update server unavailable, showing the cached manifest.\n\n")
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCATEGORY\tVERSION")
	for _, e := range entries {
		marker := ""
		switch {
		case e.Selected:
			marker = "*"
		case e.Default:
			marker = "d"
		}
		version := "-"
		if e.Version != "" {
			version = updater.NormalizeVersion(e.Version)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, e.ID, e.Name, e.Category, version)
	}
	return tw.Flush()
}
