package cli

import (
	"fmt"
	"strings"

	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/agentx-labs/bootkeeper/internal/menu"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(selectCmd)
}

var selectCmd = &cobra.Command{
	Use:   "select [id]",
	Short: "Choose the program launched on boot",
	Long: `Persist the program launched on boot. With an id the choice is saved
directly; without one the selection menu is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	w, err := newWiring(false)
	if err != nil {
		return err
	}

	// Check mode keeps the cache as the last boot left it, so change
	// detection on the next boot is unaffected.
	res, err := w.fetcher().Fetch(cmd.Context(), manifest.ModeCheck)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	m := res.Manifest
	out := cmd.OutOrStdout()
	store := w.selections()

	var entry *manifest.Entry
	if len(args) == 1 {
		e, ok := m.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown program %q (available: %s)", args[0], strings.Join(m.IDs(), ", "))
		}
		entry = e
	} else {
		current := m.Default()
		if sel, err := store.Load(); err == nil && sel != nil {
			if e, ok := m.Lookup(sel.SelectedID); ok {
				current = e
			}
		}

		in := console.Stdin()
		if !in.Interactive() {
			return fmt.Errorf("no terminal attached; pass a program id")
		}
		choice, err := menu.New(in, out, w.settings.MenuTimeout).Choose(cmd.Context(), m, current)
		if err != nil {
			return err
		}
		if !choice.Chosen {
			fmt.Fprintln(out, "Selection unchanged.")
			return nil
		}
		entry = choice.Entry
	}

	if err := store.Save(entry.ID); err != nil {
		return fmt.Errorf("saving selection: %w", err)
	}
	fmt.Fprintf(out, "Selected %s (%s).\n", entry.DisplayName(), entry.ID)
	return nil
}
