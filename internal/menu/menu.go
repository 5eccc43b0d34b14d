package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/agentx-labs/bootkeeper/internal/console"
	"github.com/agentx-labs/bootkeeper/internal/manifest"
	"github.com/charmbracelet/lipgloss"
)

// Choice is the result of presenting the menu.
type Choice struct {
	Entry *manifest.Entry
	// Chosen is false when the fallback was kept without an operator choice.
	Chosen bool
}

// Menu presents the manifest entries grouped by category.
type Menu struct {
	in      console.Input
	out     io.Writer
	timeout time.Duration
	now     func() time.Time

	title    lipgloss.Style
	category lipgloss.Style
	dim      lipgloss.Style
	warn     lipgloss.Style
}

// New returns a Menu reading from in and writing to out. The whole menu,
// including retries after invalid input, is bounded by timeout.
func New(in console.Input, out io.Writer, timeout time.Duration) *Menu {
	r := lipgloss.NewRenderer(out)
	return &Menu{
		in:       in,
		out:      out,
		timeout:  timeout,
		now:      time.Now,
		title:    r.NewStyle().Bold(true),
		category: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		dim:      r.NewStyle().Faint(true),
		warn:     r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Choose renders m and waits for a numbered choice. An empty line accepts
// fallback; invalid input is reported and asked for again. When the wait
// times out, the input is closed, or no operator is attached, fallback is
// kept. Only a canceled ctx is returned as an error.
func (mn *Menu) Choose(ctx context.Context, m *manifest.Manifest, fallback *manifest.Entry) (Choice, error) {
	keep := Choice{Entry: fallback}
	if !mn.in.Interactive() {
		return keep, nil
	}

	entries := mn.render(m, fallback)
	if len(entries) == 0 {
		return keep, nil
	}

	deadline := mn.now().Add(mn.timeout)
	for {
		remaining := deadline.Sub(mn.now())
		if remaining <= 0 {
			mn.keeping(fallback)
			return keep, nil
		}

		fmt.Fprintf(mn.out, "Enter number [1-%d]", len(entries))
		if fallback != nil {
			fmt.Fprintf(mn.out, " (default: %s)", fallback.DisplayName())
		}
		fmt.Fprint(mn.out, ": ")

		line, err := mn.in.WaitForInput(ctx, remaining)
		switch {
		case errors.Is(err, console.ErrTimedOut), errors.Is(err, io.EOF):
			fmt.Fprintln(mn.out)
			mn.keeping(fallback)
			return keep, nil
		case err != nil:
			return keep, err
		}

		line = strings.TrimSpace(line)
		if line == "" && fallback != nil {
			return Choice{Entry: fallback, Chosen: true}, nil
		}

		num, err := strconv.Atoi(line)
		if err != nil || num < 1 || num > len(entries) {
			fmt.Fprintln(mn.out, mn.warn.Render(fmt.Sprintf("invalid selection %q: choose 1-%d", line, len(entries))))
			continue
		}

		chosen, _ := m.Lookup(entries[num-1].ID)
		return Choice{Entry: chosen, Chosen: true}, nil
	}
}

// render prints the grouped list and returns the entries in numbering order.
func (mn *Menu) render(m *manifest.Manifest, current *manifest.Entry) []manifest.Entry {
	var entries []manifest.Entry

	fmt.Fprintf(mn.out, "\n%s\n", mn.title.Render("Select a program:"))
	for _, g := range m.Groups() {
		fmt.Fprintf(mn.out, "\n%s\n", mn.category.Render(strings.ToUpper(g.Category)))
		for _, e := range g.Entries {
			entries = append(entries, e)

			marker := " "
			if current != nil && e.ID == current.ID {
				marker = "*"
			}
			line := fmt.Sprintf(" %s %2d) %s", marker, len(entries), e.DisplayName())
			if e.Description != "" {
				line += mn.dim.Render("  " + e.Description)
			}
			fmt.Fprintln(mn.out, line)
		}
	}
	fmt.Fprintln(mn.out)
	return entries
}

func (mn *Menu) keeping(fallback *manifest.Entry) {
	if fallback == nil {
		fmt.Fprintln(mn.out, "No selection made.")
		return
	}
	fmt.Fprintf(mn.out, "No selection made, keeping %s.\n", fallback.DisplayName())
}
