package bootstrap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Banner renders the end-of-run summary.
func Banner(effects []Effect) string {
	var changed, skipped int
	var skippedTools []string
	for _, e := range effects {
		switch {
		case e.Kind == SkippedAsset:
			skipped++
			skippedTools = append(skippedTools, e.Subject)
		case e.Kind.changes():
			changed++
		}
	}

	lines := []string{titleStyle.Render("Bootstrap complete")}
	if changed == 0 {
		lines = append(lines, "Nothing to do, the machine is already set up.")
	} else {
		lines = append(lines, fmt.Sprintf("%d change(s) applied.", changed))
	}
	if skipped > 0 {
		lines = append(lines, skipStyle.Render(fmt.Sprintf("Skipped (no release asset): %s", strings.Join(skippedTools, ", "))))
	}
	lines = append(lines, "Open a new login shell to pick up the changes.")
	return bannerStyle.Render(strings.Join(lines, "\n"))
}
