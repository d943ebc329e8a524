package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
)

func (a *App) printView(v models.DailyView) {
	prefix := ""
	if v.Offline {
		prefix = "[offline] "
	}

	switch v.Mode {
	case models.ModeProvisional:
		a.println(prefix + fmt.Sprintf("Your saved entry for %s (checking the server...)", v.Date))
		a.printEntry(*v.Entry)
	case models.ModeCreate:
		a.println(prefix + fmt.Sprintf("No entry for %s yet. Type 'write' to add one.", v.Date))
	case models.ModeEdit:
		a.println(prefix + fmt.Sprintf("Your entry for %s. Type 'edit' to change it.", v.Date))
		a.printEntry(*v.Entry)
	default:
		a.println(prefix + "Today's entry is not available right now")
	}

	if n := len(v.Duplicates); n > 0 {
		a.println(fmt.Sprintf("Note: %d more entries exist for this day", n))
	}
}

func (a *App) printEntry(e api.Entry) {
	a.println("  Rose:  " + e.RoseText)
	a.println("  Bud:   " + e.BudText)
	a.println("  Thorn: " + e.ThornText)
	if len(e.Tags) > 0 {
		a.println("  Tags:  " + strings.Join(e.Tags, ", "))
	}
	visibility := "private"
	if e.IsPublic {
		visibility = "shared"
	}
	line := "  " + visibility
	if r := summarizeReactions(e.Reactions); r != "" {
		line += ", " + r
	}
	a.println(line)
}

// summarizeReactions renders counts per kind, e.g. "love x2, like x1".
func summarizeReactions(rs []api.Reaction) string {
	if len(rs) == 0 {
		return ""
	}
	counts := map[string]int{}
	for _, r := range rs {
		counts[r.ReactionKind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s x%d", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}
