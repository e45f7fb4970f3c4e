package wrap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/plumdale/spinwrap/internal/discord"
)

const (
	pageSize         = 5
	emptyPlaceholder = "—"

	navCustomIDPrefix = "wrap"
)

// BuildPage renders one page of summary lines into a view model. It is a
// pure function of its inputs: the requested page is clamped into range, an
// empty slice renders the placeholder, and navigation flags appear only when
// there is more than one page.
func BuildPage(lines []string, page int, title string) discord.PageView {
	totalPages := (len(lines) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page * pageSize
	end := start + pageSize
	if start > len(lines) {
		start = len(lines)
	}
	if end > len(lines) {
		end = len(lines)
	}
	description := strings.Join(lines[start:end], "\n")
	if description == "" {
		description = emptyPlaceholder
	}

	return discord.PageView{
		Title:        title,
		Description:  description,
		Footer:       fmt.Sprintf("Page %d / %d", page+1, totalPages),
		Page:         page,
		TotalPages:   totalPages,
		HasNav:       totalPages > 1,
		PrevDisabled: page == 0,
		NextDisabled: page == totalPages-1,
	}
}

// BuildGuildPage is BuildPage with nav button custom IDs bound to a guild so
// button clicks can replay the build at a different page.
func BuildGuildPage(guildID string, lines []string, page int, title string) discord.PageView {
	view := BuildPage(lines, page, title)
	if view.HasNav {
		view.PrevCustomID = NavCustomID(guildID, view.Page-1)
		view.NextCustomID = NavCustomID(guildID, view.Page+1)
	}
	return view
}

func NavCustomID(guildID string, page int) string {
	return fmt.Sprintf("%s:%s:%d", navCustomIDPrefix, guildID, page)
}

// ParseNavCustomID recovers the guild and target page from a nav button
// custom ID. ok is false for component IDs owned by other features.
func ParseNavCustomID(customID string) (guildID string, page int, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != navCustomIDPrefix {
		return "", 0, false
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, false
	}
	return parts[1], page, true
}
