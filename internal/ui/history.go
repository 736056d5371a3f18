package ui

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
)

// SplitEntry separates a history entry into author and text. Entries without
// the "<username>: " prefix have no author.
func SplitEntry(entry string) (author, text string) {
	author, text, ok := strings.Cut(entry, ": ")
	if !ok {
		return "", entry
	}
	return author, text
}

// HistoryView renders a room's chat log as a tree under the room name.
func HistoryView(room string, entries []string) string {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	l.AppendItem(TitleStyle.Render(IconChat + " " + room))
	l.Indent()

	if len(entries) == 0 {
		l.AppendItem(MutedStyle.Render("no messages yet"))
		return l.Render()
	}
	for _, entry := range entries {
		author, text := SplitEntry(entry)
		if author == "" {
			l.AppendItem(text)
			continue
		}
		l.AppendItem(AuthorStyle.Render(author+":") + " " + text)
	}
	return l.Render()
}
