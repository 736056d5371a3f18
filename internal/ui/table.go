package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

func styledTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})
}

// MemberTableView renders room members in join order, marking self.
func MemberTableView(members []signaling.Participant, self string) string {
	if len(members) == 0 {
		return MutedStyle.Render("No one else is here yet")
	}

	rows := make([][]string, 0, len(members))
	for i, m := range members {
		name := m.Username
		if m.ID == self {
			name += " (you)"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), name, m.ID})
	}
	return styledTable([]string{"#", "Username", "Connection"}, rows).Render()
}

// RoomInfo describes the room a command just entered.
type RoomInfo struct {
	Room    string
	Self    signaling.Participant
	Created bool
}

func (r RoomInfo) View() string {
	headline := fmt.Sprintf("%s Joined room", IconRoom)
	if r.Created {
		headline = fmt.Sprintf("%s Room created", IconSuccess)
	}

	content := fmt.Sprintf("%s\n\n%s Room:  %s\n%s You:   %s",
		headline,
		IconChat, BoldStyle.Foreground(Primary).Render(r.Room),
		IconPeer, MutedStyle.Render(r.Self.Username),
	)
	return SuccessBoxStyle.Render(content)
}
