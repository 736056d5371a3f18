package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

// Messages fed into the chat room program by the relay loop.
type (
	// HistoryMsg replaces the visible log with the room's full history.
	HistoryMsg []string
	// MembersMsg replaces the member list (excluding self).
	MembersMsg []signaling.Participant
	// MemberJoinedMsg adds one member.
	MemberJoinedMsg signaling.Participant
	// MemberLeftMsg removes a member by connection id.
	MemberLeftMsg string
	// NoticeMsg is a status line shown under the log.
	NoticeMsg string
	// DisconnectedMsg ends the session.
	DisconnectedMsg struct{ Err error }
)

const sidebarWidth = 22

// ChatModel is the bubbletea model of the room screen: history on the
// left, members on the right, input line at the bottom.
type ChatModel struct {
	room    string
	self    signaling.Participant
	send    func(string) error
	members []signaling.Participant
	history []string
	notice  string
	err     error

	log   viewport.Model
	input textinput.Model
	ready bool
	width int
}

// NewChatModel creates the room screen. send is called for every line the
// user submits.
func NewChatModel(room string, self signaling.Participant, send func(string) error) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Say something..."
	ti.Prompt = "› "
	ti.CharLimit = signaling.DefaultMaxChatLength
	ti.Focus()

	return ChatModel{
		room:  room,
		self:  self,
		send:  send,
		input: ti,
	}
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Err is the reason the session ended, if any.
func (m ChatModel) Err() error {
	return m.err
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if err := m.send(text); err != nil {
				m.notice = ErrorStyle.Render(err.Error())
			}
			m.input.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		logWidth := max(msg.Width-sidebarWidth-2, 10)
		logHeight := max(msg.Height-4, 3)
		if !m.ready {
			m.log = viewport.New(logWidth, logHeight)
			m.ready = true
		} else {
			m.log.Width = logWidth
			m.log.Height = logHeight
		}
		m.input.Width = max(msg.Width-4, 10)
		m.refreshLog()

	case HistoryMsg:
		m.history = []string(msg)
		m.refreshLog()

	case MembersMsg:
		m.members = []signaling.Participant(msg)

	case MemberJoinedMsg:
		p := signaling.Participant(msg)
		if !lo.ContainsBy(m.members, func(x signaling.Participant) bool { return x.ID == p.ID }) {
			m.members = append(m.members, p)
		}
		m.notice = fmt.Sprintf("%s %s joined", IconPeer, p.Username)

	case MemberLeftMsg:
		id := string(msg)
		name := id
		if p, ok := lo.Find(m.members, func(x signaling.Participant) bool { return x.ID == id }); ok {
			name = p.Username
		}
		m.members = lo.Reject(m.members, func(x signaling.Participant, _ int) bool { return x.ID == id })
		m.notice = fmt.Sprintf("%s %s left", IconLeft, name)

	case NoticeMsg:
		m.notice = string(msg)

	case DisconnectedMsg:
		m.err = msg.Err
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.log, cmd = m.log.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *ChatModel) refreshLog() {
	if !m.ready {
		return
	}
	lines := lo.Map(m.history, func(entry string, _ int) string {
		author, text := SplitEntry(entry)
		switch author {
		case "":
			return text
		case m.self.Username:
			return SelfStyle.Render(author+":") + " " + text
		default:
			return AuthorStyle.Render(author+":") + " " + text
		}
	})
	m.log.SetContent(strings.Join(lines, "\n"))
	m.log.GotoBottom()
}

func (m ChatModel) membersView() string {
	lines := []string{TitleStyle.Render("Members"), SelfStyle.Render(m.self.Username + " (you)")}
	for _, p := range m.members {
		lines = append(lines, p.Username)
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

func (m ChatModel) View() string {
	header := HeaderStyle.Render(fmt.Sprintf("%s %s", IconChat, m.room))
	if !m.ready {
		return header + "\n" + MutedStyle.Render("Loading...")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		BoxStyle.Render(m.log.View()),
		" ",
		m.membersView(),
	)
	footer := FooterStyle.Render(m.notice)
	if m.notice == "" {
		footer = FooterStyle.Render("enter to send · esc to leave")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.input.View(), footer)
}

// Members returns the members currently shown, excluding self.
func (m ChatModel) Members() []signaling.Participant {
	return m.members
}

// History returns the log currently shown.
func (m ChatModel) History() []string {
	return m.history
}
