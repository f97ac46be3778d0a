// Package tui provides the Bubble Tea session timer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/focuspulse/internal/model"
	"github.com/verte-zerg/focuspulse/internal/session"
	"github.com/verte-zerg/focuspulse/internal/stats"
)

// Controller applies lifecycle operations to the running session.
type Controller interface {
	PauseSession(ctx context.Context, userID, id string) (model.Session, error)
	ResumeSession(ctx context.Context, userID, id string) (model.Session, error)
	EndSession(ctx context.Context, userID, id, notes string) (model.EndSummary, error)
}

type tickMsg time.Time

// sessionMsg carries the result of a pause or resume.
type sessionMsg struct {
	session model.Session
	err     error
}

// endedMsg carries the result of ending the session.
type endedMsg struct {
	summary model.EndSummary
	err     error
}

// Model implements the Bubble Tea timer UI.
type Model struct {
	ctrl    Controller
	userID  string
	session model.Session
	now     func() time.Time
	current time.Time

	width  int
	height int

	// busy is set while a lifecycle call is in flight.
	busy    bool
	summary *model.EndSummary
	err     error
}

var (
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a timer for an open session. now defaults to time.Now.
func NewModel(ctrl Controller, userID string, s model.Session, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	return &Model{
		ctrl:    ctrl,
		userID:  userID,
		session: s,
		now:     now,
		current: now(),
	}
}

// Summary returns the end summary once the session was ended from the timer.
func (m *Model) Summary() (model.EndSummary, bool) {
	if m.summary == nil {
		return model.EndSummary{}, false
	}
	return *m.summary, true
}

// Err returns the last lifecycle error, if any.
func (m *Model) Err() error {
	return m.err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.summary != nil {
			return m, nil
		}
		m.current = m.now()
		return m, tick()
	case sessionMsg:
		m.busy = false
		m.current = m.now()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.session = msg.session
		return m, nil
	case endedMsg:
		m.busy = false
		m.current = m.now()
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.summary = &msg.summary
		return m, nil
	case tea.KeyMsg:
		if m.summary != nil {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p", " ":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.togglePause()
		case "e":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.end()
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) togglePause() tea.Cmd {
	ctrl, userID, id := m.ctrl, m.userID, m.session.ID
	if m.session.IsPaused {
		return func() tea.Msg {
			next, err := ctrl.ResumeSession(context.Background(), userID, id)
			return sessionMsg{session: next, err: err}
		}
	}
	return func() tea.Msg {
		next, err := ctrl.PauseSession(context.Background(), userID, id)
		return sessionMsg{session: next, err: err}
	}
}

func (m *Model) end() tea.Cmd {
	ctrl, userID, id := m.ctrl, m.userID, m.session.ID
	return func() tea.Msg {
		summary, err := ctrl.EndSession(context.Background(), userID, id, "")
		return endedMsg{summary: summary, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	content = lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(
		wrapStyledRunes(styleText(m.session.Title, titleStyle), contentWidth) + "\n\n" + content,
	)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBody() string {
	var lines []string
	if m.summary != nil {
		lines = append(lines,
			clockStyle.Render("Session complete"),
			fmt.Sprintf("Focus %s · Breaks %d (%s)",
				stats.FormatFocusTime(m.summary.Duration),
				m.summary.BreakCount,
				stats.FormatFocusTime(m.summary.TotalBreakTime)),
		)
		if m.summary.Clamped {
			lines = append(lines, errorStyle.Render("Break time exceeded elapsed time; focus set to 0"))
		}
		lines = append(lines, footerStyle.Render("press any key to exit"))
		return strings.Join(lines, "\n")
	}
	clock := stats.FormatClock(session.Elapsed(m.session, m.current))
	if m.session.IsPaused {
		lines = append(lines, pausedStyle.Render(clock+"  paused"))
	} else {
		lines = append(lines, clockStyle.Render(clock))
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	state := session.StateOf(m.session)
	if m.summary != nil {
		state = session.StateCompleted
	}
	segments := []string{fmt.Sprintf("State %s", state)}
	segments = append(segments, fmt.Sprintf("Breaks %d · %s",
		m.session.BreakCount,
		stats.FormatFocusTime(session.BreakSeconds(m.session, m.current))))
	if m.summary == nil {
		action := "p pause"
		if m.session.IsPaused {
			action = "p resume"
		}
		segments = append(segments, action+" · e end · q detach")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// Run starts the timer and blocks until the user ends or detaches.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
