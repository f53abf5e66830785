package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/ivictl/internal/compositor"
	"github.com/1broseidon/ivictl/internal/ipc"
)

// DefaultInterval is how often the watch view refreshes.
const DefaultInterval = 2 * time.Second

// Client is the daemon API the watch view reads from. *ipc.Client
// implements it.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListSurfaces() ([]compositor.SurfaceInfo, error)
	ListScreens() ([]compositor.ScreenInfo, error)
	SetVisibility(id uint32, visible bool) error
}

type tickMsg time.Time

type snapshotMsg struct {
	status   *ipc.StatusData
	surfaces []compositor.SurfaceInfo
	screens  []compositor.ScreenInfo
	err      error
}

type actionMsg struct {
	err error
}

// model is the bubbletea model behind `ivictl watch`.
type model struct {
	client   Client
	interval time.Duration

	status   *ipc.StatusData
	surfaces []compositor.SurfaceInfo
	screens  []compositor.ScreenInfo
	lastErr  string

	table  table.Model
	width  int
	height int
}

var surfaceColumns = []table.Column{
	{Title: "ID", Width: 10},
	{Title: "Visible", Width: 8},
	{Title: "Opacity", Width: 8},
	{Title: "Rect", Width: 22},
	{Title: "Frames", Width: 8},
	{Title: "PID", Width: 8},
	{Title: "Process", Width: 16},
}

func newModel(client Client, interval time.Duration) model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := table.New(
		table.WithColumns(surfaceColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return model{client: client, interval: interval, table: t}
}

// Run shows the live surface table until the user quits.
func Run(client Client, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("watch requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(client, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) fetch() tea.Msg {
	var msg snapshotMsg
	msg.status, msg.err = m.client.GetStatus()
	if msg.err != nil {
		return msg
	}
	if msg.surfaces, msg.err = m.client.ListSurfaces(); msg.err != nil {
		return msg
	}
	msg.screens, msg.err = m.client.ListScreens()
	return msg
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.fetch
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.fetch
		case "v":
			return m, m.toggleSelected()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		// status bar, title, screens line and help bar
		if h := msg.Height - 8; h > 1 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tickMsg:
		return m, m.fetch

	case snapshotMsg:
		if msg.err != nil {
			m.status = nil
			m.lastErr = msg.err.Error()
		} else {
			m.status = msg.status
			m.surfaces = msg.surfaces
			m.screens = msg.screens
			m.lastErr = ""
			m.table.SetRows(surfaceRows(msg.surfaces))
		}
		return m, m.tick()

	case actionMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			return m, nil
		}
		return m, m.fetch
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// toggleSelected flips the visibility of the highlighted surface.
func (m model) toggleSelected() tea.Cmd {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.surfaces) {
		return nil
	}
	s := m.surfaces[cursor]
	client := m.client
	return func() tea.Msg {
		return actionMsg{err: client.SetVisibility(uint32(s.ID), !s.Visible)}
	}
}

func surfaceRows(surfaces []compositor.SurfaceInfo) []table.Row {
	rows := make([]table.Row, 0, len(surfaces))
	for _, s := range surfaces {
		visible := "no"
		if s.Visible {
			visible = "yes"
		}
		if !s.Bound {
			visible = "unbound"
		}
		rows = append(rows, table.Row{
			s.ID.String(),
			visible,
			strconv.FormatFloat(s.Opacity, 'f', 2, 64),
			fmt.Sprintf("%d,%d %dx%d", s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height),
			strconv.FormatUint(uint64(s.Stats.FrameCount), 10),
			strconv.FormatUint(uint64(s.Stats.PID), 10),
			s.Stats.ProcessName,
		})
	}
	return rows
}

func renderScreens(screens []compositor.ScreenInfo) string {
	if len(screens) == 0 {
		return "screens: none"
	}
	ids := make([]string, 0, len(screens))
	for _, s := range screens {
		ids = append(ids, s.ID.String())
	}
	return "screens: " + strings.Join(ids, " ")
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	parts := []string{
		renderStatusBar(m.status, m.width),
		titleStyle.Render("Surfaces"),
		m.table.View(),
		sectionStyle.Render(renderScreens(m.screens)),
	}
	if m.lastErr != "" {
		parts = append(parts, errorStyle.Render(m.lastErr))
	}
	parts = append(parts, renderHelpBar(m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
