package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/interaction"
	"github.com/matzehuels/orgchart/pkg/render"
)

// Rows reserved above and below the chart.
const (
	viewHeaderRows = 1
	viewFooterRows = 2
)

// Keyboard pan distance in screen units.
const (
	panStepX = 8.0
	panStepY = 4 * render.TermRowHeight
)

var (
	viewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	viewBadgeStyle  = lipgloss.NewStyle().Foreground(colorGray)
	viewStatusStyle = lipgloss.NewStyle().Foreground(colorDim)
	viewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)

	viewListStyles = render.ListStyles{
		Name:       lipgloss.NewStyle().Foreground(colorWhite).Bold(true),
		Role:       lipgloss.NewStyle().Foreground(colorGray),
		Collapsed:  lipgloss.NewStyle().Foreground(colorAmber),
		Enumerator: lipgloss.NewStyle().Foreground(colorDim),
	}
)

// =============================================================================
// Key Bindings
// =============================================================================

type viewKeyMap struct {
	Up, Down, Left, Right key.Binding
	ZoomIn, ZoomOut, Fit  key.Binding
	Toggle, ExpandAll     key.Binding
	Deeper, Shallower     key.Binding
	Mode, Display, Edit   key.Binding
	Reset, Reload         key.Binding
	Help, Quit            key.Binding
}

var viewKeys = viewKeyMap{
	Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "pan up")),
	Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "pan down")),
	Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "pan left")),
	Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan right")),
	ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
	Fit:       key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "fit")),
	Toggle:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse selected")),
	ExpandAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "expand all")),
	Deeper:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "more levels")),
	Shallower: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "fewer levels")),
	Mode:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "next view mode")),
	Display:   key.NewBinding(key.WithKeys("l", "tab"), key.WithHelp("l", "chart/list")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
	Reset:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset positions")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ZoomIn, k.ZoomOut, k.Fit, k.Mode, k.Display, k.Help, k.Quit}
}

func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Reset},
		{k.Toggle, k.ExpandAll, k.Deeper, k.Shallower},
		{k.Mode, k.Display, k.Edit, k.Reload},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// ViewModel - Interactive chart browser
// =============================================================================

// loadFunc fetches the hierarchy a controller request asks for.
type loadFunc func(ctx context.Context, req interaction.Request) (*hierarchy.OrgNode, error)

// loadedMsg carries a finished fetch back into the update loop.
type loadedMsg struct {
	token uint64
	root  *hierarchy.OrgNode
	err   error
}

// ViewModel is the bubbletea model for browsing one organization chart.
// Fetches run as commands; starting a fetch cancels the previous one, and
// results are matched to the controller's request token so a late response
// for an old view mode is dropped.
type ViewModel struct {
	ctx    context.Context
	ctrl   *interaction.Controller
	load   loadFunc
	help   help.Model
	cancel context.CancelFunc

	width, height int
	message       string
}

func newViewModel(ctx context.Context, ctrl *interaction.Controller, load loadFunc) *ViewModel {
	return &ViewModel{ctx: ctx, ctrl: ctrl, load: load, help: help.New()}
}

func (m *ViewModel) Init() tea.Cmd {
	if m.ctrl.Config().OrganizationID == "" {
		return nil
	}
	return m.fetch(m.ctrl.BeginLoad())
}

func (m *ViewModel) fetch(req interaction.Request) tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	load := m.load
	return func() tea.Msg {
		defer cancel()
		root, err := load(ctx, req)
		return loadedMsg{token: req.Token, root: root, err: err}
	}
}

func (m *ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ctrl.Resize(float64(msg.Width), float64(m.chartRows())*render.TermRowHeight)
	case loadedMsg:
		if m.ctrl.CompleteLoad(msg.token, msg.root, msg.err) {
			m.message = ""
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *ViewModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	c := m.ctrl
	m.message = ""
	switch {
	case key.Matches(msg, viewKeys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return tea.Quit
	case key.Matches(msg, viewKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, viewKeys.Up):
		c.Pan(0, panStepY)
	case key.Matches(msg, viewKeys.Down):
		c.Pan(0, -panStepY)
	case key.Matches(msg, viewKeys.Left):
		c.Pan(panStepX, 0)
	case key.Matches(msg, viewKeys.Right):
		c.Pan(-panStepX, 0)
	case key.Matches(msg, viewKeys.ZoomIn):
		c.ZoomIn()
	case key.Matches(msg, viewKeys.ZoomOut):
		c.ZoomOut()
	case key.Matches(msg, viewKeys.Fit):
		c.FitToContent()
	case key.Matches(msg, viewKeys.Toggle):
		if id := c.Selected(); id != "" {
			if _, err := c.Toggle(id); err != nil {
				m.message = errors.UserMessage(err)
			}
		}
	case key.Matches(msg, viewKeys.ExpandAll):
		c.ExpandAll()
	case key.Matches(msg, viewKeys.Deeper):
		m.setDetail(c.Config().DetailLevel + 1)
	case key.Matches(msg, viewKeys.Shallower):
		m.setDetail(c.Config().DetailLevel - 1)
	case key.Matches(msg, viewKeys.Mode):
		return m.fetch(c.CycleViewMode())
	case key.Matches(msg, viewKeys.Display):
		c.ToggleDisplayMode()
	case key.Matches(msg, viewKeys.Edit):
		c.SetReadOnly(!c.Config().ReadOnly)
	case key.Matches(msg, viewKeys.Reset):
		if id := c.Selected(); id == "" || !c.ResetPosition(id) {
			c.ResetPositions()
		}
	case key.Matches(msg, viewKeys.Reload):
		if c.Config().OrganizationID != "" {
			return m.fetch(c.Reload())
		}
	}
	return nil
}

func (m *ViewModel) setDetail(level int) {
	if err := m.ctrl.SetDetailLevel(level); err != nil {
		m.message = errors.UserMessage(err)
	}
}

func (m *ViewModel) handleMouse(msg tea.MouseMsg) {
	if m.ctrl.DisplayMode() != interaction.DisplayTree {
		return
	}
	row := msg.Y - viewHeaderRows
	if row < 0 || row >= m.chartRows() {
		m.ctrl.PointerLeave()
		return
	}
	p := geom.Point{X: float64(msg.X), Y: float64(row) * render.TermRowHeight}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.ctrl.Wheel(p, 1)
		return
	case tea.MouseButtonWheelDown:
		m.ctrl.Wheel(p, -1)
		return
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ctrl.PointerDown(p)
		}
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(p)
	case tea.MouseActionRelease:
		m.ctrl.PointerUp(p)
	}
}

func (m *ViewModel) chartRows() int {
	return max(m.height-viewHeaderRows-viewFooterRows, 0)
}

func (m *ViewModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")
	b.WriteString(m.help.View(viewKeys))
	return b.String()
}

func (m *ViewModel) header() string {
	cfg := m.ctrl.Config()
	org := cfg.OrganizationID
	if org == "" {
		org = "no organization"
	}
	mode := "read-only"
	if !cfg.ReadOnly {
		mode = "editing"
	}
	badges := fmt.Sprintf("%s · detail %d · %.0f%% · %s · %s",
		cfg.ViewMode, cfg.DetailLevel, m.ctrl.Viewport().ZoomPercent(), m.ctrl.DisplayMode(), mode)
	return viewTitleStyle.Render(org) + "  " + viewBadgeStyle.Render(badges)
}

func (m *ViewModel) body() string {
	rows := m.chartRows()
	if m.ctrl.DisplayMode() == interaction.DisplayList {
		return clipLines(m.listBody(), rows)
	}
	canvas := render.NewTermCanvas(m.width, rows)
	render.DrawScene(canvas, m.ctrl.Frame(), m.ctrl.Viewport(), canvas.Screen())
	return canvas.String()
}

func (m *ViewModel) listBody() string {
	switch m.ctrl.Status() {
	case interaction.StatusReady:
		return render.ListText(m.ctrl.Root(), m.ctrl.CollapseState(), m.ctrl.Config().DetailLevel, viewListStyles)
	case interaction.StatusLoading:
		return viewStatusStyle.Render("Loading…")
	case interaction.StatusFailed:
		return viewErrorStyle.Render(errors.UserMessage(m.ctrl.Err()))
	default:
		return viewStatusStyle.Render("No hierarchy to show.")
	}
}

func (m *ViewModel) footer() string {
	if m.message != "" {
		return viewErrorStyle.Render(m.message)
	}
	parts := []string{m.ctrl.Status().String()}
	if root := m.ctrl.Root(); root != nil {
		parts = append(parts, fmt.Sprintf("%d nodes", hierarchy.Count(root)))
	}
	if id := m.ctrl.Selected(); id != "" {
		label := id
		if n := m.ctrl.Scene().Node(id); n != nil {
			label = n.Label()
		}
		parts = append(parts, "selected: "+label)
	}
	return viewStatusStyle.Render(strings.Join(parts, " · "))
}

// clipLines pads or truncates s to exactly n lines.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
