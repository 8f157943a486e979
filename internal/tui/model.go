// Package tui is the terminal front-end. It drives the same engine as the
// GTK window: typing filters, Enter runs the only visible entry, Tab runs
// the highlighted one and Esc quits.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chess10kp/lanzador/internal/launcher"
	"github.com/chess10kp/lanzador/internal/logging"
	"github.com/chess10kp/lanzador/internal/statusbar"
	"github.com/chess10kp/lanzador/internal/statusbar/modules"
)

var log = logging.For("tui")

// viewMsg carries a finished filter back to Update.
type viewMsg struct {
	version int
	view    *launcher.View
}

// enterMsg carries the view resolved for the text Enter was pressed on.
type enterMsg struct {
	text string
	view *launcher.View
}

// statusMsg carries a poller snapshot.
type statusMsg statusbar.Snapshot

type Model struct {
	ctx    context.Context
	engine *launcher.Engine

	input    textinput.Model
	items    []*launcher.LauncherItem
	cursor   int
	version  int
	showHelp bool
	theme    string

	statusNames []string
	status      statusbar.Snapshot
	message     string
	quitting    bool
}

// New creates the model. statusNames lists the readings shown in the
// footer; nil hides it.
func New(ctx context.Context, engine *launcher.Engine, statusNames []string) *Model {
	input := textinput.New()
	input.Placeholder = "Search or type a prefix"
	input.Prompt = "> "
	input.Focus()

	return &Model{
		ctx:         ctx,
		engine:      engine,
		input:       input,
		statusNames: statusNames,
	}
}

// ApplyStylesheet implements launcher.UI. A terminal cannot render CSS, so
// only the name is kept for the footer.
func (m *Model) ApplyStylesheet(name, css string) error {
	m.theme = name
	return nil
}

// ShowHelp implements launcher.UI.
func (m *Model) ShowHelp() {
	m.showHelp = true
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.filter(""))
}

// filter starts a search for text. Only the newest search is shown.
func (m *Model) filter(text string) tea.Cmd {
	m.version++
	version := m.version
	return func() tea.Msg {
		return viewMsg{version: version, view: m.engine.Filter(m.ctx, text)}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case viewMsg:
		if msg.version != m.version {
			return m, nil
		}
		m.items = msg.view.Items
		m.cursor = 0
		if msg.view.ShowHelp() {
			m.showHelp = true
		}
		return m, nil

	case enterMsg:
		if msg.text != m.input.Value() {
			return m, nil
		}
		return m.enter(msg.view)

	case statusMsg:
		m.status = statusbar.Snapshot(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter, tea.KeyF1:
			return m, m.closeHelp()
		case tea.KeyCtrlC:
			return m.quit()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return m.quit()

	case tea.KeyF1:
		m.report(m.engine.Help(m.ctx))
		return m, nil

	case tea.KeyEnter:
		text := m.input.Value()
		if view := m.engine.View(); view != nil && view.Text == text {
			return m.enter(view)
		}
		return m, m.resolve(text)

	case tea.KeyTab:
		if m.cursor < 0 || m.cursor >= len(m.items) {
			return m, nil
		}
		return m.finish(m.engine.Activate(m.ctx, m.items[m.cursor]))

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.message = ""
	return m, tea.Batch(cmd, m.filter(m.input.Value()))
}

// resolve waits for the view of text off the Update goroutine. The entry is
// only run if the text is unchanged when the view arrives.
func (m *Model) resolve(text string) tea.Cmd {
	return func() tea.Msg {
		return enterMsg{text: text, view: m.engine.Resolve(m.ctx, text)}
	}
}

func (m *Model) enter(view *launcher.View) (tea.Model, tea.Cmd) {
	outcome, err := m.engine.EnterView(m.ctx, view)
	if errors.Is(err, launcher.ErrNoSingleMatch) {
		return m, nil
	}
	return m.finish(outcome, err)
}

func (m *Model) finish(outcome launcher.Outcome, err error) (tea.Model, tea.Cmd) {
	m.report(err)
	if err != nil {
		return m, nil
	}

	var cmds []tea.Cmd
	if outcome.SetText {
		m.input.SetValue(outcome.Text)
		m.input.CursorEnd()
	}
	if outcome.Close {
		m.quitting = true
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) report(err error) {
	if err != nil {
		log.WithError(err).Error("activation failed")
		m.message = err.Error()
	}
}

func (m *Model) closeHelp() tea.Cmd {
	m.showHelp = false
	m.input.SetValue("")
	return m.filter("")
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(Theme.Input.Render(m.input.View()))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.helpView())
	} else {
		b.WriteString(m.listView())
	}

	if footer := m.statusView(); footer != "" {
		b.WriteString("\n")
		b.WriteString(Theme.Status.Render(footer))
	}
	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(Theme.Error.Render(m.message))
	}

	return Theme.App.Render(b.String())
}

func (m *Model) listView() string {
	if len(m.items) == 0 {
		return Theme.Empty.Render("no matches")
	}

	lines := make([]string, 0, len(m.items))
	for i, item := range m.items {
		title := item.Title
		if item.Subtitle != "" {
			title += " " + Theme.Subtitle.Render(item.Subtitle)
		}
		if i == m.cursor {
			lines = append(lines, Theme.Selected.Render("▸ ")+Theme.Selected.Render(title))
			continue
		}
		lines = append(lines, "  "+Theme.Unselected.Render(title))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) helpView() string {
	var b strings.Builder
	for i, section := range m.engine.HelpSections() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Theme.HelpTitle.Render(section.Title))
		for _, line := range section.Lines {
			b.WriteString("\n  " + line)
		}
	}
	b.WriteString("\n\n" + Theme.Subtitle.Render("Tab: run the highlighted entry · F1 or Esc: close help"))
	return Theme.HelpBox.Render(b.String())
}

func (m *Model) statusView() string {
	parts := make([]string, 0, len(m.statusNames)+1)
	for _, name := range m.statusNames {
		parts = append(parts, fmt.Sprintf("%s %s", modules.Caption(name), m.status.Get(name)))
	}
	if m.theme != "" {
		parts = append(parts, "theme "+m.theme)
	}
	return strings.Join(parts, "  ")
}

// Items returns the visible entries.
func (m *Model) Items() []*launcher.LauncherItem {
	return m.items
}

// Cursor returns the highlighted row.
func (m *Model) Cursor() int {
	return m.cursor
}

// HelpVisible reports whether the help panel is open.
func (m *Model) HelpVisible() bool {
	return m.showHelp
}
