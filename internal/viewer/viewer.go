// Package viewer is the interactive terminal preview: a scrollable view of
// the decorated document with keys to change the rendering tier and the
// outside-math policy. Changes to the watched file arrive as render
// updates; tier and policy changes are written back to the config file.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/typstmath/internal/config"
	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/preview"
	"github.com/zjrosen/typstmath/internal/pubsub"
	"github.com/zjrosen/typstmath/internal/walker"
	"github.com/zjrosen/typstmath/internal/watcher"
)

// Mode selects what the viewport shows.
type Mode int

const (
	ModePreview Mode = iota
	ModeDiff
	ModeLegend
)

var modeNames = []string{"preview", "diff", "legend"}

func (m Mode) String() string { return modeNames[m] }

// renderedMsg carries a decoration pass started by the viewer.
type renderedMsg struct {
	text   string
	opts   walker.Options
	result *engine.Result
	err    error
}

// savedMsg reports the outcome of persisting a toggle.
type savedMsg struct {
	err error
}

// Config wires a Model.
type Config struct {
	// Path names the document in the status bar; empty for stdin.
	Path string
	// Text is the initial document.
	Text string
	// Decorator renders Text whenever the options change.
	Decorator watcher.Decorator
	Options   walker.Options
	Theme     preview.Theme
	// ConfigPath receives tier and outside-math changes; empty disables
	// saving.
	ConfigPath string
	// Renderer, when set, is kept on the same options so that watch
	// renders match what the viewer shows.
	Renderer *watcher.Renderer
	// Updates delivers watch renders.
	Updates *pubsub.ContinuousListener[watcher.Update]
	// Logs, when set, surfaces warnings and errors in the status bar.
	Logs *log.Listener
}

var (
	statusStyle  = lipgloss.NewStyle().Foreground(preview.MutedColor)
	errorStyle   = lipgloss.NewStyle().Foreground(preview.OperatorColor)
	problemStyle = lipgloss.NewStyle().Foreground(preview.ComparisonColor)
)

// Model is the viewer state.
type Model struct {
	ctx      context.Context
	cfg      Config
	keys     KeyMap
	help     help.Model
	viewport viewport.Model

	text   string
	result *engine.Result
	err    error
	opts   walker.Options
	mode   Mode
	notice string

	width  int
	height int
	ready  bool
}

// New creates a viewer model. ctx bounds the decoration passes it starts.
func New(ctx context.Context, cfg Config) Model {
	return Model{
		ctx:  ctx,
		cfg:  cfg,
		keys: DefaultKeyMap(),
		help: help.New(),
		text: cfg.Text,
		opts: cfg.Options,
	}
}

// Options returns the options currently in effect.
func (m Model) Options() walker.Options { return m.opts }

// Mode returns the current view mode.
func (m Model) Mode() Mode { return m.mode }

// Result returns the latest decoration result, nil before the first one.
func (m Model) Result() *engine.Result { return m.result }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.decorate()}
	if m.cfg.Updates != nil {
		cmds = append(cmds, m.cfg.Updates.Listen())
	}
	if m.cfg.Logs != nil {
		cmds = append(cmds, m.cfg.Logs.Listen())
	}
	return tea.Batch(cmds...)
}

func (m Model) decorate() tea.Cmd {
	ctx, dec, text, opts := m.ctx, m.cfg.Decorator, m.text, m.opts
	return func() tea.Msg {
		res, err := dec.Decorate(ctx, text, opts)
		return renderedMsg{text: text, opts: opts, result: res, err: err}
	}
}

func (m Model) save() tea.Cmd {
	if m.cfg.ConfigPath == "" {
		return nil
	}
	path, opts := m.cfg.ConfigPath, m.opts
	return func() tea.Msg {
		if err := config.SaveRenderingMode(path, opts.RenderingMode); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{err: config.SaveRenderOutsideMath(path, opts.RenderOutsideMath)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case renderedMsg:
		if msg.text != m.text || msg.opts != m.opts {
			// Superseded by a watch update or another toggle.
			return m, nil
		}
		m.result, m.err = msg.result, msg.err
		m.refresh()
		return m, nil

	case pubsub.Event[watcher.Update]:
		m.applyUpdate(msg)
		if m.cfg.Updates == nil {
			return m, nil
		}
		return m, m.cfg.Updates.Listen()

	case log.Event:
		if entry := msg.Payload; entry.Level >= log.LevelWarn && entry.Category != log.CatUI {
			m.notice = fmt.Sprintf("%s: %s", entry.Category, entry.Message)
		}
		if m.cfg.Logs == nil {
			return m, nil
		}
		return m, m.cfg.Logs.Listen()

	case savedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "saving viewer settings", msg.err)
			m.notice = "save failed: " + msg.err.Error()
		} else {
			m.notice = "saved"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyUpdate(event pubsub.Event[watcher.Update]) {
	u := event.Payload
	switch event.Type {
	case pubsub.CreatedEvent, pubsub.UpdatedEvent:
		m.text, m.result, m.err = u.Text, u.Result, nil
		m.notice = ""
	case pubsub.FailedEvent:
		m.err = u.Err
	case pubsub.DeletedEvent:
		m.err = fmt.Errorf("%s was removed", u.Path)
	}
	log.Debug(log.CatUI, "watch update", "type", string(event.Type), "path", u.Path)
	m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		m.mode = (m.mode + 1) % Mode(len(modeNames))
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.TierUp):
		if m.opts.RenderingMode >= walker.MaxRenderingMode {
			return m, nil
		}
		m.opts.RenderingMode++
		return m, m.optionsChanged()

	case key.Matches(msg, m.keys.TierDown):
		if m.opts.RenderingMode <= walker.TierSymbols {
			return m, nil
		}
		m.opts.RenderingMode--
		return m, m.optionsChanged()

	case key.Matches(msg, m.keys.Outside):
		m.opts.RenderOutsideMath = !m.opts.RenderOutsideMath
		return m, m.optionsChanged()

	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) optionsChanged() tea.Cmd {
	log.Debug(log.CatUI, "options changed", "mode", m.opts.RenderingMode, "outside_math", m.opts.RenderOutsideMath)
	if m.cfg.Renderer != nil {
		m.cfg.Renderer.SetOptions(m.opts)
	}
	return tea.Batch(m.decorate(), m.save())
}

func (m *Model) resize() {
	footer := lipgloss.Height(m.footer())
	height := max(1, m.height-footer)
	if !m.ready {
		m.viewport = viewport.New(m.width, height)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.body())
}

// body is the viewport content for the current mode, wrapped to width.
func (m Model) body() string {
	if m.result == nil {
		if m.err != nil {
			return errorStyle.Render(m.err.Error())
		}
		return statusStyle.Render("rendering…")
	}

	theme := m.cfg.Theme
	var content string
	switch m.mode {
	case ModeDiff:
		content = preview.Diff(m.text, m.result.Decorations)
	case ModeLegend:
		content = preview.Legend(m.result.Decorations, theme)
	default:
		content = preview.Render(m.text, m.result.Decorations, theme)
	}
	if m.err != nil {
		content = errorStyle.Render(m.err.Error()) + "\n\n" + content
	}
	if m.width > 0 && m.mode != ModeLegend {
		content = wrap.String(wordwrap.String(content, m.width), m.width)
	}
	return content
}

func (m Model) status() string {
	name := m.cfg.Path
	if name == "" {
		name = "stdin"
	}
	left := fmt.Sprintf(" %s · %s · tier %d", name, m.mode, m.opts.RenderingMode)
	if m.opts.RenderOutsideMath {
		left += " · #sym"
	}

	var right []string
	if m.result != nil {
		right = append(right, fmt.Sprintf("%d decorations", m.result.Decorations.Len()))
		if n := len(engine.Flatten(m.result.Problems)); n > 0 {
			right = append(right, problemStyle.Render(fmt.Sprintf("%d problems", n)))
		}
	}
	if m.notice != "" {
		right = append(right, m.notice)
	}
	rightText := strings.Join(right, " · ") + " "

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(rightText)
	if gap < 1 {
		return ansi.Truncate(statusStyle.Render(left)+" "+rightText, max(0, m.width), "…")
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + rightText
}

func (m Model) footer() string {
	return m.status() + "\n" + m.help.View(m.keys)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	return m.viewport.View() + "\n" + m.footer()
}
