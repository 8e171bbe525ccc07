package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/logging"
	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/prefs"
	"github.com/five82/quicklinks/internal/state"
	"github.com/five82/quicklinks/internal/syncer"
	"github.com/five82/quicklinks/internal/watch"
)

// focus identifies the widget that receives key presses.
type focus int

const (
	focusList focus = iota
	focusSearch
	focusPane
)

// paneMode is what the import/export pane is showing.
type paneMode int

const (
	paneClosed paneMode = iota
	paneExport
	paneImport
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *popup.Controller
	// StoreEvents triggers a re-resolve whenever the store changes on disk.
	StoreEvents <-chan watch.Event
	// InitialSync is the soft sync started at launch, if one was due.
	InitialSync *syncer.Handle
	ThemeName   string
	View        links.Kind
	PrefsPath   string
	Logger      *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctrl      *popup.Controller
	events    <-chan watch.Event
	initial   *syncer.Handle
	prefsPath string
	logger    *slog.Logger
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	focus    focus

	// Data state
	state    popup.State
	snapshot state.Snapshot
	loaded   bool

	// Widgets
	list     listState
	viewport viewport.Model
	search   textinput.Model
	pane     textarea.Model
	paneMode paneMode

	// Status
	message    string
	messageErr bool
	messageAt  time.Time
	syncing    bool
}

// New creates the Bubble Tea model. The controller is required.
func New(opts Options) (Model, error) {
	if opts.Controller == nil {
		return Model{}, apperr.ElementMissing("controller")
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	st := popup.Initial()
	if opts.View == links.Customers {
		st.View = links.Customers
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search links..."
	search.CharLimit = SearchCharLimit

	pane := textarea.New()
	pane.ShowLineNumbers = false
	pane.Placeholder = "Paste JSON here, then ctrl+s"
	pane.CharLimit = 0

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		events:    opts.StoreEvents,
		initial:   opts.InitialSync,
		prefsPath: prefsPath,
		logger:    logging.OrDiscard(opts.Logger),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		state:     st,
		search:    search,
		pane:      pane,
		viewport:  viewport.New(0, 0),
	}
	if m.initial != nil {
		m.syncing = true
		m.message = popup.MsgSyncRunning
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.refreshCmd(),
	}
	if m.events != nil {
		cmds = append(cmds, waitStoreEvent(m.events))
	}
	if m.initial != nil {
		cmds = append(cmds, waitSync(m.initial))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.syncViewport()
		return m, nil

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.loaded = true
		m.rebuild()
		if msg.err != nil {
			cmd := m.setMessage(msg.err.Error(), true)
			return m, cmd
		}
		return m, nil

	case outcomeMsg:
		return m.handleOutcome(msg)

	case syncDoneMsg:
		m.syncing = false
		text, isErr := popup.SyncMessage(msg.report)
		tick := m.setMessage(text, isErr)
		return m, tea.Batch(tick, m.refreshCmd())

	case storeChangedMsg:
		m.logger.Debug("store changed on disk", "path", msg.path)
		return m, tea.Batch(m.refreshCmd(), waitStoreEvent(m.events))

	case clearMessageMsg:
		if msg.at.Equal(m.messageAt) && !m.syncing {
			m.message = ""
			m.messageErr = false
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey routes a key press to the focused widget.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusPane:
		return m.handlePaneKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		next := links.Customers
		if m.state.View == links.Customers {
			next = links.Standard
		}
		return m.switchView(next)

	case key.Matches(msg, m.keys.ViewStandard):
		return m.switchView(links.Standard)

	case key.Matches(msg, m.keys.ViewCustomers):
		return m.switchView(links.Customers)

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.syncViewport()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if m.state.Query != "" {
			m.search.SetValue("")
			return m.setQuery("")
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.list.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.list.move(1)
	case key.Matches(msg, m.keys.Top):
		m.list.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.list.moveTo(len(m.list.rows) - 1)
	case key.Matches(msg, m.keys.PageUp):
		m.list.move(-max(m.viewport.Height/2, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.list.move(max(m.viewport.Height/2, 1))

	case key.Matches(msg, m.keys.Activate):
		intent, ok := m.list.activate()
		if ok {
			m.syncViewport()
			return m, m.dispatch(intent)
		}

	case key.Matches(msg, m.keys.OpenAll):
		if intent, ok := m.list.openAll(); ok {
			return m, m.dispatch(intent)
		}
		return m, nil

	case key.Matches(msg, m.keys.Sync):
		if m.syncing {
			return m, nil
		}
		return m, m.dispatch(popup.Intent{Kind: popup.Sync})

	case key.Matches(msg, m.keys.Export):
		return m, m.dispatch(popup.Intent{Kind: popup.Export})

	case key.Matches(msg, m.keys.Import):
		m.openPane(paneImport, "")
		cmd := m.pane.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Reset):
		return m, m.dispatch(popup.Intent{Kind: popup.ResetOverride})

	default:
		return m, nil
	}

	m.syncViewport()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter, tea.KeyDown, tea.KeyTab:
		m.focus = focusList
		m.search.Blur()
		m.syncViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != m.state.Query {
		next, dispatch := m.setQuery(value)
		return next, tea.Batch(cmd, dispatch)
	}
	return m, cmd
}

func (m Model) handlePaneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closePane()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.paneMode == paneImport {
			return m, m.dispatch(popup.ImportText(m.pane.Value()))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

func (m Model) switchView(kind links.Kind) (tea.Model, tea.Cmd) {
	if m.state.View == kind {
		return m, nil
	}
	m.state.View = kind
	m.list.reset()
	m.rebuild()
	m.savePrefs()
	return m, m.dispatch(popup.SwitchTo(kind))
}

func (m Model) setQuery(query string) (Model, tea.Cmd) {
	m.state.Query = query
	m.rebuild()
	return m, m.dispatch(popup.SearchFor(query))
}

// handleOutcome applies a finished Dispatch. View and query are owned by the
// model and already applied; the outcome contributes the fresh snapshot and
// any message.
func (m Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("dispatch failed", "intent", msg.intent.String(), "error", msg.err)
		cmd := m.setMessage(msg.err.Error(), true)
		return m, cmd
	}

	out := msg.out
	m.snapshot = out.Snapshot
	m.loaded = true
	m.rebuild()

	var cmds []tea.Cmd
	switch msg.intent {
	case popup.Export:
		m.openPane(paneExport, out.ExportText)
	case popup.Import:
		if !out.IsError {
			m.closePane()
		}
	case popup.Sync:
		if out.Sync != nil {
			m.syncing = true
			m.message = out.Message
			m.messageErr = false
			return m, waitSync(out.Sync)
		}
	}

	if out.Message != "" {
		cmds = append(cmds, m.setMessage(out.Message, out.IsError))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) openPane(mode paneMode, text string) {
	m.paneMode = mode
	m.focus = focusPane
	m.pane.SetValue(text)
	if mode == paneExport {
		m.pane.CursorStart()
	}
}

func (m *Model) closePane() {
	m.paneMode = paneClosed
	m.focus = focusList
	m.pane.Blur()
	m.pane.Reset()
}

// setMessage shows text in the status area and schedules its removal.
func (m *Model) setMessage(text string, isErr bool) tea.Cmd {
	m.message = text
	m.messageErr = isErr
	m.messageAt = time.Now()
	at := m.messageAt
	return tea.Tick(MessageTTL, func(time.Time) tea.Msg {
		return clearMessageMsg{at: at}
	})
}

func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, View: string(m.state.View)}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
	}
}

// rebuild recomputes the list from the current snapshot and state.
func (m *Model) rebuild() {
	m.list.rebuild(popup.Sections(m.snapshot, m.state), m.state.Query)
	m.syncViewport()
}

func (m *Model) resize() {
	contentHeight := max(m.height-headerRows-footerRows, 1)
	m.viewport.Width = m.width
	m.viewport.Height = contentHeight
	m.search.Width = max(m.width-4, 10)
	m.pane.SetWidth(max(m.width-4, PaneMinWidth))
	m.pane.SetHeight(max(contentHeight-4, 3))
}

// syncViewport renders the list into the viewport and keeps the cursor
// visible.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderList())
	cursor := m.list.cursor
	switch {
	case cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(cursor)
	case cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursor - m.viewport.Height + 1)
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.paneMode != paneClosed {
		b.WriteString(m.renderPane())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderPane renders the import/export text area in a rounded box.
func (m Model) renderPane() string {
	styles := m.theme.Styles()
	title := "Export " + string(m.state.View)
	hint := "esc close"
	if m.paneMode == paneImport {
		title = "Import " + string(m.state.View) + " override"
		hint = "ctrl+s apply  esc cancel"
	}
	body := styles.AccentText.Bold(true).Render(title) + "\n" +
		m.pane.View() + "\n" +
		styles.FaintText.Render(hint)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(0, 1).
		Width(max(m.width-2, PaneMinWidth)).
		Height(m.viewport.Height - 2).
		Render(body)
}

// Messages

type snapshotMsg struct {
	snapshot state.Snapshot
	err      error
}

type outcomeMsg struct {
	intent popup.IntentKind
	out    popup.Outcome
	err    error
}

type syncDoneMsg struct {
	report syncer.Report
}

type storeChangedMsg struct {
	path string
}

type clearMessageMsg struct {
	at time.Time
}

// Commands

func (m Model) refreshCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		snap, err := ctrl.Refresh(ctx)
		return snapshotMsg{snapshot: snap, err: err}
	}
}

func (m Model) dispatch(in popup.Intent) tea.Cmd {
	ctrl, ctx, st := m.ctrl, m.ctx, m.state
	return func() tea.Msg {
		out, err := ctrl.Dispatch(ctx, st, in)
		return outcomeMsg{intent: in.Kind, out: out, err: err}
	}
}

func waitSync(h *syncer.Handle) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{report: h.Wait()}
	}
}

func waitStoreEvent(events <-chan watch.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return storeChangedMsg{path: ev.Path}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err = p.Run()
	return err
}
