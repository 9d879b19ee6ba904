package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	checkindto "moodquest/internal/modules/checkin/dto"
	"moodquest/internal/modules/focus/domain"
	focusdto "moodquest/internal/modules/focus/dto"
	"moodquest/internal/platform/clock"
	"moodquest/internal/ui/components"
	"moodquest/internal/ui/theme"
	sessionsview "moodquest/internal/ui/views/sessions"
	timerview "moodquest/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface this orchestration layer requires.

type lifecyclePort interface {
	Start(ctx context.Context, input focusdto.StartInput) (focusdto.SessionOutput, error)
	Pause(ctx context.Context, sessionID string) (focusdto.SessionOutput, error)
	Resume(ctx context.Context, sessionID string) (focusdto.SessionOutput, error)
	Complete(ctx context.Context, sessionID string, markWorkDone bool) (focusdto.CompleteOutput, error)
	Cancel(ctx context.Context, sessionID string) (focusdto.SessionOutput, error)
	Extend(ctx context.Context, sessionID string, extraMinutes int) (focusdto.SessionOutput, error)
	Refresh(ctx context.Context) (focusdto.RefreshOutput, error)
	HistoryTotals(ctx context.Context, since time.Time) (focusdto.HistoryTotalsOutput, error)
}

type checkinPort interface {
	Evaluate(ctx context.Context) checkindto.GateOutput
	Advance() string
	ClaimBonus(ctx context.Context) (checkindto.BonusClaimOutput, error)
	LogMood(ctx context.Context, score int) error
}

// sessionReader is the read-only face of the session cache. The app and its
// timer surfaces only ever read; all writes go through the lifecycle port.
type sessionReader interface {
	All() []domain.WorkSession
	Get(sessionID string) (domain.WorkSession, bool)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSessions tabID = iota
	tabTimer
	tabCount
)

var tabLabels = [tabCount]string{"Sessions", "Timer"}

// ─── async messages ───────────────────────────────────────────────────────────

type refreshedMsg struct {
	out focusdto.RefreshOutput
	err error
}

type refreshTickMsg struct{}

type lifecycleDoneMsg struct {
	op  string
	out focusdto.SessionOutput
	err error
}

type completedMsg struct {
	out focusdto.CompleteOutput
	err error
}

type totalsMsg struct {
	totals focusdto.HistoryTotalsOutput
	err    error
}

type gateMsg struct {
	gate checkindto.GateOutput
}

type bonusClaimedMsg struct {
	claim checkindto.BonusClaimOutput
	err   error
}

type moodLoggedMsg struct {
	score int
	err   error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	New     key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open timer")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.New},
		{k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the first-load
// modal queue, the background refresh loop, and the status-bar widget timer.
// Business rules live behind the lifecycle and check-in ports.
type Model struct {
	lifecycle    lifecyclePort
	checkin      checkinPort
	sessions     sessionReader
	clock        clock.Clock
	refreshEvery time.Duration

	sessionsView sessionsview.Model
	fullTimer    timerview.Model
	widgetTimer  timerview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette

	gate      checkindto.GateOutput
	moodScore int

	todayFocused int
	status       string
	width        int
	height       int
}

func NewModel(lifecycle lifecyclePort, checkin checkinPort, sessions sessionReader, clk clock.Clock, refreshEvery time.Duration) Model {
	return Model{
		lifecycle:    lifecycle,
		checkin:      checkin,
		sessions:     sessions,
		clock:        clk,
		refreshEvery: refreshEvery,
		sessionsView: sessionsview.New(clk),
		fullTimer:    timerview.New("full", timerview.ModeFull, sessions, clk),
		widgetTimer:  timerview.New("widget", timerview.ModeWidget, sessions, clk),
		activeTab:    tabSessions,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		moodScore:    3,
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.refreshCmd(),
		m.evaluateGateCmd(),
		m.totalsCmd(),
		m.refreshTickCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		return m.propagateSize()

	case tea.FocusMsg:
		// The tab regained focus; resync with the server right away.
		return m, m.refreshCmd()

	case refreshTickMsg:
		return m, tea.Batch(m.refreshCmd(), m.refreshTickCmd())

	case refreshedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("synced %d active sessions", msg.out.Sessions)
		return m.syncSurfaces()

	case lifecycleDoneMsg:
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
			// Prior session state stays on screen; resync keeps the
			// surfaces honest without discarding that state.
			return m.syncSurfaces()
		}
		m.status = msg.op + "d " + msg.out.Work
		if msg.op == "start" {
			var syncCmd, trackCmd tea.Cmd
			m, syncCmd = m.syncSurfaces()
			m, trackCmd = m.track(msg.out.ID)
			return m, tea.Batch(syncCmd, trackCmd)
		}
		return m.syncSurfaces()

	case completedMsg:
		if msg.err != nil {
			m.status = "complete failed: " + msg.err.Error()
			return m.syncSurfaces()
		}
		m.status = "completed " + msg.out.Session.Work + rewardsSummary(msg.out)
		var cmd tea.Cmd
		m, cmd = m.syncSurfaces()
		return m, tea.Batch(cmd, m.totalsCmd())

	case totalsMsg:
		if msg.err == nil {
			m.todayFocused = msg.totals.FocusedMinutes
		}

	case gateMsg:
		m.gate = msg.gate
		if msg.gate.Err != "" {
			m.status = msg.gate.Err
		}

	case bonusClaimedMsg:
		if msg.err != nil {
			m.status = "bonus claim failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("daily bonus +%d (streak %d)", msg.claim.Amount, msg.claim.Streak)
		}
		m.checkin.Advance()
		m.gate = checkindto.GateOutput{}
		return m, m.evaluateGateCmd()

	case moodLoggedMsg:
		if msg.err != nil {
			m.status = "mood log failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("mood logged (%d/5)", msg.score)
		}
		m.checkin.Advance()
		m.gate = checkindto.GateOutput{}
		return m, m.evaluateGateCmd()

	case timerview.AutoCompleteMsg:
		m.status = "time's up, completing " + msg.SessionID
		return m, m.completeCmd(msg.SessionID, false)

	case sessionsview.StartRequestMsg:
		return m, m.startCmd(msg.Input)

	case sessionsview.LifecycleRequestMsg:
		return m, m.lifecycleCmd(msg)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.gate.Show {
			return m.updateModal(msg)
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.typing() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "R":
			return m, m.refreshCmd()
		case "enter":
			if m.activeTab == tabSessions {
				if id, ok := m.sessionsView.SelectedSessionID(); ok {
					m.activeTab = tabTimer
					return m.track(id)
				}
			}
		}
	}

	// Propagate to both timers (their tick chains are tag-scoped) and the
	// active tab's view.
	var cmd tea.Cmd
	m.widgetTimer, cmd = m.widgetTimer.Update(msg)
	cmds = append(cmds, cmd)
	m.fullTimer, cmd = m.fullTimer.Update(msg)
	cmds = append(cmds, cmd)
	m.sessionsView, cmd = m.sessionsView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) typing() bool {
	return m.sessionsView.Filtering() || m.sessionsView.Forming()
}

// updateModal handles keys while a first-load modal is open. Dismissal and
// claim both advance the phase queue; nothing else reaches the app until
// the queue rests at done.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.gate.Phase {
	case "catchup":
		if msg.String() == "enter" || msg.String() == "esc" {
			m.checkin.Advance()
			m.gate = checkindto.GateOutput{}
			return m, m.evaluateGateCmd()
		}

	case "daily_bonus":
		switch msg.String() {
		case "enter":
			return m, m.claimBonusCmd()
		case "esc":
			m.checkin.Advance()
			m.gate = checkindto.GateOutput{}
			return m, m.evaluateGateCmd()
		}

	case "mood":
		switch s := msg.String(); s {
		case "1", "2", "3", "4", "5":
			m.moodScore, _ = strconv.Atoi(s)
		case "left":
			if m.moodScore > 1 {
				m.moodScore--
			}
		case "right":
			if m.moodScore < 5 {
				m.moodScore++
			}
		case "enter":
			return m, m.logMoodCmd(m.moodScore)
		case "esc":
			m.checkin.Advance()
			m.gate = checkindto.GateOutput{}
			return m, m.evaluateGateCmd()
		}
	}
	return m, nil
}

// syncSurfaces pushes the current cache state into every surface and
// restarts their tick chains.
func (m Model) syncSurfaces() (Model, tea.Cmd) {
	all := m.sessions.All()
	var cmds []tea.Cmd

	var cmd tea.Cmd
	m.sessionsView, cmd = m.sessionsView.Update(sessionsview.ReloadMsg{Sessions: all})
	cmds = append(cmds, cmd)

	// The widget follows the newest active session when it has none, or
	// when its session vanished.
	if _, ok := m.sessions.Get(m.widgetTimer.SessionID()); !ok {
		if id := newestActive(all); id != "" {
			cmds = append(cmds, m.widgetTimer.Track(id))
		}
	} else {
		cmds = append(cmds, m.widgetTimer.Sync())
	}
	cmds = append(cmds, m.fullTimer.Sync())

	return m, tea.Batch(cmds...)
}

func newestActive(all []domain.WorkSession) string {
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Status == domain.StatusActive {
			return all[i].ID
		}
	}
	if len(all) > 0 {
		return all[len(all)-1].ID
	}
	return ""
}

func (m Model) propagateSize() (tea.Model, tea.Cmd) {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.sessionsView, cmd = m.sessionsView.Update(sz)
	cmds = append(cmds, cmd)
	m.fullTimer, cmd = m.fullTimer.Update(sz)
	cmds = append(cmds, cmd)
	m.widgetTimer, cmd = m.widgetTimer.Update(sz)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.gate.Show:
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.renderModal())
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabTimer:
		content = m.fullTimer.View()
		if content == "" {
			content = theme.Muted.Render("\n  no session selected; pick one on the Sessions tab")
		}
	default:
		content = m.sessionsView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderModal() string {
	pane := theme.PaneActive.Width(min(max(m.width-8, 30), 64))
	switch m.gate.Phase {
	case "catchup":
		body := theme.Title.Render("Welcome back!") + "\n\n"
		if c := m.gate.CatchUp; c != nil {
			if c.LevelsGained > 0 {
				body += fmt.Sprintf("You gained %d level(s) while you were away (+%d XP).\n", c.LevelsGained, c.XP)
			} else if c.XP > 0 {
				body += fmt.Sprintf("Retroactive rewards: +%d XP.\n", c.XP)
			}
			if len(c.Genres) > 0 {
				body += "New genres unlocked: " + strings.Join(c.Genres, ", ") + "\n"
			}
		}
		body += "\n" + theme.Muted.Render("enter: collect")
		return pane.Render(body)

	case "daily_bonus":
		body := theme.Title.Render("Daily Bonus") + "\n\n"
		if b := m.gate.Bonus; b != nil {
			body += fmt.Sprintf("Claim today's bonus: +%d (streak %d).\n", b.Amount, b.Streak)
		}
		body += "\n" + theme.Muted.Render("enter: claim   esc: skip")
		return pane.Render(body)

	case "mood":
		body := theme.Title.Render("How are you feeling?") + "\n\n"
		for score := 1; score <= 5; score++ {
			glyph := fmt.Sprintf(" %d ", score)
			if score == m.moodScore {
				body += theme.Hot.Render("[" + glyph + "]")
			} else {
				body += theme.Muted.Render(" " + glyph + " ")
			}
		}
		body += "\n\n" + theme.Muted.Render("1-5 or ←/→ to pick   enter: log   esc: skip")
		return pane.Render(body)
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "moodquest  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if widget := m.widgetTimer.View(); widget != "" {
		left = widget + "  " + left
	}
	right := theme.Muted.Render(fmt.Sprintf("today %dm  ?:help  q:quit", m.todayFocused))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)
	selected, _ := m.sessionsView.SelectedSessionID()

	switch parts[0] {
	case "session:start":
		if len(parts) < 2 {
			m.status = "usage: session:start <task:id|subtask:id|free> [minutes|untimed]"
			return m, nil
		}
		return m, func() tea.Msg {
			input, err := sessionsview.ParseStartInput(strings.Join(parts[1:], " "))
			if err != nil {
				return lifecycleDoneMsg{op: "start", err: err}
			}
			return sessionsview.StartRequestMsg{Input: input}
		}

	case "session:pause", "session:resume", "session:cancel":
		if selected == "" {
			m.status = "no session selected"
			return m, nil
		}
		op := strings.TrimPrefix(parts[0], "session:")
		return m, m.lifecycleCmd(sessionsview.LifecycleRequestMsg{Op: op, SessionID: selected})

	case "session:complete":
		if selected == "" {
			m.status = "no session selected"
			return m, nil
		}
		markDone := len(parts) > 1 && parts[1] == "done"
		return m, m.completeCmd(selected, markDone)

	case "session:extend":
		if selected == "" {
			m.status = "no session selected"
			return m, nil
		}
		extra := 5
		if len(parts) > 1 {
			if v, err := strconv.Atoi(parts[1]); err == nil {
				extra = v
			}
		}
		return m, m.lifecycleCmd(sessionsview.LifecycleRequestMsg{Op: "extend", SessionID: selected, ExtraMinutes: extra})

	case "refresh":
		return m, m.refreshCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.lifecycle.Refresh(context.Background())
		return refreshedMsg{out: out, err: err}
	}
}

func (m Model) refreshTickCmd() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m Model) startCmd(input focusdto.StartInput) tea.Cmd {
	return func() tea.Msg {
		out, err := m.lifecycle.Start(context.Background(), input)
		return lifecycleDoneMsg{op: "start", out: out, err: err}
	}
}

func (m Model) lifecycleCmd(req sessionsview.LifecycleRequestMsg) tea.Cmd {
	if req.Op == "complete" {
		return m.completeCmd(req.SessionID, req.MarkWorkDone)
	}
	return func() tea.Msg {
		var out focusdto.SessionOutput
		var err error
		switch req.Op {
		case "pause":
			out, err = m.lifecycle.Pause(context.Background(), req.SessionID)
		case "resume":
			out, err = m.lifecycle.Resume(context.Background(), req.SessionID)
		case "cancel":
			out, err = m.lifecycle.Cancel(context.Background(), req.SessionID)
		case "extend":
			out, err = m.lifecycle.Extend(context.Background(), req.SessionID, req.ExtraMinutes)
		default:
			err = fmt.Errorf("unknown lifecycle op %q", req.Op)
		}
		return lifecycleDoneMsg{op: req.Op, out: out, err: err}
	}
}

func (m Model) completeCmd(sessionID string, markDone bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.lifecycle.Complete(context.Background(), sessionID, markDone)
		return completedMsg{out: out, err: err}
	}
}

// track points the full timer (and the widget, if idle) at a session.
func (m Model) track(sessionID string) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	cmds = append(cmds, m.fullTimer.Track(sessionID))
	if m.widgetTimer.SessionID() == "" {
		cmds = append(cmds, m.widgetTimer.Track(sessionID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) totalsCmd() tea.Cmd {
	since := m.clock.Now().Truncate(24 * time.Hour)
	return func() tea.Msg {
		totals, err := m.lifecycle.HistoryTotals(context.Background(), since)
		return totalsMsg{totals: totals, err: err}
	}
}

func (m Model) evaluateGateCmd() tea.Cmd {
	return func() tea.Msg {
		return gateMsg{gate: m.checkin.Evaluate(context.Background())}
	}
}

func (m Model) claimBonusCmd() tea.Cmd {
	return func() tea.Msg {
		claim, err := m.checkin.ClaimBonus(context.Background())
		return bonusClaimedMsg{claim: claim, err: err}
	}
}

func (m Model) logMoodCmd(score int) tea.Cmd {
	return func() tea.Msg {
		err := m.checkin.LogMood(context.Background(), score)
		return moodLoggedMsg{score: score, err: err}
	}
}

func rewardsSummary(out focusdto.CompleteOutput) string {
	if len(out.Rewards) == 0 {
		return ""
	}
	return "  (rewards earned)"
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
