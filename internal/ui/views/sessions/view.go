package sessions

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moodquest/internal/modules/focus/domain"
	focusdto "moodquest/internal/modules/focus/dto"
	"moodquest/internal/platform/clock"
	"moodquest/internal/ui/theme"
	timerview "moodquest/internal/ui/views/timer"
)

// ─── messages ────────────────────────────────────────────────────────────────

// ReloadMsg replaces the view's session rows, typically after a background
// refresh or a lifecycle result.
type ReloadMsg struct {
	Sessions []domain.WorkSession
}

// StartRequestMsg asks the app to start a session. The view never calls the
// lifecycle controller itself.
type StartRequestMsg struct {
	Input focusdto.StartInput
}

// LifecycleRequestMsg asks the app to run one lifecycle operation on an
// existing session.
type LifecycleRequestMsg struct {
	Op           string // pause | resume | complete | cancel | extend
	SessionID    string
	ExtraMinutes int
	MarkWorkDone bool
}

type repaintMsg struct {
	seq int
}

// ─── list item ───────────────────────────────────────────────────────────────

// sessionItem derives its description at render time so the inline clock
// stays current without rebuilding the list every second.
type sessionItem struct {
	session domain.WorkSession
	clock   clock.Clock
}

func (i sessionItem) Title() string {
	return i.session.Work.String()
}

func (i sessionItem) Description() string {
	desc := timerview.Render(timerview.ModeInline, i.session, i.clock.Now(), 0)
	if !i.session.Untimed() {
		desc += theme.Muted.Render(fmt.Sprintf("  of %dm", *i.session.PlannedDuration))
	}
	return desc
}

func (i sessionItem) FilterValue() string {
	return i.session.Work.String()
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	clock    clock.Clock
	list     list.Model
	form     textinput.Model
	forming  bool
	seq      int
	ticking  bool
	interval time.Duration
	width    int
	height   int
}

func New(clk clock.Clock) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Focus Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	form := textinput.New()
	form.Placeholder = "task:<id> | subtask:<id> | free  [minutes|untimed]"
	form.CharLimit = 128

	return Model{clock: clk, list: l, form: form, interval: time.Second}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) SelectedSessionID() (string, bool) {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return "", false
	}
	return item.session.ID, true
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Forming reports whether the start form is open, so global key bindings
// yield to free typing.
func (m Model) Forming() bool {
	return m.forming
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-2, max(msg.Height-4, 1))

	case ReloadMsg:
		items := make([]list.Item, 0, len(msg.Sessions))
		anyActive := false
		for _, s := range msg.Sessions {
			items = append(items, sessionItem{session: s, clock: m.clock})
			if s.Status == domain.StatusActive {
				anyActive = true
			}
		}
		cmd := m.list.SetItems(items)
		// One repaint tick keeps every inline row current; each row still
		// derives its own clock from the reconciler.
		if anyActive && !m.ticking {
			m.ticking = true
			m.seq++
			return m, tea.Batch(cmd, m.repaintCmd())
		}
		if !anyActive {
			m.ticking = false
		}
		return m, cmd

	case repaintMsg:
		if msg.seq != m.seq || !m.ticking {
			return m, nil
		}
		return m, m.repaintCmd()

	case tea.KeyMsg:
		if m.forming {
			return m.updateForm(msg)
		}
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "n":
			m.forming = true
			m.form.SetValue("")
			return m, m.form.Focus()
		case "p":
			return m, m.request("pause")
		case "r":
			return m, m.request("resume")
		case "c":
			return m, m.requestComplete(false)
		case "C":
			return m, m.requestComplete(true)
		case "x":
			return m, m.request("cancel")
		case "e":
			if id, ok := m.SelectedSessionID(); ok {
				return m, emit(LifecycleRequestMsg{Op: "extend", SessionID: id, ExtraMinutes: 5})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.forming = false
		m.form.Blur()
		return m, nil
	case "enter":
		input, err := ParseStartInput(m.form.Value())
		m.forming = false
		m.form.Blur()
		if err != nil {
			return m, nil
		}
		return m, emit(StartRequestMsg{Input: input})
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m *Model) repaintCmd() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return repaintMsg{seq: seq}
	})
}

func (m Model) request(op string) tea.Cmd {
	id, ok := m.SelectedSessionID()
	if !ok {
		return nil
	}
	return emit(LifecycleRequestMsg{Op: op, SessionID: id})
}

func (m Model) requestComplete(markDone bool) tea.Cmd {
	id, ok := m.SelectedSessionID()
	if !ok {
		return nil
	}
	return emit(LifecycleRequestMsg{Op: "complete", SessionID: id, MarkWorkDone: markDone})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// ParseStartInput understands "task:t1 25", "subtask:s9 untimed", "free".
// The minutes default to a 25-minute focus block.
func ParseStartInput(raw string) (focusdto.StartInput, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return focusdto.StartInput{}, fmt.Errorf("empty start input")
	}
	input := focusdto.StartInput{PlannedMinutes: 25}

	switch {
	case strings.HasPrefix(fields[0], "task:"):
		input.TaskID = strings.TrimPrefix(fields[0], "task:")
	case strings.HasPrefix(fields[0], "subtask:"):
		input.SubtaskID = strings.TrimPrefix(fields[0], "subtask:")
	case fields[0] == "free":
		// untargeted session
	default:
		return focusdto.StartInput{}, fmt.Errorf("unknown work target %q", fields[0])
	}

	if len(fields) > 1 {
		if fields[1] == "untimed" {
			input.Untimed = true
		} else {
			minutes, err := strconv.Atoi(fields[1])
			if err != nil {
				return focusdto.StartInput{}, fmt.Errorf("invalid minutes %q", fields[1])
			}
			input.PlannedMinutes = minutes
		}
	}
	return input, nil
}

func (m Model) View() string {
	if m.forming {
		formPane := theme.PaneActive.Width(max(m.width-4, 20)).Render(
			theme.Title.Render("Start a session") + "\n\n> " + m.form.View() + "\n\n" +
				theme.Muted.Render("enter: start   esc: cancel"))
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), formPane)
	}
	return m.list.View()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
