package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"solver/internal/coherence"
)

type progressModel struct {
	title   string
	events  <-chan coherence.Event
	spinner spinner.Model
	prog    progress.Model
	items   []groupItem
	index   map[string]int
	summary string
	width   int
	done    bool
}

type groupItem struct {
	name     string
	status   coherence.Status
	impls    int
	pairs    int
	overlaps int
}

type eventMsg coherence.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders coherence progress
// per impl group. Groups appear as their queued events arrive; the model
// quits when events is closed.
func NewProgressModel(title string, events <-chan coherence.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(coherence.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(20, m.width-statusWidth-24)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s  %s\n", status, pad(truncate(item.name, nameWidth), nameWidth), counts(item))
	}
	if m.summary != "" {
		b.WriteString("\n")
		b.WriteString(m.summary)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev coherence.Event) tea.Cmd {
	if ev.Group == "" {
		m.summary = fmt.Sprintf("%d impls, %d overlaps in %s", ev.Impls, ev.Overlaps, ev.Elapsed.Round(time.Millisecond))
		return m.prog.SetPercent(1.0)
	}
	idx, ok := m.index[ev.Group]
	if !ok {
		idx = len(m.items)
		m.index[ev.Group] = idx
		m.items = append(m.items, groupItem{name: ev.Group})
	}
	item := &m.items[idx]
	item.status = ev.Status
	item.impls = ev.Impls
	item.pairs = ev.Pairs
	item.overlaps = ev.Overlaps
	return m.prog.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case coherence.StatusDone, coherence.StatusConflict:
			total += 1.0
		case coherence.StatusWorking:
			total += 0.5
		}
	}
	return total / float64(len(m.items))
}

func counts(item groupItem) string {
	switch item.status {
	case coherence.StatusDone, coherence.StatusConflict:
		return fmt.Sprintf("%d impls, %d pairs, %d overlaps", item.impls, item.pairs, item.overlaps)
	default:
		return fmt.Sprintf("%d impls", item.impls)
	}
}

func styleStatus(status coherence.Status) lipgloss.Style {
	switch status {
	case coherence.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case coherence.StatusConflict:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case coherence.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

func pad(value string, width int) string {
	return runewidth.FillRight(value, width)
}
