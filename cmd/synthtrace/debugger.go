package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/trackersynth-go"
	"github.com/cbegin/trackersynth-go/internal/script"
)

const historyLen = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

type debugger struct {
	tr       *trackersynth.Tracer
	scripts  []script.Script
	channel  int
	channels int
	history  []trackersynth.TickFrame
	status   string
}

func newDebugger(tr *trackersynth.Tracer, scripts []script.Script) debugger {
	return debugger{tr: tr, scripts: scripts, channels: tr.Channels(), status: "ready"}
}

func (m debugger) Init() tea.Cmd { return nil }

func (m debugger) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "n":
		m.step(1)
	case "N":
		m.step(historyLen)
	case "t":
		m.tr.Trigger(m.channel)
		m.status = fmt.Sprintf("note triggered on channel %d", m.channel)
	case "k":
		m.tr.Release(m.channel)
		m.status = fmt.Sprintf("note released on channel %d", m.channel)
	case "g":
		m.tr.Restart()
		m.status = "global script restarted"
	case "r":
		m.tr.Reset()
		m.history = nil
		m.status = "reset"
	case "tab":
		m.channel = (m.channel + 1) % m.channels
	case "shift+tab":
		m.channel = (m.channel + m.channels - 1) % m.channels
	}
	return m, nil
}

func (m *debugger) step(n int) {
	for i := 0; i < n; i++ {
		m.history = append(m.history, m.tr.Step())
	}
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
	m.status = fmt.Sprintf("tick %d", m.tr.Ticks())
}

func (m debugger) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("synthtrace  channel %d/%d  tick %d", m.channel, m.channels, m.tr.Ticks())))
	b.WriteString("\n\n")

	panes := []string{paneStyle.Render(m.viewScripts()), paneStyle.Render(m.viewHistory())}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(helpLine())
	return b.String()
}

func (m debugger) viewScripts() string {
	states := m.tr.States(m.channel)
	var b strings.Builder
	for i, sc := range m.scripts {
		if i > 0 {
			b.WriteByte('\n')
		}
		current := script.StopRow
		header := fmt.Sprintf("script %d", i)
		if i < states.Len() {
			s := states.At(i)
			current = s.CurrentRow()
			header += fmt.Sprintf("  wait %d  step %d/%d  loop %d  vol %d  pan %d",
				s.TicksRemain(), s.StepsRemain(), s.StepSpeed(), s.LoopCount(), s.VolumeFactor(), s.Panning())
		}
		b.WriteString(titleStyle.Render(header))
		b.WriteByte('\n')
		for row, ev := range sc {
			line := fmt.Sprintf("%3d  %-22s %s", row, ev.Op(), formatArgs(ev))
			if uint16(row) == current {
				b.WriteString(cursorStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteByte('\n')
		}
		if current == script.StopRow {
			b.WriteString(dimStyle.Render("  (halted)"))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m debugger) viewHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%5s %2s %6s %4s %4s %5s %3s", "tick", "t", "period", "vol", "pan", "det", "smp")))
	b.WriteByte('\n')
	for _, f := range m.history {
		if m.channel >= len(f.Channels) {
			continue
		}
		c := f.Channels[m.channel]
		line := fmt.Sprintf("%5d %2d %6d %4d %4d %5d %3d", f.Tick, f.RowTick, c.Period, c.Volume, c.Pan, c.Detune, c.Sample)
		if c.Muted {
			line = dimStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func formatArgs(ev script.Event) string {
	operands := ev.Op().Operands()
	args := ev.Args()
	parts := make([]string, len(operands))
	for i, operand := range operands {
		parts[i] = fmt.Sprintf("%s=%d", operand.Name, args[i])
	}
	return strings.Join(parts, " ")
}

func helpLine() string {
	keys := []struct{ key, desc string }{
		{"space", "step"},
		{"N", "step 12"},
		{"t", "trigger"},
		{"k", "key off"},
		{"g", "restart global"},
		{"r", "reset"},
		{"tab", "channel"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = helpKeyStyle.Render(k.key) + " " + k.desc
	}
	return strings.Join(parts, dimStyle.Render(" • "))
}
