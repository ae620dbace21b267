package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mitchellh/go-homedir"

	"github.com/cbegin/trackersynth-go"
	"github.com/cbegin/trackersynth-go/internal/script"
)

// Played when no -file is given: a vibrato pad that fades out.
const defaultListing = `
script
    GTK_SetVibratoParams 24, 10
    GTK_EnableVibrato true
    SetLoopCounter 12, false
fade:
    GTK_SetVolumeStep -60
    Delay 3
    EvaluateLoopCounter fade
    GTK_SetVolumeStep 0
    StopScript
`

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	rowStartStyle = cellStyle.Foreground(lipgloss.Color("229"))
	haltedStyle   = cellStyle.Foreground(lipgloss.Color("241"))
)

func main() {
	var (
		listingPath = flag.String("file", "", "path to an instrument listing")
		globalPath  = flag.String("global", "", "path to a module-wide script listing")
		ticks       = flag.Int("ticks", 48, "number of ticks to trace")
		channels    = flag.Int("channels", 1, "number of output channels")
		speed       = flag.Int("speed", 6, "ticks per row")
		trigger     = flag.Int("trigger", 0, "retrigger the note every N ticks (0 = once)")
		release     = flag.Int("release", -1, "key off the note at this tick (-1 = never)")
		freq        = flag.Bool("freq", false, "treat periods as frequencies in Hz")
		immediate   = flag.Bool("immediate", false, "swap samples immediately instead of at loop end")
		interactive = flag.Bool("interactive", false, "step through the trace in a terminal debugger")
		verbose     = flag.Bool("v", false, "log triggers and halts to stderr")
	)
	flag.Parse()

	listing, err := readListing(*listingPath, defaultListing)
	if err != nil {
		fatal(err)
	}
	scripts, err := trackersynth.Compile(listing)
	if err != nil {
		fatal(err)
	}

	opts := []trackersynth.TraceOption{
		trackersynth.WithChannels(*channels),
		trackersynth.WithSpeed(*speed),
		trackersynth.WithTriggerEvery(*trigger),
		trackersynth.WithPeriodsAsFrequencies(*freq),
		trackersynth.WithImmediateSampleSwap(*immediate),
	}
	if *verbose {
		opts = append(opts, trackersynth.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	tr, err := trackersynth.NewTracer(opts...)
	if err != nil {
		fatal(err)
	}
	for ch := 0; ch < *channels; ch++ {
		if err := tr.SetInstrument(ch, scripts); err != nil {
			fatal(err)
		}
	}
	if *globalPath != "" {
		text, err := readListing(*globalPath, "")
		if err != nil {
			fatal(err)
		}
		global, err := trackersynth.CompileGlobal(text)
		if err != nil {
			fatal(err)
		}
		tr.SetGlobalScript(global)
		tr.Restart()
	}

	if *interactive {
		p := tea.NewProgram(newDebugger(tr, scripts), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	frames := make([]trackersynth.TickFrame, 0, *ticks)
	for i := 0; i < *ticks; i++ {
		if i == *release {
			for ch := 0; ch < *channels; ch++ {
				tr.Release(ch)
			}
		}
		frames = append(frames, tr.Step())
	}
	fmt.Println(renderTable(frames))
}

func readListing(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("expand listing path"))
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fault.Wrap(err, fmsg.With("read listing "+p), ftag.With(ftag.NotFound))
		}
		return "", fault.Wrap(err, fmsg.With("read listing "+p))
	}
	return string(data), nil
}

func fatal(err error) {
	switch ftag.Get(err) {
	case ftag.NotFound:
		log.Fatalf("not found: %v", err)
	case ftag.InvalidArgument, ftag.AlreadyExists:
		log.Fatalf("invalid input: %v", err)
	default:
		log.Fatal(err)
	}
}

func renderTable(frames []trackersynth.TickFrame) string {
	rowStarts := map[int]bool{}
	halted := map[int]bool{}
	var rows [][]string
	for _, f := range frames {
		for ch, c := range f.Channels {
			if f.RowTick == 0 {
				rowStarts[len(rows)] = true
			}
			if allHalted(c.Rows) {
				halted[len(rows)] = true
			}
			rows = append(rows, []string{
				strconv.Itoa(f.Tick),
				strconv.Itoa(f.RowTick),
				strconv.Itoa(ch),
				strconv.Itoa(c.Period),
				strconv.Itoa(c.Volume),
				strconv.Itoa(c.Pan),
				strconv.Itoa(c.Detune),
				strconv.Itoa(c.Sample),
				strconv.FormatUint(uint64(c.Position), 10),
				formatRows(c.Rows),
				strconv.Itoa(f.Tempo) + "/" + strconv.Itoa(f.Speed),
			})
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("tick", "t", "ch", "period", "vol", "pan", "detune", "smp", "pos", "rows", "tempo").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case halted[row]:
				return haltedStyle
			case rowStarts[row]:
				return rowStartStyle
			}
			return cellStyle
		}).
		Render()
}

func formatRows(rows []uint16) string {
	if len(rows) == 0 {
		return "-"
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		if r == script.StopRow {
			parts[i] = "--"
		} else {
			parts[i] = strconv.Itoa(int(r))
		}
	}
	return strings.Join(parts, " ")
}

func allHalted(rows []uint16) bool {
	for _, r := range rows {
		if r != script.StopRow {
			return false
		}
	}
	return true
}
