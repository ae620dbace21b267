package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/mitchellh/go-homedir"

	"github.com/cbegin/trackersynth-go"
)

const (
	windowW    = 960
	windowH    = 640
	historyLen = 320
	updateTPS  = 60

	// Trackers tick at tempo*2/5 Hz: 50 Hz at the default tempo of 125.
	tickRateNum = 2
	tickRateDen = 5
)

const demoListing = `
script
    GTK_SetVibratoParams 32, 8
    GTK_EnableVibrato true
    Puma_VolumeRamp 64, 16, 40
    Puma_VolumeRamp 16, 48, 20
    Jump 2
script
    FTM_LFOAddSub 0, 6, 100
    FTM_StartLFO 0, 2, 4
    Delay 1000
`

var (
	bgColor     = color.RGBA{16, 18, 26, 255}
	gridColor   = color.RGBA{44, 48, 64, 255}
	volumeColor = color.RGBA{120, 220, 140, 255}
	periodColor = color.RGBA{110, 170, 255, 255}
	panColor    = color.RGBA{250, 180, 90, 255}
	rowColor    = color.RGBA{70, 60, 100, 255}
)

type plot struct {
	label string
	color color.RGBA
	value func(trackersynth.TickFrame, int) float64 // normalized to 0..1
}

type game struct {
	path    string
	opts    []trackersynth.TraceOption
	tr      *trackersynth.Tracer
	frames  []trackersynth.TickFrame
	plots   []plot
	channel int
	paused  bool
	acc     int
	status  string
	viewW   int
	viewH   int
}

func newGame(path string, opts []trackersynth.TraceOption) (*game, error) {
	g := &game{path: path, opts: opts, viewW: windowW, viewH: windowH}
	if err := g.load(); err != nil {
		return nil, err
	}
	minPeriod, maxPeriod := g.tr.Module().PeriodRange()
	g.plots = []plot{
		{"volume", volumeColor, func(f trackersynth.TickFrame, ch int) float64 {
			return float64(f.Channels[ch].Volume) / 256
		}},
		{"period", periodColor, func(f trackersynth.TickFrame, ch int) float64 {
			return float64(f.Channels[ch].Period-minPeriod) / float64(max(maxPeriod-minPeriod, 1))
		}},
		{"pan", panColor, func(f trackersynth.TickFrame, ch int) float64 {
			return float64(f.Channels[ch].Pan) / 256
		}},
	}
	return g, nil
}

func (g *game) load() error {
	listing := demoListing
	if g.path != "" {
		p, err := homedir.Expand(g.path)
		if err != nil {
			return fault.Wrap(err, fmsg.With("expand listing path"))
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fault.Wrap(err, fmsg.With("read listing "+p))
		}
		listing = string(data)
	}
	scripts, err := trackersynth.Compile(listing)
	if err != nil {
		return err
	}
	tr, err := trackersynth.NewTracer(g.opts...)
	if err != nil {
		return err
	}
	for ch := 0; ch < tr.Channels(); ch++ {
		if err := tr.SetInstrument(ch, scripts); err != nil {
			return err
		}
	}
	g.tr = tr
	g.frames = g.frames[:0]
	g.channel = min(g.channel, tr.Channels()-1)
	g.status = fmt.Sprintf("loaded %d scripts", len(scripts))
	return nil
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.tr.Trigger(g.channel)
		g.status = "note triggered"
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.tr.Release(g.channel)
		g.status = "note released"
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.tr.Reset()
		g.frames = g.frames[:0]
		g.status = "reset"
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		if err := g.load(); err != nil {
			g.status = "reload failed: " + err.Error()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.channel = (g.channel + 1) % g.tr.Channels()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.channel = (g.channel + g.tr.Channels() - 1) % g.tr.Channels()
	case g.paused && inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		g.step()
	}
	if g.paused {
		return nil
	}

	tempo := 125
	if n := len(g.frames); n > 0 {
		tempo = g.frames[n-1].Tempo
	}
	g.acc += tempo * tickRateNum
	for g.acc >= updateTPS*tickRateDen {
		g.acc -= updateTPS * tickRateDen
		g.step()
	}
	return nil
}

func (g *game) step() {
	g.frames = append(g.frames, g.tr.Step())
	if len(g.frames) > historyLen {
		g.frames = append(g.frames[:0], g.frames[len(g.frames)-historyLen:]...)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	const top, margin = 28, 12
	h := (g.viewH - top - 24) / len(g.plots)
	for i, p := range g.plots {
		rect := image.Rect(margin, top+i*h, g.viewW-margin, top+(i+1)*h-margin)
		g.drawPlot(screen, rect, p)
	}

	state := "running"
	if g.paused {
		state = "paused"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("channel %d/%d  tick %d  %s", g.channel, g.tr.Channels(), g.tr.Ticks(), state), margin, 6)
	help := "space pause  . step  t trigger  k key off  r reset  l reload  <- -> channel"
	ebitenutil.DebugPrintAt(screen, help+"    "+g.status, margin, g.viewH-18)
}

func (g *game) drawPlot(screen *ebiten.Image, rect image.Rectangle, p plot) {
	x0, y0 := float64(rect.Min.X), float64(rect.Min.Y)
	w, h := float64(rect.Dx()), float64(rect.Dy())
	ebitenutil.DrawRect(screen, x0, y0, w, 1, gridColor)
	ebitenutil.DrawRect(screen, x0, y0+h/2, w, 1, gridColor)
	ebitenutil.DrawRect(screen, x0, y0+h-1, w, 1, gridColor)

	dx := w / historyLen
	prevX, prevY := -1.0, 0.0
	for i, f := range g.frames {
		if g.channel >= len(f.Channels) {
			continue
		}
		x := x0 + float64(i)*dx
		if f.RowTick == 0 {
			ebitenutil.DrawRect(screen, x, y0+1, 1, h-2, rowColor)
		}
		v := min(max(p.value(f, g.channel), 0), 1)
		y := y0 + (1-v)*(h-1)
		if prevX >= 0 {
			ebitenutil.DrawLine(screen, prevX, prevY, x, y, p.color)
		}
		prevX, prevY = x, y
	}

	label := p.label
	if n := len(g.frames); n > 0 && g.channel < len(g.frames[n-1].Channels) {
		c := g.frames[n-1].Channels[g.channel]
		switch p.label {
		case "volume":
			label = fmt.Sprintf("volume %d", c.Volume)
		case "period":
			label = fmt.Sprintf("period %d  detune %d", c.Period, c.Detune)
		case "pan":
			label = fmt.Sprintf("pan %d", c.Pan)
		}
	}
	ebitenutil.DebugPrintAt(screen, label, rect.Min.X+4, rect.Min.Y+4)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	g.viewW, g.viewH = outsideW, outsideH
	return outsideW, outsideH
}

func main() {
	var (
		listingPath = flag.String("file", "", "path to an instrument listing")
		channels    = flag.Int("channels", 2, "number of output channels")
		trigger     = flag.Int("trigger", 96, "retrigger the note every N ticks (0 = once)")
		freq        = flag.Bool("freq", false, "treat periods as frequencies in Hz")
	)
	flag.Parse()

	g, err := newGame(strings.TrimSpace(*listingPath), []trackersynth.TraceOption{
		trackersynth.WithChannels(*channels),
		trackersynth.WithTriggerEvery(*trigger),
		trackersynth.WithPeriodsAsFrequencies(*freq),
	})
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("synthscope")
	ebiten.SetTPS(updateTPS)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
