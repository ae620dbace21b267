// Package trackersynth drives instrument scripts tick by tick and records what
// they do to each output channel.
package trackersynth

import (
	"fmt"
	"log/slog"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"github.com/cbegin/trackersynth-go/internal/script"
	"github.com/cbegin/trackersynth-go/internal/synth"
)

// TraceConfig holds the tracer settings. Start from DefaultTraceConfig and
// adjust it with TraceOptions.
type TraceConfig struct {
	Channels              int
	PeriodsAreFrequencies bool
	ImmediateSampleSwap   bool
	// TriggerEvery retriggers the note every N ticks. 0 triggers only once.
	TriggerEvery int
	SampleLength uint32
	NumSamples   int
	Speed        int
	Tempo        int
	Period       int
	Note         int
	Logger       *slog.Logger
}

func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		Channels:     4,
		SampleLength: 16384,
		NumSamples:   defaultNumSamples,
		Speed:        6,
		Tempo:        125,
		Period:       428,
		Note:         25,
		Logger:       slog.New(slog.DiscardHandler),
	}
}

type TraceOption func(*TraceConfig)

func WithChannels(n int) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.Channels = n
	}
}

// WithPeriodsAsFrequencies makes channel periods frequencies in Hz. The base
// period becomes 8363 Hz unless WithPeriod follows.
func WithPeriodsAsFrequencies(enabled bool) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.PeriodsAreFrequencies = enabled
		if enabled && cfg.Period == 428 {
			cfg.Period = 8363
		}
	}
}

func WithImmediateSampleSwap(enabled bool) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.ImmediateSampleSwap = enabled
	}
}

func WithTriggerEvery(ticks int) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.TriggerEvery = ticks
	}
}

func WithSampleLength(length uint32) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.SampleLength = length
	}
}

func WithSpeed(speed int) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.Speed = speed
	}
}

func WithPeriod(period int) TraceOption {
	return func(cfg *TraceConfig) {
		cfg.Period = period
	}
}

// WithLogger sets the logger for trigger, halt and position-jump messages.
func WithLogger(log *slog.Logger) TraceOption {
	return func(cfg *TraceConfig) {
		if log != nil {
			cfg.Logger = log
		}
	}
}

// Frame is the realized output of one channel after a tick.
type Frame struct {
	Period   int
	Volume   int
	Pan      int
	Detune   int
	Sample   int
	Position uint32
	Muted    bool
	// Rows holds the current row of every script, script.StopRow when halted.
	Rows []uint16
}

// TickFrame is one tick of a trace.
type TickFrame struct {
	Tick         int // absolute tick since the trace started
	RowTick      int // tick within the row
	Tempo        int
	Speed        int
	GlobalVolume int
	PositionJump bool
	NextOrder    int
	NextRow      int
	Channels     []Frame
}

// Tracer plays instruments on a set of channels without a mixer. It is not
// safe for concurrent use.
type Tracer struct {
	cfg     TraceConfig
	log     *slog.Logger
	module  *Module
	play    synth.PlayState
	scripts [][]script.Script
	states  []synth.States
	global  synth.GlobalScriptState
	gscript script.Script
	pending []synth.RowCommand
	running []bool
	tick    int
	rowTick int
}

func NewTracer(opts ...TraceOption) (*Tracer, error) {
	cfg := DefaultTraceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Channels <= 0 {
		return nil, fault.New("channels must be positive", ftag.With(ftag.InvalidArgument))
	}
	if cfg.Speed <= 0 {
		return nil, fault.New("speed must be positive", ftag.With(ftag.InvalidArgument))
	}
	var flags synth.ModuleFlags
	if cfg.PeriodsAreFrequencies {
		flags |= synth.PeriodsAreFrequencies
	}
	if cfg.ImmediateSampleSwap {
		flags |= synth.ImmediateSampleSwap
	}
	t := &Tracer{
		cfg:     cfg,
		log:     cfg.Logger,
		module:  NewModule(flags, cfg.NumSamples, cfg.SampleLength),
		scripts: make([][]script.Script, cfg.Channels),
	}
	t.Reset()
	return t, nil
}

// Module returns the in-memory module the scripts play against.
func (t *Tracer) Module() *Module { return t.module }

// SetInstrument assigns the scripts of the instrument played on channel.
func (t *Tracer) SetInstrument(channel int, scripts []script.Script) error {
	if channel < 0 || channel >= len(t.scripts) {
		return fault.New(fmt.Sprintf("channel %d out of range [0, %d)", channel, len(t.scripts)),
			ftag.With(ftag.InvalidArgument))
	}
	t.scripts[channel] = scripts
	return nil
}

// SetGlobalScript installs a module-wide script that runs once per output
// channel. It starts on the next Restart or synth-jump row command.
func (t *Tracer) SetGlobalScript(sc script.Script) {
	t.gscript = sc
}

// Restart restarts the global script on every channel at the next tick.
func (t *Tracer) Restart() {
	t.global.Restart()
}

// Trigger starts a new note on channel at the next tick.
func (t *Tracer) Trigger(channel int) {
	if channel < 0 || channel >= len(t.play.Channels) {
		return
	}
	chn := &t.play.Channels[channel]
	chn.NewNote = true
	chn.Period = t.cfg.Period
	chn.Note = t.cfg.Note
	chn.Position = 0
	chn.Flags &^= synth.ChnKeyOff | synth.ChnMute
	if chn.Sample == 0 && chn.LoadSample(1, t.module) {
		chn.NewSample = true
	}
	t.running[channel] = true
	t.log.Debug("note triggered", "channel", channel, "tick", t.tick)
}

// Release keys off the note playing on channel.
func (t *Tracer) Release(channel int) {
	if channel < 0 || channel >= len(t.play.Channels) {
		return
	}
	t.play.Channels[channel].Flags |= synth.ChnKeyOff
	t.log.Debug("note released", "channel", channel, "tick", t.tick)
}

// SetRowCommand makes channel play cmd from the start of the next row.
func (t *Tracer) SetRowCommand(channel int, cmd synth.RowCommand) {
	if channel < 0 || channel >= len(t.pending) {
		return
	}
	t.pending[channel] = cmd
}

// States exposes the script states of channel for inspection.
func (t *Tracer) States(channel int) *synth.States { return &t.states[channel] }

// Global exposes the global script states for inspection.
func (t *Tracer) Global() *synth.GlobalScriptState { return &t.global }

func (t *Tracer) Channels() int { return len(t.play.Channels) }

// Ticks returns the number of ticks run since the last Reset.
func (t *Tracer) Ticks() int { return t.tick }

// Reset stops every script and restores the channels to their initial state.
// Instruments and the global script are kept.
func (t *Tracer) Reset() {
	n := t.cfg.Channels
	t.play = synth.PlayState{
		Channels:     make([]synth.Channel, n),
		GlobalVolume: 256,
		Tempo:        t.cfg.Tempo,
		Speed:        t.cfg.Speed,
	}
	for i := range t.play.Channels {
		t.play.Channels[i] = synth.Channel{Volume: 256, Panning: 128}
	}
	t.states = make([]synth.States, n)
	t.global = synth.GlobalScriptState{}
	t.pending = make([]synth.RowCommand, n)
	t.running = make([]bool, n)
	t.tick = 0
	t.rowTick = 0
}

// Step runs one tick on every channel and returns the realized outputs.
func (t *Tracer) Step() TickFrame {
	play := &t.play
	play.Tick = t.rowTick
	if play.Tick == 0 {
		t.startRow()
	}
	if t.tick == 0 || (t.cfg.TriggerEvery > 0 && t.tick%t.cfg.TriggerEvery == 0) {
		for ch := range play.Channels {
			if len(t.scripts[ch]) > 0 {
				t.Trigger(ch)
			}
		}
	}
	play.PositionJump = false

	for ch := range play.Channels {
		t.states[ch].NextTick(t.scripts[ch], play, ch, t.module)
	}
	if t.gscript != nil {
		t.global.NextTick(t.gscript, play, t.module)
	}

	frame := TickFrame{
		Tick:         t.tick,
		RowTick:      play.Tick,
		Tempo:        play.Tempo,
		Speed:        play.Speed,
		GlobalVolume: play.GlobalVolume,
		PositionJump: play.PositionJump,
		NextOrder:    play.NextOrder,
		NextRow:      play.NextRow,
		Channels:     make([]Frame, len(play.Channels)),
	}
	if play.PositionJump {
		t.log.Debug("position jump", "order", play.NextOrder, "row", play.NextRow, "tick", t.tick)
	}
	for ch := range play.Channels {
		frame.Channels[ch] = t.apply(ch)
	}
	for ch := range play.Channels {
		play.Channels[ch].NewNote = false
		play.Channels[ch].NewSample = false
	}
	t.tick++
	t.rowTick++
	if t.rowTick >= max(play.Speed, 1) {
		t.rowTick = 0
	}
	return frame
}

// Run steps ticks times and returns every frame.
func (t *Tracer) Run(ticks int) []TickFrame {
	frames := make([]TickFrame, 0, max(ticks, 0))
	for i := 0; i < ticks; i++ {
		frames = append(frames, t.Step())
	}
	return frames
}

func (t *Tracer) startRow() {
	for ch := range t.play.Channels {
		chn := &t.play.Channels[ch]
		chn.Row, t.pending[ch] = t.pending[ch], synth.RowCommand{}
		// No mixer runs here, so deferred sample swaps land on row starts.
		if chn.PendingSample != 0 && chn.LoadSample(chn.PendingSample, t.module) {
			chn.Position = min(chn.Position, chn.Length)
			chn.NewSample = true
		}
		chn.PendingSample = 0
	}
}

func (t *Tracer) apply(ch int) Frame {
	chn := &t.play.Channels[ch]
	chn.Seed()
	period := chn.Period
	t.states[ch].ApplyChannelState(chn, &period, t.module)
	t.global.ApplyChannelState(chn, ch, &period, t.module)

	states := &t.states[ch]
	rows := make([]uint16, states.Len())
	running := false
	for i := range rows {
		s := states.At(i)
		rows[i] = s.CurrentRow()
		running = running || s.Running()
	}
	if t.running[ch] && !running {
		t.log.Debug("scripts halted", "channel", ch, "tick", t.tick)
	}
	t.running[ch] = running

	return Frame{
		Period:   period,
		Volume:   chn.RealVolume,
		Pan:      chn.RealPan,
		Detune:   chn.Detune,
		Sample:   chn.Sample,
		Position: chn.Position,
		Muted:    chn.Flags&synth.ChnMute != 0,
		Rows:     rows,
	}
}
