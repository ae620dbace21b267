package lfo

import "math"

// Waveform constants. The first four match the classic tracker LFO set; FTM
// waveform bytes are taken modulo NumWaveforms.
const (
	WaveSaw      = 0
	WaveSquare   = 1
	WaveTriangle = 2
	WaveRandom   = 3
	WaveSine     = 4
	WaveRampDown = 5

	NumWaveforms = 6
)

// Amplitude is the peak magnitude returned by Value.
const Amplitude = 127

// Cycle is the number of phase positions in one period.
const Cycle = 256

var sineTable = func() [Cycle]int8 {
	var t [Cycle]int8
	for i := range t {
		t[i] = int8(math.Round(math.Sin(2*math.Pi*float64(i)/Cycle) * Amplitude))
	}
	return t
}()

// Value returns the waveform at phase pos in [-Amplitude, Amplitude].
// WaveRandom has no fixed shape; Value returns 0 for it and Osc holds its own
// sample-and-hold value.
func Value(waveform int, pos uint8) int {
	p := int(pos)
	switch waveform {
	case WaveSaw:
		return p*(2*Amplitude)/(Cycle-1) - Amplitude
	case WaveRampDown:
		return Amplitude - p*(2*Amplitude)/(Cycle-1)
	case WaveSquare:
		if p < Cycle/2 {
			return Amplitude
		}
		return -Amplitude
	case WaveTriangle:
		switch {
		case p < Cycle/4:
			return p * Amplitude / (Cycle / 4)
		case p < 3*Cycle/4:
			return (Cycle/2 - p) * Amplitude / (Cycle / 4)
		default:
			return (p - Cycle) * Amplitude / (Cycle / 4)
		}
	case WaveSine:
		return int(sineTable[p])
	}
	return 0
}

// Osc is a tick-stepped integer oscillator. The zero value is silent.
// It is a plain value so register sets holding it copy cleanly.
type Osc struct {
	Waveform int
	Speed    int // phase increment per tick, in 1/Cycle units
	Depth    int // output scale; Tick returns values in [-Depth, Depth]

	pos  uint8
	rand uint32
	held int
}

// Set configures the oscillator. Unknown waveforms fall back to triangle.
func (o *Osc) Set(depth, speed, waveform int) {
	o.Depth = depth
	o.Speed = speed
	if waveform < 0 || waveform >= NumWaveforms {
		waveform = WaveTriangle
	}
	o.Waveform = waveform
}

// Current returns the output at the current phase without advancing.
func (o *Osc) Current() int {
	if o.Depth == 0 {
		return 0
	}
	v := o.held
	if o.Waveform != WaveRandom {
		v = Value(o.Waveform, o.pos)
	}
	return v * o.Depth / Amplitude
}

// Tick returns the current output and advances the phase by Speed.
func (o *Osc) Tick() int {
	out := o.Current()
	o.Advance()
	return out
}

// Advance moves the phase by Speed, refreshing the held random value each
// time the phase wraps.
func (o *Osc) Advance() {
	if o.Speed == 0 {
		return
	}
	next := int(o.pos) + o.Speed
	wrapped := next >= Cycle || next < 0
	o.pos = uint8(next)
	if wrapped && o.Waveform == WaveRandom {
		// xorshift32 with a fixed seed keeps runs reproducible.
		if o.rand == 0 {
			o.rand = 0x9E3779B9
		}
		o.rand ^= o.rand << 13
		o.rand ^= o.rand >> 17
		o.rand ^= o.rand << 5
		o.held = int(o.rand%(2*Amplitude+1)) - Amplitude
	}
}

// Phase returns the current phase position.
func (o *Osc) Phase() uint8 { return o.pos }

// Active returns true if the oscillator has non-zero depth and speed.
func (o *Osc) Active() bool {
	return o.Depth != 0 && o.Speed != 0
}

// Reset zeros the phase and the random generator.
func (o *Osc) Reset() {
	o.pos = 0
	o.rand = 0
	o.held = 0
}
