package trackersynth

import (
	"github.com/cbegin/trackersynth-go/internal/lfo"
	"github.com/cbegin/trackersynth-go/internal/synth"
)

const (
	defaultNumSamples   = 8
	defaultNumWaveforms = 8
	waveformLength      = 32
)

// Module is an in-memory stand-in for a loaded song. It answers the
// questions scripts ask about samples, waveforms and the order list.
type Module struct {
	flags     synth.ModuleFlags
	minPeriod int
	maxPeriod int
	samples   []synth.SampleInfo
	waveforms [][]int8
	orders    map[[2]int]int
}

// NewModule builds a module with numSamples samples of sampleLength frames.
// Even-numbered samples loop over their second half. The waveform bank is
// filled with one cycle of each oscillator shape.
func NewModule(flags synth.ModuleFlags, numSamples int, sampleLength uint32) *Module {
	m := &Module{
		flags:     flags,
		minPeriod: 113,
		maxPeriod: 856,
		orders:    map[[2]int]int{},
	}
	if flags&synth.PeriodsAreFrequencies != 0 {
		m.minPeriod, m.maxPeriod = 50, 96000
	}
	for i := 1; i <= numSamples; i++ {
		info := synth.SampleInfo{Length: sampleLength}
		if i%2 == 0 {
			info.Loop = true
			info.LoopStart = sampleLength / 2
			info.LoopEnd = sampleLength
		}
		m.samples = append(m.samples, info)
	}
	for i := 0; i < defaultNumWaveforms; i++ {
		m.waveforms = append(m.waveforms, buildWaveform(i%lfo.NumWaveforms))
	}
	return m
}

func buildWaveform(shape int) []int8 {
	out := make([]int8, waveformLength)
	for i := range out {
		out[i] = int8(lfo.Value(shape, uint8(i*lfo.Cycle/waveformLength)))
	}
	return out
}

// SetOrder maps a pattern and row to an order list position for
// FTM_SetPlayPosition.
func (m *Module) SetOrder(pattern, row, order int) {
	m.orders[[2]int{pattern, row}] = order
}

// SetWaveform replaces waveform index, growing the bank as needed.
func (m *Module) SetWaveform(index int, data []int8) {
	for len(m.waveforms) <= index {
		m.waveforms = append(m.waveforms, nil)
	}
	m.waveforms[index] = append([]int8(nil), data...)
}

func (m *Module) Flags() synth.ModuleFlags          { return m.flags }
func (m *Module) PeriodRange() (int, int)           { return m.minPeriod, m.maxPeriod }
func (m *Module) NumSamples() int                   { return len(m.samples) }
func (m *Module) Sample(index int) synth.SampleInfo { return m.samples[index-1] }

func (m *Module) Waveform(index int) []int8 {
	if index < 0 || index >= len(m.waveforms) {
		return nil
	}
	return m.waveforms[index]
}

func (m *Module) FindOrder(pattern, row int) (int, bool) {
	order, ok := m.orders[[2]int{pattern, row}]
	return order, ok
}
