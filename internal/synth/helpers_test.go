package synth

import "github.com/cbegin/trackersynth-go/internal/script"

type testModule struct {
	flags     ModuleFlags
	minPeriod int
	maxPeriod int
	samples   []SampleInfo
	waves     [][]int8
	orders    map[[2]int]int
}

func newTestModule() *testModule {
	return &testModule{
		minPeriod: 113,
		maxPeriod: 856,
		samples: []SampleInfo{
			{Length: 1000},
			{Length: 2000, LoopStart: 500, LoopEnd: 2000, Loop: true},
			{Length: 256, LoopStart: 0, LoopEnd: 256, Loop: true},
			{Length: 64},
		},
		orders: map[[2]int]int{{3, 16}: 7},
	}
}

func (m *testModule) Flags() ModuleFlags          { return m.flags }
func (m *testModule) PeriodRange() (int, int)     { return m.minPeriod, m.maxPeriod }
func (m *testModule) NumSamples() int             { return len(m.samples) }
func (m *testModule) Sample(index int) SampleInfo { return m.samples[index-1] }

func (m *testModule) Waveform(index int) []int8 {
	if index < 0 || index >= len(m.waves) {
		return nil
	}
	return m.waves[index]
}

func (m *testModule) FindOrder(pattern, row int) (int, bool) {
	order, ok := m.orders[[2]int{pattern, row}]
	return order, ok
}

func newPlay(channels int) *PlayState {
	play := &PlayState{
		Channels:     make([]Channel, channels),
		GlobalVolume: 256,
		Tempo:        125,
		Speed:        6,
	}
	for i := range play.Channels {
		play.Channels[i] = Channel{
			Period:  428,
			Note:    25,
			Volume:  256,
			Panning: 128,
			Sample:  1,
			Length:  100000,
		}
	}
	return play
}

// runScript starts sc on channel 0 of a fresh State and runs ticks ticks.
func runScript(sc script.Script, play *PlayState, sf SoundFile, ticks int) *State {
	states := []State{NewState()}
	states[0].Start(0)
	for i := 0; i < ticks; i++ {
		states[0].NextTick(sc, play, 0, sf, states)
	}
	return &states[0]
}
