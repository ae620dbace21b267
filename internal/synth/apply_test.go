package synth

import (
	"testing"

	"github.com/cbegin/trackersynth-go/internal/script"
)

func applyOnce(s *State, chn Channel, sf SoundFile) (Channel, int) {
	chn.Seed()
	period := chn.Period
	s.ApplyChannelState(&chn, &period, sf)
	return chn, period
}

func TestApplyDefaultsAreNeutral(t *testing.T) {
	s := NewState()
	chn := Channel{Period: 428, Volume: 200, Panning: 77}
	got, period := applyOnce(&s, chn, newTestModule())
	if got.RealVolume != 200 || got.RealPan != 77 || period != 428 || got.Detune != 0 {
		t.Fatalf("defaults changed output: vol %d pan %d period %d", got.RealVolume, got.RealPan, period)
	}
}

func TestApplyVolume(t *testing.T) {
	s := NewState()
	s.setVolumeFactor(8192)
	got, _ := applyOnce(&s, Channel{Volume: 200}, newTestModule())
	if got.RealVolume != 100 {
		t.Fatalf("RealVolume = %d, want 100", got.RealVolume)
	}

	s.gtkTremoloOut = 200
	got, _ = applyOnce(&s, Channel{Volume: 200}, newTestModule())
	if got.RealVolume != 256 {
		t.Fatalf("RealVolume = %d, want clamped 256", got.RealVolume)
	}

	s.gtkTremorMuted = true
	got, _ = applyOnce(&s, Channel{Volume: 200}, newTestModule())
	if got.RealVolume != 0 {
		t.Fatalf("tremor should mute, got %d", got.RealVolume)
	}
}

func TestBiasPan(t *testing.T) {
	cases := []struct {
		pan, bias, want int
	}{
		{128, panningCenter, 128},
		{128, 0, 0},
		{128, panningMax, 256},
		{128, 1024, 64},
		{128, 3072, 192},
		{0, 3072, 128},
	}
	for _, tc := range cases {
		if got := biasPan(tc.pan, tc.bias); got != tc.want {
			t.Fatalf("biasPan(%d, %d) = %d, want %d", tc.pan, tc.bias, got, tc.want)
		}
	}
}

func TestLinearSlide(t *testing.T) {
	cases := []struct {
		name   string
		period int
		steps  int
		freq   bool
		want   int
	}{
		{"amiga octave up", 428, LinearStepsPerOctave, false, 214},
		{"amiga octave down", 428, -LinearStepsPerOctave, false, 856},
		{"frequency octave up", 8363, LinearStepsPerOctave, true, 16726},
		{"frequency octave down", 8363, -LinearStepsPerOctave, true, 4181},
		{"zero period", 0, 100, true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := linearSlide(tc.period, tc.steps, tc.freq); got != tc.want {
				t.Fatalf("linearSlide = %d, want %d", got, tc.want)
			}
		})
	}
	if up := linearSlide(428, 1, false); up >= 428 {
		t.Fatalf("one step up should shorten the amiga period, got %d", up)
	}
}

func TestApplyClampsOnlyWhenSliding(t *testing.T) {
	sf := newTestModule()
	s := NewState()

	_, period := applyOnce(&s, Channel{Period: 2000}, sf)
	if period != 2000 {
		t.Fatalf("period without slide = %d, want 2000 untouched", period)
	}

	s.linearPitch = -2 * LinearStepsPerOctave
	_, period = applyOnce(&s, Channel{Period: 428}, sf)
	if period != sf.maxPeriod {
		t.Fatalf("period = %d, want clamped %d", period, sf.maxPeriod)
	}

	sf.flags = PeriodsAreFrequencies
	s.linearPitch = 2 * LinearStepsPerOctave
	_, period = applyOnce(&s, Channel{Period: 8000}, sf)
	if period != 32000 {
		t.Fatalf("frequency period = %d, want 32000 unclamped", period)
	}
}

func TestApplyGTKPitchFactor(t *testing.T) {
	s := NewState()
	s.setGTKPitch(2 * gtkPitchUnity)
	_, period := applyOnce(&s, Channel{Period: 428}, newTestModule())
	if period != 214 {
		t.Fatalf("period = %d, want 214", period)
	}
}

func TestApplyPeriodOffsets(t *testing.T) {
	s := NewState()
	s.periodAdd = 10
	s.medVibratoOut = -3
	_, period := applyOnce(&s, Channel{Period: 400}, newTestModule())
	if period != 407 {
		t.Fatalf("period = %d, want 407", period)
	}
}

func TestApplyFCTransposeAndBend(t *testing.T) {
	sf := newTestModule()
	s := NewState()
	s.EvaluateEvent(script.FCSetPitch(12, false), newPlay(1), 0, sf, nil)
	_, period := applyOnce(&s, Channel{Period: 428}, sf)
	if period != 214 {
		t.Fatalf("transposed period = %d, want 214", period)
	}

	s = NewState()
	s.fcBend = 8
	_, period = applyOnce(&s, Channel{Period: 428}, sf)
	if period != 420 {
		t.Fatalf("bent period = %d, want 420", period)
	}

	s = NewState()
	s.fcPitch = 13
	s.flags |= flagFCFixedNote
	_, period = applyOnce(&s, Channel{Period: 428, Note: 1}, sf)
	if period != 214 {
		t.Fatalf("fixed note period = %d, want 214", period)
	}
}

func TestApplyDetuneAccumulates(t *testing.T) {
	sf := newTestModule()
	a, b := NewState(), NewState()
	a.detune = 30
	b.detune = -10
	chn := Channel{Period: 428}
	chn.Seed()
	period := chn.Period
	a.ApplyChannelState(&chn, &period, sf)
	b.ApplyChannelState(&chn, &period, sf)
	if chn.Detune != 20 {
		t.Fatalf("detune = %d, want 20", chn.Detune)
	}
}
