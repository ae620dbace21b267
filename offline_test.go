package trackersynth

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

const busyInstrument = `
script
    GTK_SetVibratoParams 16, 12
    GTK_EnableVibrato true
    GTK_EnableTremor true
    SetLoopCounter 8, false
fade:
    GTK_SetVolumeStep -40
    Delay 2
    EvaluateLoopCounter fade
    GTK_SetVolumeStep 0
    Delay 30
script
    FTM_LFOAddSub 0, 20, 60
    FTM_StartLFO 0, 1, 3
    Puma_PitchRamp -10, 10, 16
    Puma_VolumeRamp 64, 0, 24
    Jump 2
`

func TestTraceIsDeterministic(t *testing.T) {
	run := func() []TickFrame {
		frames, err := Trace(busyInstrument, 96, WithChannels(2), WithTriggerEvery(40))
		if err != nil {
			t.Fatalf("trace: %v", err)
		}
		return frames
	}
	first, second := run(), run()
	if len(first) != 96 {
		t.Fatalf("frames = %d, want 96", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two traces of the same listing differ")
	}
	changed := false
	for _, f := range first[1:] {
		if f.Channels[0].Volume != first[0].Channels[0].Volume || f.Channels[0].Period != first[0].Channels[0].Period {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatalf("instrument produced a flat trace")
	}
}

func TestCompileErrorsAreTagged(t *testing.T) {
	_, err := Compile("Delay 1\nWobble 3\n")
	if err == nil {
		t.Fatalf("expected error")
	}
	if ftag.Get(err) != ftag.NotFound {
		t.Fatalf("kind = %q, want NotFound", ftag.Get(err))
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error %q lacks the line number", err)
	}

	if _, err := Trace("Jump missing\n", 1); ftag.Get(err) != ftag.NotFound {
		t.Fatalf("Trace should surface compile errors, got %v", err)
	}
}

func TestCompileGlobal(t *testing.T) {
	if sc, err := CompileGlobal("# empty\n"); err != nil || sc != nil {
		t.Fatalf("empty global = %v, %v", sc, err)
	}
	if _, err := CompileGlobal("script\nDelay 1\nscript\nDelay 2\n"); ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("two scripts: err = %v", err)
	}
}

func TestListingRoundTrip(t *testing.T) {
	scripts := mustCompile(t, busyInstrument)
	again := mustCompile(t, Listing(scripts))
	if !reflect.DeepEqual(scripts, again) {
		t.Fatalf("listing round trip changed the scripts:\n%s", Listing(scripts))
	}
}

func TestModuleWaveformsFollowOscillatorShapes(t *testing.T) {
	m := NewModule(0, 4, 1000)
	square := m.Waveform(1)
	if len(square) != waveformLength || square[0] != 127 || square[waveformLength-1] != -127 {
		t.Fatalf("square waveform = %v", square)
	}
	if m.Waveform(-1) != nil || m.Waveform(100) != nil {
		t.Fatalf("out of range waveform should be nil")
	}
	m.SetWaveform(10, []int8{1, 2, 3})
	if got := m.Waveform(10); len(got) != 3 || got[2] != 3 {
		t.Fatalf("SetWaveform = %v", got)
	}
	if info := m.Sample(2); !info.Loop || info.LoopStart != 500 || info.LoopEnd != 1000 {
		t.Fatalf("sample 2 = %+v, want looping second half", info)
	}
	if info := m.Sample(1); info.Loop {
		t.Fatalf("sample 1 should not loop")
	}
}
