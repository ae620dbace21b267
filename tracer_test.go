package trackersynth

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"github.com/cbegin/trackersynth-go/internal/script"
	"github.com/cbegin/trackersynth-go/internal/synth"
)

func mustCompile(t *testing.T, listing string) []script.Script {
	t.Helper()
	scripts, err := Compile(listing)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return scripts
}

func TestNewTracerRejectsBadConfig(t *testing.T) {
	if _, err := NewTracer(WithChannels(0)); ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("zero channels: err = %v", err)
	}
	if _, err := NewTracer(WithSpeed(0)); ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("zero speed: err = %v", err)
	}
	tr, err := NewTracer(WithChannels(2))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	if err := tr.SetInstrument(2, nil); ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("out of range channel: err = %v", err)
	}
}

func TestTracerAppliesInstrument(t *testing.T) {
	tr, err := NewTracer(WithChannels(2))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	if err := tr.SetInstrument(0, mustCompile(t, "GTK_SetVolume 8192\nDelay 100\n")); err != nil {
		t.Fatalf("set instrument: %v", err)
	}
	frame := tr.Step()
	if got := frame.Channels[0].Volume; got != 128 {
		t.Fatalf("channel 0 volume = %d, want 128", got)
	}
	if got := frame.Channels[1].Volume; got != 256 {
		t.Fatalf("channel 1 volume = %d, want untouched 256", got)
	}
	if got := frame.Channels[0].Period; got != 428 {
		t.Fatalf("period = %d, want 428", got)
	}
	if rows := frame.Channels[0].Rows; len(rows) != 1 || rows[0] == script.StopRow {
		t.Fatalf("rows = %v, want one running script", rows)
	}
	if len(frame.Channels[1].Rows) != 0 {
		t.Fatalf("channel without instrument reports rows %v", frame.Channels[1].Rows)
	}
}

func TestTracerRetrigger(t *testing.T) {
	tr, err := NewTracer(WithChannels(1), WithTriggerEvery(3))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	_ = tr.SetInstrument(0, mustCompile(t, "top:\nSampleOffsetAdd 1\nDelay 0\nJump top\n"))
	want := []uint32{1, 2, 3, 1, 2, 3, 1}
	for i, frame := range tr.Run(len(want)) {
		if got := frame.Channels[0].Position; got != want[i] {
			t.Fatalf("tick %d position = %d, want %d", i, got, want[i])
		}
	}
	if tr.Ticks() != len(want) {
		t.Fatalf("Ticks() = %d, want %d", tr.Ticks(), len(want))
	}
}

func TestTracerRowCommandWaitsForRowStart(t *testing.T) {
	tr, err := NewTracer(WithChannels(1), WithSpeed(3))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	_ = tr.SetInstrument(0, mustCompile(t, `
script
    Delay 100
script
    SampleOffsetAdd 1
    StopScript
    SampleOffsetAdd 50
    Delay 100
`))
	tr.Step()
	tr.SetRowCommand(0, synth.RowCommand{Kind: synth.CommandSynthJump, Param: 2})
	frames := tr.Run(3)
	if got := frames[1].Channels[0].Position; got != 1 {
		t.Fatalf("position mid-row = %d, want 1", got)
	}
	if frames[2].RowTick != 0 {
		t.Fatalf("row tick = %d, want 0", frames[2].RowTick)
	}
	if got := frames[2].Channels[0].Position; got != 51 {
		t.Fatalf("position after synth jump = %d, want 51", got)
	}
}

func TestTracerGlobalScript(t *testing.T) {
	tr, err := NewTracer(WithChannels(3))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	global, err := CompileGlobal("GTK_SetPanning 0\nDelay 100\n")
	if err != nil {
		t.Fatalf("compile global: %v", err)
	}
	tr.SetGlobalScript(global)
	if frame := tr.Step(); frame.Channels[0].Pan != 128 {
		t.Fatalf("global script ran before Restart")
	}
	tr.Restart()
	frame := tr.Step()
	for ch, f := range frame.Channels {
		if f.Pan != 0 {
			t.Fatalf("channel %d pan = %d, want 0", ch, f.Pan)
		}
	}
	if tr.Global().Len() != 3 {
		t.Fatalf("global states = %d, want 3", tr.Global().Len())
	}
}

func TestTracerEngineState(t *testing.T) {
	tr, err := NewTracer(WithChannels(1))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	tr.Module().SetOrder(2, 8, 5)
	_ = tr.SetInstrument(0, mustCompile(t, "FTM_SetTempo 8867\nFTM_SetSpeed 4\nFTM_SetPlayPosition 2, 8\nStopScript\n"))
	frame := tr.Step()
	if frame.Tempo != 200 || frame.Speed != 4 {
		t.Fatalf("tempo/speed = %d/%d, want 200/4", frame.Tempo, frame.Speed)
	}
	if !frame.PositionJump || frame.NextOrder != 5 || frame.NextRow != 8 {
		t.Fatalf("position jump = %v to %d:%d, want order 5 row 8", frame.PositionJump, frame.NextOrder, frame.NextRow)
	}
	if next := tr.Step(); next.PositionJump {
		t.Fatalf("position jump should last one tick")
	}
}

func TestTracerLogsHalt(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr, err := NewTracer(WithChannels(1), WithLogger(log))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	_ = tr.SetInstrument(0, mustCompile(t, "GTK_SetVolume 100\nStopScript\n"))
	tr.Run(2)
	out := buf.String()
	if !strings.Contains(out, "note triggered") || !strings.Contains(out, "scripts halted") {
		t.Fatalf("log output missing messages:\n%s", out)
	}
	if strings.Count(out, "scripts halted") != 1 {
		t.Fatalf("halt should be logged once:\n%s", out)
	}
}

func TestTracerReleaseAndReset(t *testing.T) {
	tr, err := NewTracer(WithChannels(1))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	_ = tr.SetInstrument(0, mustCompile(t, "GTK_KeyOff released\nDelay 1000\nreleased:\nGTK_SetVolume 0\nDelay 1000\n"))
	tr.Run(2)
	tr.Release(0)
	if frame := tr.Step(); frame.Channels[0].Volume != 0 {
		t.Fatalf("volume after release = %d, want 0", frame.Channels[0].Volume)
	}
	tr.Reset()
	if tr.Ticks() != 0 || tr.States(0).Len() != 0 {
		t.Fatalf("Reset left ticks %d and %d states", tr.Ticks(), tr.States(0).Len())
	}
	if frame := tr.Step(); frame.Channels[0].Volume != 256 {
		t.Fatalf("volume after reset = %d, want 256", frame.Channels[0].Volume)
	}
}

func TestTracerDeferredSwapReloadsSampleWindow(t *testing.T) {
	tr, err := NewTracer(WithChannels(1))
	if err != nil {
		t.Fatalf("new tracer: %v", err)
	}
	// Sample 2 loops, so the switch to sample 3 waits for the next row.
	_ = tr.SetInstrument(0, mustCompile(t, "FTM_SetSample 2\nFTM_SetSample 3\nDelay 100\n"))
	frames := tr.Run(7)
	if got := frames[5].Channels[0].Sample; got != 2 {
		t.Fatalf("sample before row start = %d, want 2", got)
	}
	if got := frames[6].Channels[0].Sample; got != 3 {
		t.Fatalf("sample after row start = %d, want 3", got)
	}
	chn := tr.play.Channels[0]
	want := tr.Module().Sample(3)
	if chn.Flags&synth.ChnLoop != 0 || chn.LoopStart != 0 || chn.LoopEnd != 0 || chn.Length != want.Length {
		t.Fatalf("sample 3 window = len %d loop %v [%d,%d), want len %d without loop",
			chn.Length, chn.Flags&synth.ChnLoop != 0, chn.LoopStart, chn.LoopEnd, want.Length)
	}
	if chn.PendingSample != 0 {
		t.Fatalf("pending sample = %d, want 0", chn.PendingSample)
	}
}
