package scriptasm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Southclaws/fault/ftag"

	"github.com/cbegin/trackersynth-go/internal/script"
)

func TestParseListing(t *testing.T) {
	src := `
# fade out three times, then stop
    SetLoopCounter 3, false
again:
    GTK_SetVolumeStep -64
    Delay 0x10
    EvaluateLoopCounter again
    StopScript

script
    FTM_SetInterrupt done, 2
    Jump 0
done:
    Puma_PitchRamp -4 4 20
`
	got, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []script.Script{
		{
			script.SetLoopCounter(3, false),
			script.GTKSetVolumeStep(-64),
			script.Delay(16),
			script.EvaluateLoopCounter(1),
			script.StopScript(),
		},
		{
			script.FTMSetInterrupt(2, 2),
			script.Jump(0),
			script.PumaPitchRamp(-4, 4, 20),
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %v\nwant %v", got, want)
	}
}

func TestParseForwardAndCaseInsensitiveLabels(t *testing.T) {
	got, err := Parse("jump End\ndelay 1\nend:\nnotecut\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got) != 1 || got[0][0] != script.Jump(2) || got[0][2] != script.NoteCut() {
		t.Fatalf("Parse() = %v", got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ftag.Kind
		text string
	}{
		{"unknown opcode", "Delay 1\nFly 2\n", ftag.NotFound, "line 2"},
		{"undefined label", "Jump nowhere\n", ftag.NotFound, "nowhere"},
		{"operand count", "SetStepSpeed 2\n", ftag.InvalidArgument, "takes 2 operands"},
		{"bad number", "Delay ten\n", ftag.InvalidArgument, "ticks"},
		{"byte overflow", "GTK_SetSpeed 256\n", ftag.InvalidArgument, "out of range"},
		{"signed underflow", "Puma_SetPitch -129 1\n", ftag.InvalidArgument, "out of range"},
		{"duplicate label", "a:\nDelay 1\na:\n", ftag.AlreadyExists, "twice"},
		{"labels are per script", "a:\nDelay 1\nscript\nJump a\n", ftag.NotFound, "line 4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := ftag.Get(err); got != tc.kind {
				t.Fatalf("kind = %q, want %q (%v)", got, tc.kind, err)
			}
			if !strings.Contains(err.Error(), tc.text) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.text)
			}
		})
	}
}

func TestParseEmptyScripts(t *testing.T) {
	got, err := Parse("script\nscript\n# nothing\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(got) != 2 || len(got[0]) != 0 || len(got[1]) != 0 {
		t.Fatalf("Parse() = %v, want two empty scripts", got)
	}
	if got, _ := Parse(""); len(got) != 0 {
		t.Fatalf("empty listing produced %d scripts", len(got))
	}
}

func TestFormatRoundTrip(t *testing.T) {
	scripts := []script.Script{
		{
			script.GTKSetVibratoParams(16, 12),
			script.GTKEnableVibrato(true),
			script.SetLoopCounter(8, true),
			script.GTKSetVolumeStep(-40),
			script.Delay(2),
			script.EvaluateLoopCounter(3),
			script.Jump(script.StopRow),
		},
		{},
		{
			script.MEDHoldDecay(4, 2),
			script.FCSetPitch(-12, true),
			script.SampleOffset(0x123456),
			script.FTMSetSampleStart(100, 1),
			script.Jump(0),
		},
	}
	text := Format(scripts)
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(Format()) error: %v\n%s", err, text)
	}
	if !reflect.DeepEqual(got, scripts) {
		t.Fatalf("round trip mismatch:\n%s\ngot  %v\nwant %v", text, got, scripts)
	}
	if !strings.Contains(text, "row3:") || !strings.Contains(text, "EvaluateLoopCounter row3") {
		t.Fatalf("jump targets should be labelled:\n%s", text)
	}
}
