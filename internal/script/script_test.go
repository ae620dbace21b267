package script

import "testing"

func TestEventOperandLayout(t *testing.T) {
	ev := PumaPitchRamp(-3, 5, 12)
	if ev.Op() != OpPumaPitchRamp {
		t.Fatalf("op = %v", ev.Op())
	}
	if int8(ev.Byte0()) != -3 || int8(ev.Byte1()) != 5 || ev.Byte2() != 12 {
		t.Fatalf("bytes = %d %d %d", int8(ev.Byte0()), int8(ev.Byte1()), ev.Byte2())
	}

	off := SampleOffset(0x123456)
	if off.U24() != 0x123456 {
		t.Fatalf("U24 = %#x, want 0x123456", off.U24())
	}
	if got := SampleOffset(0x1FFFFFF).U24(); got != MaxOffset {
		t.Fatalf("offset should be masked to 24 bits, got %#x", got)
	}

	if step := GTKSetVolumeStep(-200).I16(); step != -200 {
		t.Fatalf("I16 = %d, want -200", step)
	}
}

func TestJumpTargets(t *testing.T) {
	cases := []struct {
		ev     Event
		isJump bool
	}{
		{Jump(4), true},
		{JumpIfTrue(4), true},
		{EvaluateLoopCounter(4), true},
		{GTKKeyOff(4), true},
		{MEDHoldDecay(2, 4), true},
		{FTMSetInterrupt(4, InterruptVolume), true},
		{Delay(4), false},
		{JumpMarker(4), false},
		{GTKSetVolume(4), false},
	}
	for _, tc := range cases {
		t.Run(tc.ev.Op().String(), func(t *testing.T) {
			if tc.ev.IsJumpEvent() != tc.isJump {
				t.Fatalf("IsJumpEvent = %v, want %v", tc.ev.IsJumpEvent(), tc.isJump)
			}
			moved := tc.ev.WithJumpTarget(9)
			if tc.isJump {
				if moved.JumpTarget() != 9 {
					t.Fatalf("JumpTarget = %d, want 9", moved.JumpTarget())
				}
				if moved.Byte0() != tc.ev.Byte0() {
					t.Fatalf("retargeting changed the primary byte")
				}
			} else {
				if moved != tc.ev {
					t.Fatalf("non-jump event changed by WithJumpTarget")
				}
				if tc.ev.JumpTarget() != StopRow {
					t.Fatalf("non-jump target = %d, want StopRow", tc.ev.JumpTarget())
				}
			}
		})
	}
}

func TestFindMarker(t *testing.T) {
	s := Script{Delay(1), JumpMarker(7), Delay(1), JumpMarker(3)}
	if got := s.FindMarker(3); got != 3 {
		t.Fatalf("FindMarker(3) = %d, want 3", got)
	}
	if got := s.FindMarker(7); got != 1 {
		t.Fatalf("FindMarker(7) = %d, want 1", got)
	}
	if got := s.FindMarker(1); got != StopRow {
		t.Fatalf("missing marker = %d, want StopRow", got)
	}
}

func TestFirstStepSpeed(t *testing.T) {
	s := Script{Delay(1), SetStepSpeed(3, false), SetStepSpeed(5, true)}
	speed, ok := s.FirstStepSpeed()
	if !ok || speed != 3 {
		t.Fatalf("FirstStepSpeed = %d,%v want 3,true", speed, ok)
	}
	if _, ok := (Script{Delay(1)}).FirstStepSpeed(); ok {
		t.Fatalf("expected no step speed")
	}
}

func TestOpNamesRoundTrip(t *testing.T) {
	for i := 0; i < NumOps; i++ {
		op := Op(i)
		name := op.String()
		if name == "" {
			t.Fatalf("op %d has no name", i)
		}
		got, ok := ParseOp(name)
		if !ok || got != op {
			t.Fatalf("ParseOp(%q) = %v,%v", name, got, ok)
		}
	}
	if _, ok := ParseOp("gtk_setvolume"); !ok {
		t.Fatalf("ParseOp should ignore case")
	}
	if _, ok := ParseOp("Bogus"); ok {
		t.Fatalf("ParseOp accepted an unknown name")
	}
	if Op(250).String() != "Op(250)" {
		t.Fatalf("unexpected name for unknown op: %s", Op(250))
	}
}

func TestEncodeMatchesFactories(t *testing.T) {
	cases := []struct {
		want Event
		args []int
	}{
		{SetStepSpeed(4, true), []int{4, 1}},
		{SetLoopCounter(3, true), []int{3, 1}},
		{SampleOffsetAdd(0x10203), []int{0x10203}},
		{GTKSetPitchStep(-12), []int{-12}},
		{GTKSetTremorTime(2, 5), []int{2, 5}},
		{PumaSetWaveform(1, 2, 3), []int{1, 2, 3}},
		{PumaPitchRamp(-4, 4, 8), []int{-4, 4, 8}},
		{MEDSetEnvelope(2, true, false), []int{2, 1, 0}},
		{MEDHoldDecay(6, 10), []int{6, 10}},
		{FTMSetInterrupt(12, InterruptRelease), []int{12, int(InterruptRelease)}},
		{FTMSetSampleStart(300, ModAdd), []int{300, int(ModAdd)}},
		{FTMStartLFO(1, LFOTargetPitch, 2), []int{1, int(LFOTargetPitch), 2}},
		{FTMSetPlayPosition(2, 16), []int{2, 16}},
		{FCSetPitch(-7, false), []int{-7, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.want.Op().String(), func(t *testing.T) {
			got := Encode(tc.want.Op(), tc.args)
			if got != tc.want {
				t.Fatalf("Encode = %+v, want %+v", got, tc.want)
			}
			args := got.Args()
			if len(args) != len(tc.args) {
				t.Fatalf("Args len = %d, want %d", len(args), len(tc.args))
			}
			for i := range args {
				if args[i] != tc.args[i] {
					t.Fatalf("Args[%d] = %d, want %d", i, args[i], tc.args[i])
				}
			}
		})
	}
}
