package script

// StopRow marks a cursor that has no target (halted or never started).
const StopRow uint16 = 0xFFFE

// MaxOffset is the largest sample offset an Event can carry.
const MaxOffset = 0xFFFFFF

type Op uint8

const (
	OpStopScript Op = iota
	OpJump
	OpJumpIfTrue
	OpDelay
	OpSetStepSpeed
	OpJumpMarker
	OpSampleOffset
	OpSampleOffsetAdd
	OpSampleOffsetSub
	OpSetLoopCounter
	OpEvaluateLoopCounter
	OpNoteCut

	OpGTKKeyOff
	OpGTKSetVolume
	OpGTKSetPitch
	OpGTKSetPanning
	OpGTKSetVolumeStep
	OpGTKSetPitchStep
	OpGTKSetPanningStep
	OpGTKSetSpeed
	OpGTKEnableTremor
	OpGTKSetTremorTime
	OpGTKEnableTremolo
	OpGTKEnableVibrato
	OpGTKSetVibratoParams

	OpPumaSetWaveform
	OpPumaVolumeRamp
	OpPumaStopVoice
	OpPumaSetPitch
	OpPumaPitchRamp

	OpMuppSetWaveform

	OpMEDDefineArpeggio
	OpMEDJumpScript
	OpMEDSetEnvelope
	OpMEDSetVolume
	OpMEDSetWaveform
	OpMEDSetVibratoSpeed
	OpMEDSetVibratoDepth
	OpMEDSetVolumeStep
	OpMEDSetPeriodStep
	OpMEDHoldDecay

	OpFTMSetCondition
	OpFTMSetInterrupt
	OpFTMPlaySample
	OpFTMSetPitch
	OpFTMAddPitch
	OpFTMSetDetune
	OpFTMAddDetune
	OpFTMSetVolume
	OpFTMAddVolume
	OpFTMSetSample
	OpFTMSetSampleStart
	OpFTMSetOneshotLength
	OpFTMSetRepeatLength
	OpFTMMoveSample
	OpFTMCloneTrack
	OpFTMStartLFO
	OpFTMLFOAddSub
	OpFTMSetWorkTrack
	OpFTMSetGlobalVolume
	OpFTMSetTempo
	OpFTMSetSpeed
	OpFTMSetPlayPosition

	OpFCSetWaveform
	OpFCSetPitch
	OpFCSetVolume
	OpFCSetVibrato
	OpFCPitchBend
	OpFCVolumeBend

	numOps
)

// NumOps is the number of defined opcodes.
const NumOps = int(numOps)

// Condition kinds for FTMSetCondition.
const (
	CondPitchLess uint8 = iota
	CondPitchGreater
	CondVolumeLess
	CondVolumeGreater
	CondNoteEqual
	CondCommandEqual
)

// Interrupt kinds for FTMSetInterrupt. Each kind is an independent latch.
const (
	InterruptPitch uint8 = iota
	InterruptVolume
	InterruptSample
	InterruptRelease
	InterruptVolumeDown
	InterruptPortamento

	NumInterrupts = 6
)

// Modification types for the FTM sample window opcodes.
const (
	ModSet uint8 = iota
	ModAdd
	ModSub
)

// LFO targets for FTMStartLFO.
const (
	LFOTargetNone uint8 = iota
	LFOTargetPitch
	LFOTargetVolume
	LFOTargetSpeed1
	LFOTargetSpeed2
	LFOTargetSpeed3
	LFOTargetSpeed4
	LFOTargetDepth1
	LFOTargetDepth2
	LFOTargetDepth3
	LFOTargetDepth4
)

// Clone flags for FTMCloneTrack.
const (
	CloneSample uint8 = 1 << iota
	ClonePeriod
	CloneVolume
	CloneScript
)

// LFOSubtract is or'ed into the slot byte of FTMLFOAddSub.
const LFOSubtract uint8 = 0x80

// Event is a single compiled instruction. It is a plain value; Scripts own them.
//
// Operand layout: u8 is the primary byte (Byte0), u16 holds either a word or
// two packed bytes (Byte1 low, Byte2 high). The three bytes together form a
// 24-bit value.
type Event struct {
	op  Op
	u8  uint8
	u16 uint16
}

func (e Event) Op() Op       { return e.op }
func (e Event) Byte0() uint8 { return e.u8 }
func (e Event) Byte1() uint8 { return uint8(e.u16) }
func (e Event) Byte2() uint8 { return uint8(e.u16 >> 8) }
func (e Event) U16() uint16  { return e.u16 }
func (e Event) I16() int16   { return int16(e.u16) }
func (e Event) I8() int8     { return int8(e.u8) }
func (e Event) Flag() bool   { return e.u8 != 0 }
func (e Event) U24() uint32  { return uint32(e.u8) | uint32(e.u16)<<8 }

// IsJumpEvent reports whether the 16-bit operand is a program counter target.
func (e Event) IsJumpEvent() bool {
	switch e.op {
	case OpJump, OpJumpIfTrue, OpEvaluateLoopCounter, OpGTKKeyOff, OpMEDHoldDecay, OpFTMSetInterrupt:
		return true
	}
	return false
}

// JumpTarget returns the program counter target of a jump event, or StopRow.
func (e Event) JumpTarget() uint16 {
	if !e.IsJumpEvent() {
		return StopRow
	}
	return e.u16
}

// WithJumpTarget returns a copy of e with its jump target replaced.
// Non-jump events are returned unchanged.
func (e Event) WithJumpTarget(target uint16) Event {
	if e.IsJumpEvent() {
		e.u16 = target
	}
	return e
}

// Script is an ordered event sequence; the index is the program counter.
type Script []Event

// FindMarker returns the index of JumpMarker(id), or StopRow.
func (s Script) FindMarker(id uint16) uint16 {
	for i, ev := range s {
		if i >= int(StopRow) {
			break
		}
		if ev.op == OpJumpMarker && ev.u16 == id {
			return uint16(i)
		}
	}
	return StopRow
}

// FirstStepSpeed returns the speed of the first SetStepSpeed event in s.
func (s Script) FirstStepSpeed() (uint8, bool) {
	for _, ev := range s {
		if ev.op == OpSetStepSpeed {
			return ev.u8, true
		}
	}
	return 0, false
}
