package script

import (
	"strconv"
	"strings"
)

// Slot names the operand bits an argument is stored in.
type Slot uint8

const (
	SlotByte0 Slot = iota
	SlotByte1
	SlotByte2
	SlotWord
	SlotTriple
)

// Bits returns the width of the slot.
func (s Slot) Bits() uint {
	switch s {
	case SlotWord:
		return 16
	case SlotTriple:
		return 24
	}
	return 8
}

type ArgKind uint8

const (
	ArgUint ArgKind = iota
	ArgInt
	ArgBool
	ArgTarget
)

type Operand struct {
	Name string
	Kind ArgKind
	Slot Slot
}

type opInfo struct {
	name     string
	operands []Operand
}

func u8(name string, slot Slot) Operand   { return Operand{Name: name, Kind: ArgUint, Slot: slot} }
func i8(name string, slot Slot) Operand   { return Operand{Name: name, Kind: ArgInt, Slot: slot} }
func flag(name string, slot Slot) Operand { return Operand{Name: name, Kind: ArgBool, Slot: slot} }
func word(name string) Operand            { return Operand{Name: name, Kind: ArgUint, Slot: SlotWord} }
func sword(name string) Operand           { return Operand{Name: name, Kind: ArgInt, Slot: SlotWord} }
func target() Operand                     { return Operand{Name: "target", Kind: ArgTarget, Slot: SlotWord} }
func triple(name string) Operand          { return Operand{Name: name, Kind: ArgUint, Slot: SlotTriple} }

var opTable = [numOps]opInfo{
	OpStopScript:          {"StopScript", nil},
	OpJump:                {"Jump", []Operand{target()}},
	OpJumpIfTrue:          {"JumpIfTrue", []Operand{target()}},
	OpDelay:               {"Delay", []Operand{word("ticks")}},
	OpSetStepSpeed:        {"SetStepSpeed", []Operand{u8("speed", SlotByte0), flag("updateNow", SlotByte1)}},
	OpJumpMarker:          {"JumpMarker", []Operand{word("id")}},
	OpSampleOffset:        {"SampleOffset", []Operand{triple("offset")}},
	OpSampleOffsetAdd:     {"SampleOffsetAdd", []Operand{triple("offset")}},
	OpSampleOffsetSub:     {"SampleOffsetSub", []Operand{triple("offset")}},
	OpSetLoopCounter:      {"SetLoopCounter", []Operand{word("count"), flag("force", SlotByte0)}},
	OpEvaluateLoopCounter: {"EvaluateLoopCounter", []Operand{target()}},
	OpNoteCut:             {"NoteCut", nil},

	OpGTKKeyOff:           {"GTK_KeyOff", []Operand{target()}},
	OpGTKSetVolume:        {"GTK_SetVolume", []Operand{word("volume")}},
	OpGTKSetPitch:         {"GTK_SetPitch", []Operand{word("pitch")}},
	OpGTKSetPanning:       {"GTK_SetPanning", []Operand{word("panning")}},
	OpGTKSetVolumeStep:    {"GTK_SetVolumeStep", []Operand{sword("step")}},
	OpGTKSetPitchStep:     {"GTK_SetPitchStep", []Operand{sword("step")}},
	OpGTKSetPanningStep:   {"GTK_SetPanningStep", []Operand{sword("step")}},
	OpGTKSetSpeed:         {"GTK_SetSpeed", []Operand{u8("speed", SlotByte0)}},
	OpGTKEnableTremor:     {"GTK_EnableTremor", []Operand{flag("enable", SlotByte0)}},
	OpGTKSetTremorTime:    {"GTK_SetTremorTime", []Operand{u8("on", SlotByte0), u8("off", SlotByte1)}},
	OpGTKEnableTremolo:    {"GTK_EnableTremolo", []Operand{flag("enable", SlotByte0)}},
	OpGTKEnableVibrato:    {"GTK_EnableVibrato", []Operand{flag("enable", SlotByte0)}},
	OpGTKSetVibratoParams: {"GTK_SetVibratoParams", []Operand{u8("width", SlotByte0), u8("speed", SlotByte1)}},

	OpPumaSetWaveform: {"Puma_SetWaveform", []Operand{u8("waveform", SlotByte0), u8("step", SlotByte1), u8("count", SlotByte2)}},
	OpPumaVolumeRamp:  {"Puma_VolumeRamp", []Operand{u8("start", SlotByte0), u8("end", SlotByte1), u8("ticks", SlotByte2)}},
	OpPumaStopVoice:   {"Puma_StopVoice", nil},
	OpPumaSetPitch:    {"Puma_SetPitch", []Operand{i8("offset", SlotByte0), u8("ticks", SlotByte1)}},
	OpPumaPitchRamp:   {"Puma_PitchRamp", []Operand{i8("start", SlotByte0), i8("end", SlotByte1), u8("ticks", SlotByte2)}},

	OpMuppSetWaveform: {"Mupp_SetWaveform", []Operand{u8("instrument", SlotByte0), u8("waveform", SlotByte1), u8("volume", SlotByte2)}},

	OpMEDDefineArpeggio:  {"MED_DefineArpeggio", []Operand{u8("note", SlotByte0), word("length")}},
	OpMEDJumpScript:      {"MED_JumpScript", []Operand{u8("script", SlotByte0), word("marker")}},
	OpMEDSetEnvelope:     {"MED_SetEnvelope", []Operand{u8("envelope", SlotByte0), flag("loop", SlotByte1), flag("isVolume", SlotByte2)}},
	OpMEDSetVolume:       {"MED_SetVolume", []Operand{u8("volume", SlotByte0)}},
	OpMEDSetWaveform:     {"MED_SetWaveform", []Operand{u8("waveform", SlotByte0)}},
	OpMEDSetVibratoSpeed: {"MED_SetVibratoSpeed", []Operand{u8("speed", SlotByte0)}},
	OpMEDSetVibratoDepth: {"MED_SetVibratoDepth", []Operand{u8("depth", SlotByte0)}},
	OpMEDSetVolumeStep:   {"MED_SetVolumeStep", []Operand{sword("step")}},
	OpMEDSetPeriodStep:   {"MED_SetPeriodStep", []Operand{sword("step")}},
	OpMEDHoldDecay:       {"MED_HoldDecay", []Operand{u8("hold", SlotByte0), target()}},

	OpFTMSetCondition:     {"FTM_SetCondition", []Operand{u8("kind", SlotByte0), word("value")}},
	OpFTMSetInterrupt:     {"FTM_SetInterrupt", []Operand{target(), u8("kind", SlotByte0)}},
	OpFTMPlaySample:       {"FTM_PlaySample", nil},
	OpFTMSetPitch:         {"FTM_SetPitch", []Operand{word("pitch")}},
	OpFTMAddPitch:         {"FTM_AddPitch", []Operand{sword("amount")}},
	OpFTMSetDetune:        {"FTM_SetDetune", []Operand{word("detune")}},
	OpFTMAddDetune:        {"FTM_AddDetune", []Operand{sword("amount")}},
	OpFTMSetVolume:        {"FTM_SetVolume", []Operand{u8("volume", SlotByte0)}},
	OpFTMAddVolume:        {"FTM_AddVolume", []Operand{sword("amount")}},
	OpFTMSetSample:        {"FTM_SetSample", []Operand{u8("sample", SlotByte0)}},
	OpFTMSetSampleStart:   {"FTM_SetSampleStart", []Operand{word("value"), u8("mod", SlotByte0)}},
	OpFTMSetOneshotLength: {"FTM_SetOneshotLength", []Operand{word("value"), u8("mod", SlotByte0)}},
	OpFTMSetRepeatLength:  {"FTM_SetRepeatLength", []Operand{word("value"), u8("mod", SlotByte0)}},
	OpFTMMoveSample:       {"FTM_MoveSample", []Operand{word("value"), u8("mod", SlotByte0)}},
	OpFTMCloneTrack:       {"FTM_CloneTrack", []Operand{u8("track", SlotByte0), u8("flags", SlotByte1)}},
	OpFTMStartLFO:         {"FTM_StartLFO", []Operand{u8("slot", SlotByte0), u8("target", SlotByte1), u8("waveform", SlotByte2)}},
	OpFTMLFOAddSub:        {"FTM_LFOAddSub", []Operand{u8("slot", SlotByte0), u8("speed", SlotByte1), u8("depth", SlotByte2)}},
	OpFTMSetWorkTrack:     {"FTM_SetWorkTrack", []Operand{u8("track", SlotByte0), flag("relative", SlotByte1)}},
	OpFTMSetGlobalVolume:  {"FTM_SetGlobalVolume", []Operand{word("volume")}},
	OpFTMSetTempo:         {"FTM_SetTempo", []Operand{word("tempo")}},
	OpFTMSetSpeed:         {"FTM_SetSpeed", []Operand{word("speed")}},
	OpFTMSetPlayPosition:  {"FTM_SetPlayPosition", []Operand{word("pattern"), u8("row", SlotByte0)}},

	OpFCSetWaveform: {"FC_SetWaveform", []Operand{u8("waveform", SlotByte0)}},
	OpFCSetPitch:    {"FC_SetPitch", []Operand{i8("value", SlotByte0), flag("fixed", SlotByte1)}},
	OpFCSetVolume:   {"FC_SetVolume", []Operand{u8("volume", SlotByte0)}},
	OpFCSetVibrato:  {"FC_SetVibrato", []Operand{u8("speed", SlotByte0), u8("depth", SlotByte1), u8("delay", SlotByte2)}},
	OpFCPitchBend:   {"FC_PitchBend", []Operand{i8("speed", SlotByte0), u8("ticks", SlotByte1)}},
	OpFCVolumeBend:  {"FC_VolumeBend", []Operand{i8("speed", SlotByte0), u8("ticks", SlotByte1)}},
}

var opByName = func() map[string]Op {
	m := make(map[string]Op, len(opTable))
	for i, info := range opTable {
		m[strings.ToLower(info.name)] = Op(i)
	}
	return m
}()

func (op Op) String() string {
	if int(op) >= len(opTable) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opTable[op].name
}

// Operands describes the arguments of op in source order.
func (op Op) Operands() []Operand {
	if int(op) >= len(opTable) {
		return nil
	}
	return opTable[op].operands
}

// ParseOp looks up an opcode by name, ignoring case.
func ParseOp(name string) (Op, bool) {
	op, ok := opByName[strings.ToLower(name)]
	return op, ok
}

// Encode builds an event from decoded arguments, one per operand of op.
// Values are truncated to the width of their slot; missing arguments are zero.
func Encode(op Op, args []int) Event {
	ev := Event{op: op}
	for i, operand := range op.Operands() {
		v := 0
		if i < len(args) {
			v = args[i]
		}
		if operand.Kind == ArgBool && v != 0 {
			v = 1
		}
		switch operand.Slot {
		case SlotByte0:
			ev.u8 = uint8(v)
		case SlotByte1:
			ev.u16 = ev.u16&0xFF00 | uint16(uint8(v))
		case SlotByte2:
			ev.u16 = ev.u16&0x00FF | uint16(uint8(v))<<8
		case SlotWord:
			ev.u16 = uint16(v)
		case SlotTriple:
			v &= MaxOffset
			ev.u8 = uint8(v)
			ev.u16 = uint16(v >> 8)
		}
	}
	return ev
}

// Args decodes the operands of e in source order.
func (e Event) Args() []int {
	operands := e.op.Operands()
	if len(operands) == 0 {
		return nil
	}
	out := make([]int, len(operands))
	for i, operand := range operands {
		var raw uint32
		switch operand.Slot {
		case SlotByte0:
			raw = uint32(e.Byte0())
		case SlotByte1:
			raw = uint32(e.Byte1())
		case SlotByte2:
			raw = uint32(e.Byte2())
		case SlotWord:
			raw = uint32(e.u16)
		case SlotTriple:
			raw = e.U24()
		}
		v := int(raw)
		if operand.Kind == ArgInt {
			switch operand.Slot.Bits() {
			case 8:
				v = int(int8(raw))
			case 16:
				v = int(int16(raw))
			}
		}
		out[i] = v
	}
	return out
}
