package script

func pack(lo, hi uint8) uint16 {
	return uint16(lo) | uint16(hi)<<8
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func offset24(op Op, offset uint32) Event {
	offset &= MaxOffset
	return Event{op: op, u8: uint8(offset), u16: uint16(offset >> 8)}
}

func StopScript() Event              { return Event{op: OpStopScript} }
func Jump(target uint16) Event       { return Event{op: OpJump, u16: target} }
func JumpIfTrue(target uint16) Event { return Event{op: OpJumpIfTrue, u16: target} }
func Delay(ticks uint16) Event       { return Event{op: OpDelay, u16: ticks} }
func JumpMarker(id uint16) Event     { return Event{op: OpJumpMarker, u16: id} }
func NoteCut() Event                 { return Event{op: OpNoteCut} }

// SetStepSpeed sets how many ticks one script step lasts. With updateNow the
// running countdown is abandoned and the new speed applies from the next tick.
func SetStepSpeed(speed uint8, updateNow bool) Event {
	return Event{op: OpSetStepSpeed, u8: speed, u16: uint16(boolByte(updateNow))}
}

func SampleOffset(offset uint32) Event    { return offset24(OpSampleOffset, offset) }
func SampleOffsetAdd(offset uint32) Event { return offset24(OpSampleOffsetAdd, offset) }
func SampleOffsetSub(offset uint32) Event { return offset24(OpSampleOffsetSub, offset) }

// SetLoopCounter arms the loop counter. Without force an already armed
// counter is left alone, so jumping back over this event does not re-arm it.
func SetLoopCounter(count uint16, force bool) Event {
	return Event{op: OpSetLoopCounter, u8: boolByte(force), u16: count}
}

func EvaluateLoopCounter(target uint16) Event {
	return Event{op: OpEvaluateLoopCounter, u16: target}
}

// GTK / Graoumf Tracker

func GTKKeyOff(target uint16) Event    { return Event{op: OpGTKKeyOff, u16: target} }
func GTKSetVolume(volume uint16) Event { return Event{op: OpGTKSetVolume, u16: volume} }
func GTKSetPitch(pitch uint16) Event   { return Event{op: OpGTKSetPitch, u16: pitch} }
func GTKSetPanning(pan uint16) Event   { return Event{op: OpGTKSetPanning, u16: pan} }
func GTKSetSpeed(speed uint8) Event    { return Event{op: OpGTKSetSpeed, u8: speed} }
func GTKEnableTremor(on bool) Event    { return Event{op: OpGTKEnableTremor, u8: boolByte(on)} }
func GTKEnableTremolo(on bool) Event   { return Event{op: OpGTKEnableTremolo, u8: boolByte(on)} }
func GTKEnableVibrato(on bool) Event   { return Event{op: OpGTKEnableVibrato, u8: boolByte(on)} }

func GTKSetVolumeStep(step int16) Event {
	return Event{op: OpGTKSetVolumeStep, u16: uint16(step)}
}

func GTKSetPitchStep(step int16) Event {
	return Event{op: OpGTKSetPitchStep, u16: uint16(step)}
}

func GTKSetPanningStep(step int16) Event {
	return Event{op: OpGTKSetPanningStep, u16: uint16(step)}
}

func GTKSetTremorTime(on, off uint8) Event {
	return Event{op: OpGTKSetTremorTime, u8: on, u16: uint16(off)}
}

func GTKSetVibratoParams(width, speed uint8) Event {
	return Event{op: OpGTKSetVibratoParams, u8: width, u16: uint16(speed)}
}

// Puma Tracker

// PumaSetWaveform selects waveform start; a non-zero step cycles through
// count waveforms, advancing by step every tick.
func PumaSetWaveform(start, step, count uint8) Event {
	return Event{op: OpPumaSetWaveform, u8: start, u16: pack(step, count)}
}

func PumaVolumeRamp(start, end, ticks uint8) Event {
	return Event{op: OpPumaVolumeRamp, u8: start, u16: pack(end, ticks)}
}

func PumaStopVoice() Event { return Event{op: OpPumaStopVoice} }

func PumaSetPitch(offset int8, ticks uint8) Event {
	return Event{op: OpPumaSetPitch, u8: uint8(offset), u16: uint16(ticks)}
}

func PumaPitchRamp(start, end int8, ticks uint8) Event {
	return Event{op: OpPumaPitchRamp, u8: uint8(start), u16: pack(uint8(end), ticks)}
}

// Mupp (Digital Mugician)

func MuppSetWaveform(instrument, waveform, volume uint8) Event {
	return Event{op: OpMuppSetWaveform, u8: instrument, u16: pack(waveform, volume)}
}

// MED / OctaMED synth sounds

// MEDDefineArpeggio appends note to the arpeggio table. A non-zero length
// starts a new table of that many notes.
func MEDDefineArpeggio(note uint8, length uint16) Event {
	return Event{op: OpMEDDefineArpeggio, u8: note, u16: length}
}

// MEDJumpScript moves another script of the same instrument to the
// JumpMarker with the given id (a marker id, not an event index).
func MEDJumpScript(scriptIndex uint8, marker uint16) Event {
	return Event{op: OpMEDJumpScript, u8: scriptIndex, u16: marker}
}

func MEDSetEnvelope(envelope uint8, loop, isVolume bool) Event {
	return Event{op: OpMEDSetEnvelope, u8: envelope, u16: pack(boolByte(loop), boolByte(isVolume))}
}

func MEDSetVolume(volume uint8) Event      { return Event{op: OpMEDSetVolume, u8: volume} }
func MEDSetWaveform(waveform uint8) Event  { return Event{op: OpMEDSetWaveform, u8: waveform} }
func MEDSetVibratoSpeed(speed uint8) Event { return Event{op: OpMEDSetVibratoSpeed, u8: speed} }
func MEDSetVibratoDepth(depth uint8) Event { return Event{op: OpMEDSetVibratoDepth, u8: depth} }

func MEDSetVolumeStep(step int16) Event {
	return Event{op: OpMEDSetVolumeStep, u16: uint16(step)}
}

func MEDSetPeriodStep(step int16) Event {
	return Event{op: OpMEDSetPeriodStep, u16: uint16(step)}
}

// MEDHoldDecay holds the note for hold ticks, then jumps to decay.
func MEDHoldDecay(hold uint8, decay uint16) Event {
	return Event{op: OpMEDHoldDecay, u8: hold, u16: decay}
}

// FTM / Face The Music

func FTMSetCondition(kind uint8, value uint16) Event {
	return Event{op: OpFTMSetCondition, u8: kind, u16: value}
}

func FTMSetInterrupt(target uint16, kind uint8) Event {
	return Event{op: OpFTMSetInterrupt, u8: kind, u16: target}
}

func FTMPlaySample() Event              { return Event{op: OpFTMPlaySample} }
func FTMSetPitch(pitch uint16) Event    { return Event{op: OpFTMSetPitch, u16: pitch} }
func FTMAddPitch(amount int16) Event    { return Event{op: OpFTMAddPitch, u16: uint16(amount)} }
func FTMSetDetune(detune uint16) Event  { return Event{op: OpFTMSetDetune, u16: detune} }
func FTMAddDetune(amount int16) Event   { return Event{op: OpFTMAddDetune, u16: uint16(amount)} }
func FTMSetVolume(volume uint8) Event   { return Event{op: OpFTMSetVolume, u8: volume} }
func FTMAddVolume(amount int16) Event   { return Event{op: OpFTMAddVolume, u16: uint16(amount)} }
func FTMSetSample(sample uint8) Event   { return Event{op: OpFTMSetSample, u8: sample} }
func FTMSetGlobalVolume(v uint16) Event { return Event{op: OpFTMSetGlobalVolume, u16: v} }
func FTMSetTempo(tempo uint16) Event    { return Event{op: OpFTMSetTempo, u16: tempo} }
func FTMSetSpeed(speed uint16) Event    { return Event{op: OpFTMSetSpeed, u16: speed} }

func FTMSetSampleStart(value uint16, mod uint8) Event {
	return Event{op: OpFTMSetSampleStart, u8: mod, u16: value}
}

func FTMSetOneshotLength(value uint16, mod uint8) Event {
	return Event{op: OpFTMSetOneshotLength, u8: mod, u16: value}
}

func FTMSetRepeatLength(value uint16, mod uint8) Event {
	return Event{op: OpFTMSetRepeatLength, u8: mod, u16: value}
}

// FTMMoveSample shifts the whole sample window (start and loop) by value.
func FTMMoveSample(value uint16, mod uint8) Event {
	return Event{op: OpFTMMoveSample, u8: mod, u16: value}
}

func FTMCloneTrack(track, flags uint8) Event {
	return Event{op: OpFTMCloneTrack, u8: track, u16: uint16(flags)}
}

func FTMStartLFO(slot, target, waveform uint8) Event {
	return Event{op: OpFTMStartLFO, u8: slot, u16: pack(target, waveform)}
}

// FTMLFOAddSub adds speed and depth to an LFO slot; or LFOSubtract into slot
// to subtract instead.
func FTMLFOAddSub(slot, speed, depth uint8) Event {
	return Event{op: OpFTMLFOAddSub, u8: slot, u16: pack(speed, depth)}
}

// FTMSetWorkTrack redirects channel-addressing opcodes to another track.
// Track 0xFF with relative=false selects the script's own channel.
func FTMSetWorkTrack(track uint8, relative bool) Event {
	return Event{op: OpFTMSetWorkTrack, u8: track, u16: uint16(boolByte(relative))}
}

func FTMSetPlayPosition(pattern uint16, row uint8) Event {
	return Event{op: OpFTMSetPlayPosition, u8: row, u16: pattern}
}

// Future Composer

func FCSetWaveform(waveform uint8) Event { return Event{op: OpFCSetWaveform, u8: waveform} }
func FCSetVolume(volume uint8) Event     { return Event{op: OpFCSetVolume, u8: volume} }

// FCSetPitch transposes by value semitones, or plays a fixed note when fixed is set.
func FCSetPitch(value int8, fixed bool) Event {
	return Event{op: OpFCSetPitch, u8: uint8(value), u16: uint16(boolByte(fixed))}
}

func FCSetVibrato(speed, depth, delay uint8) Event {
	return Event{op: OpFCSetVibrato, u8: speed, u16: pack(depth, delay)}
}

func FCPitchBend(speed int8, ticks uint8) Event {
	return Event{op: OpFCPitchBend, u8: uint8(speed), u16: uint16(ticks)}
}

func FCVolumeBend(speed int8, ticks uint8) Event {
	return Event{op: OpFCVolumeBend, u8: uint8(speed), u16: uint16(ticks)}
}
