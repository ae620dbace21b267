package synth

import (
	"fmt"

	"github.com/cbegin/trackersynth-go/internal/lfo"
	"github.com/cbegin/trackersynth-go/internal/script"
)

const (
	ftmTempoBase  = 1773447
	ftmTempoMin   = 32
	ftmTempoMax   = 999
	muppWaveBytes = 32
)

// EvaluateEvent executes ev for the script playing on channel. It returns
// true when no further events should be consumed this tick.
//
// states is the collection the State belongs to; opcodes addressing other
// scripts or tracks index into it and ignore indices that are out of range.
// FTM_CloneTrack and detune sharing read states[i] as the State playing on
// channel i, so they only reach other scripts in a per-channel collection
// such as GlobalScriptState.
func (s *State) EvaluateEvent(ev script.Event, play *PlayState, channel int, sf SoundFile, states []State) bool {
	if s.realChannel < 0 || s.realChannel >= len(play.Channels) {
		s.resolveChannel(channel, len(play.Channels))
	}
	var detached Channel
	chn := &detached
	if s.realChannel >= 0 && s.realChannel < len(play.Channels) {
		chn = &play.Channels[s.realChannel]
	}

	switch ev.Op() {
	// Control flow
	case script.OpStopScript:
		s.Stop()
		return true
	case script.OpJump:
		s.nextRow = ev.U16()
	case script.OpJumpIfTrue:
		if s.flags&flagCondition != 0 {
			s.nextRow = ev.U16()
		}
	case script.OpDelay:
		s.ticksRemain = ev.U16()
		return true
	case script.OpSetStepSpeed:
		s.stepSpeed = max(ev.Byte0(), 1)
		if ev.Byte1() != 0 {
			s.stepsRemain = 0
		}
	case script.OpJumpMarker:
	case script.OpSetLoopCounter:
		if s.loopCount == 0 || ev.Flag() {
			s.loopCount = ev.U16()
		}
	case script.OpEvaluateLoopCounter:
		if s.loopCount > 1 {
			s.nextRow = ev.U16()
		}
		if s.loopCount > 0 {
			s.loopCount--
		}

	// Sample control
	case script.OpSampleOffset:
		chn.Position = clampOffset(int64(ev.U24()), chn.Length)
	case script.OpSampleOffsetAdd:
		chn.Position = clampOffset(int64(chn.Position)+int64(ev.U24()), chn.Length)
	case script.OpSampleOffsetSub:
		chn.Position = clampOffset(int64(chn.Position)-int64(ev.U24()), chn.Length)
	case script.OpNoteCut:
		chn.Volume = 0

	// GTK
	case script.OpGTKKeyOff:
		s.gtkKeyOffTarget = ev.U16()
		s.flags |= flagGTKKeyOffArmed
	case script.OpGTKSetVolume:
		s.setVolumeFactor(int(ev.U16()))
	case script.OpGTKSetPitch:
		s.setGTKPitch(int(ev.U16()))
	case script.OpGTKSetPanning:
		s.setPanning(int(ev.U16()))
	case script.OpGTKSetVolumeStep:
		s.gtkVolumeStep = int(ev.I16())
	case script.OpGTKSetPitchStep:
		s.gtkPitchStep = int(ev.I16())
	case script.OpGTKSetPanningStep:
		s.gtkPanStep = int(ev.I16())
	case script.OpGTKSetSpeed:
		s.gtkSpeed = max(int(ev.Byte0()), 1)
		s.gtkSpeedCount = 0
	case script.OpGTKEnableTremor:
		s.setFlag(flagGTKTremor, ev.Flag())
		s.gtkTremorPos = 0
		s.gtkTremorMuted = false
	case script.OpGTKSetTremorTime:
		s.gtkTremorOn = max(int(ev.Byte0()), 1)
		s.gtkTremorOff = max(int(ev.Byte1()), 1)
	case script.OpGTKEnableTremolo:
		s.setFlag(flagGTKTremolo, ev.Flag())
		if !ev.Flag() {
			s.gtkTremoloOut = 0
		}
	case script.OpGTKEnableVibrato:
		s.setFlag(flagGTKVibrato, ev.Flag())
		if !ev.Flag() {
			s.gtkVibratoOut = 0
		}
	case script.OpGTKSetVibratoParams:
		s.gtkVibrato.Set(int(ev.Byte0()), int(ev.Byte1()), lfo.WaveSine)
		s.gtkTremolo.Set(int(ev.Byte0()), int(ev.Byte1()), lfo.WaveSine)

	// Puma
	case script.OpPumaSetWaveform:
		s.pumaWaveStart = ev.Byte0()
		s.pumaWaveStep = ev.Byte1()
		s.pumaWaveCount = ev.Byte2()
		s.pumaWavePos = 0
		swapSample(chn, int(ev.Byte0()), sf)
	case script.OpPumaVolumeRamp:
		total := ev.Byte2()
		if total == 0 {
			s.setVolumeFactor(int(ev.Byte1()) * 256)
			return true
		}
		s.setVolumeFactor(int(ev.Byte0()) * 256)
		s.ticksRemain = uint16(total)
		return true
	case script.OpPumaStopVoice:
		s.setVolumeFactor(0)
		chn.Flags |= ChnMute
		s.Stop()
		return true
	case script.OpPumaSetPitch:
		s.periodAdd = int(ev.I8())
		if ticks := ev.Byte1(); ticks > 0 {
			s.ticksRemain = uint16(ticks)
			return true
		}
	case script.OpPumaPitchRamp:
		s.periodAdd = int(ev.I8())
		if ticks := ev.Byte2(); ticks > 0 {
			s.ticksRemain = uint16(ticks)
		} else {
			s.periodAdd = int(int8(ev.Byte1()))
		}
		return true

	// Mupp
	case script.OpMuppSetWaveform:
		swapSample(chn, int(ev.Byte0()), sf)
		start := uint32(ev.Byte1()) * muppWaveBytes
		if chn.PendingSample == 0 && start+muppWaveBytes <= chn.Length {
			chn.LoopStart = start
			chn.LoopEnd = start + muppWaveBytes
			chn.Flags |= ChnLoop
		}
		s.setVolumeFactor(int(ev.Byte2()) * 256)

	// MED
	case script.OpMEDDefineArpeggio:
		if ev.U16() != 0 {
			s.medArpLen = 0
			s.medArpPos = 0
		}
		if s.medArpLen < maxArpeggio {
			s.medArpeggio[s.medArpLen] = ev.Byte0()
			s.medArpLen++
		}
	case script.OpMEDJumpScript:
		if idx := int(ev.Byte0()); idx < len(states) {
			states[idx].medPendingMark = ev.U16()
			states[idx].flags |= flagMEDMarkerPending
		}
	case script.OpMEDSetEnvelope:
		s.medEnvelope = int(ev.Byte0())
		s.medEnvPos = 0
		s.flags |= flagMEDEnvelope
		s.setFlag(flagMEDEnvelopeLoop, ev.Byte1() != 0)
		s.setFlag(flagMEDEnvelopeVolume, ev.Byte2() != 0)
		if ev.Byte2() == 0 {
			s.medEnvPeriod = 0
		}
	case script.OpMEDSetVolume:
		s.setVolumeFactor(int(ev.Byte0()) * 256)
	case script.OpMEDSetWaveform:
		swapSample(chn, int(ev.Byte0()), sf)
	case script.OpMEDSetVibratoSpeed:
		s.medVibrato.Set(s.medVibrato.Depth, int(ev.Byte0()), lfo.WaveSine)
	case script.OpMEDSetVibratoDepth:
		s.medVibrato.Set(int(ev.Byte0()), s.medVibrato.Speed, lfo.WaveSine)
	case script.OpMEDSetVolumeStep:
		s.medVolumeStep = int(ev.I16())
	case script.OpMEDSetPeriodStep:
		s.medPeriodStep = int(ev.I16())
	case script.OpMEDHoldDecay:
		s.medHold = int(ev.Byte0())
		s.medDecayTarget = ev.U16()
		s.flags |= flagMEDHoldArmed

	// FTM
	case script.OpFTMSetCondition:
		s.setFlag(flagCondition, evaluateCondition(chn, ev.Byte0(), int(ev.U16())))
	case script.OpFTMSetInterrupt:
		if kind := ev.Byte0(); kind < script.NumInterrupts {
			s.interrupts[kind] = ev.U16()
			s.interruptOn |= 1 << kind
		}
	case script.OpFTMPlaySample:
		chn.LoadSample(chn.Sample, sf)
		chn.Position = chn.SampleStart
		chn.Flags &^= ChnKeyOff | ChnMute
	case script.OpFTMSetPitch:
		chn.Period = s.clampPeriod(int(ev.U16()), sf)
	case script.OpFTMAddPitch:
		chn.Period = s.clampPeriod(chn.Period+int(ev.I16()), sf)
	case script.OpFTMSetDetune:
		s.shareDetune(int(ev.I16()), false, states)
	case script.OpFTMAddDetune:
		s.shareDetune(int(ev.I16()), true, states)
	case script.OpFTMSetVolume:
		chn.Volume = clampInt(int(ev.Byte0())*4, 0, 256)
	case script.OpFTMAddVolume:
		chn.Volume = clampInt(chn.Volume+int(ev.I16())*4, 0, 256)
	case script.OpFTMSetSample:
		swapSample(chn, int(ev.Byte0()), sf)
	case script.OpFTMSetSampleStart:
		start, oneshot, repeat := sampleWindow(chn)
		newStart := modify(start, ev.U16(), ev.Byte0())
		oneshot = max(oneshot-(newStart-start), 0)
		setSampleWindow(chn, newStart, oneshot, repeat)
	case script.OpFTMSetOneshotLength:
		start, oneshot, repeat := sampleWindow(chn)
		setSampleWindow(chn, start, modify(oneshot, ev.U16(), ev.Byte0()), repeat)
	case script.OpFTMSetRepeatLength:
		start, oneshot, repeat := sampleWindow(chn)
		setSampleWindow(chn, start, oneshot, modify(repeat, ev.U16(), ev.Byte0()))
	case script.OpFTMMoveSample:
		start, oneshot, repeat := sampleWindow(chn)
		setSampleWindow(chn, modify(start, ev.U16(), ev.Byte0()), oneshot, repeat)
	case script.OpFTMCloneTrack:
		s.cloneTrack(play, int(ev.Byte0()), ev.Byte1(), states)
	case script.OpFTMStartLFO:
		l := &s.lfos[ev.Byte0()%numLFOs]
		l.target = ev.Byte1()
		l.osc.Set(l.depth, l.speed, int(ev.Byte2())%lfo.NumWaveforms)
		l.osc.Reset()
	case script.OpFTMLFOAddSub:
		l := &s.lfos[ev.Byte0()%numLFOs]
		speed, depth := int(ev.Byte1()), int(ev.Byte2())
		if ev.Byte0()&script.LFOSubtract != 0 {
			speed, depth = -speed, -depth
		}
		l.speed = clampInt(l.speed+speed, 0, lfoParamMax)
		l.depth = clampInt(l.depth+depth, 0, lfoParamMax)
	case script.OpFTMSetWorkTrack:
		relative := ev.Byte1() != 0
		switch {
		case ev.Byte0() == 0xFF && !relative:
			s.workTrack = workTrackSelf
		case relative:
			s.workTrack = int(ev.I8())
		default:
			s.workTrack = int(ev.Byte0())
		}
		s.setFlag(flagWorkTrackRelative, relative)
		s.resolveChannel(channel, len(play.Channels))
	case script.OpFTMSetGlobalVolume:
		play.GlobalVolume = min(int(ev.U16())*4, 256)
	case script.OpFTMSetTempo:
		if raw := int(ev.U16()); raw != 0 {
			play.Tempo = clampInt(ftmTempoBase/raw, ftmTempoMin, ftmTempoMax)
		}
	case script.OpFTMSetSpeed:
		play.Speed = max(int(ev.U16()), 1)
	case script.OpFTMSetPlayPosition:
		if order, ok := sf.FindOrder(int(ev.U16()), int(ev.Byte0())); ok {
			play.NextOrder = order
			play.NextRow = int(ev.Byte0())
			play.PositionJump = true
		}

	// Future Composer
	case script.OpFCSetWaveform:
		swapSample(chn, int(ev.Byte0()), sf)
	case script.OpFCSetPitch:
		s.fcPitch = int(ev.I8())
		s.setFlag(flagFCFixedNote, ev.Byte1() != 0)
	case script.OpFCSetVolume:
		s.setVolumeFactor(int(ev.Byte0()) * 256)
	case script.OpFCSetVibrato:
		s.fcVibrato.Set(int(ev.Byte1()), int(ev.Byte0()), lfo.WaveTriangle)
		s.fcVibrato.Reset()
		s.fcVibDelay = int(ev.Byte2())
		s.fcVibratoOut = 0
	case script.OpFCPitchBend:
		s.fcBendSpeed = int(ev.I8())
		s.fcBendTicks = int(ev.Byte1())
	case script.OpFCVolumeBend:
		s.fcVolumeSpeed = int(ev.I8())
		s.fcVolumeTicks = int(ev.Byte1())

	default:
		panic(fmt.Sprintf("synth: unknown opcode %d", ev.Op()))
	}
	return false
}

func clampOffset(v int64, length uint32) uint32 {
	if v < 0 {
		return 0
	}
	if v > int64(length) {
		return length
	}
	return uint32(v)
}

// swapSample switches the channel to another sample, immediately when the
// module asks for it or the channel is not looping, otherwise at loop end.
func swapSample(chn *Channel, sample int, sf SoundFile) {
	if sample < 1 || sample > sf.NumSamples() {
		return
	}
	if sf.Flags()&ImmediateSampleSwap != 0 || chn.Flags&ChnLoop == 0 {
		chn.LoadSample(sample, sf)
		chn.Position = min(chn.Position, chn.Length)
		return
	}
	chn.PendingSample = sample
}

// LoadSample switches the channel to sample and reloads its length and loop
// window from sf. Indices outside the sample bank are ignored.
func (c *Channel) LoadSample(sample int, sf SoundFile) bool {
	if sample < 1 || sample > sf.NumSamples() {
		return false
	}
	info := sf.Sample(sample)
	c.Sample = sample
	c.PendingSample = 0
	c.Length = info.Length
	c.SampleStart = 0
	c.LoopStart = min(info.LoopStart, info.Length)
	c.LoopEnd = clampOffset(int64(info.LoopEnd), info.Length)
	if info.Loop && c.LoopEnd > c.LoopStart {
		c.Flags |= ChnLoop
	} else {
		c.Flags &^= ChnLoop
	}
	return true
}

// sampleWindow splits the channel's playback range into the start offset,
// the part played once and the repeated part.
func sampleWindow(chn *Channel) (start, oneshot, repeat int) {
	start = int(chn.SampleStart)
	if chn.Flags&ChnLoop == 0 {
		return start, int(chn.Length) - start, 0
	}
	return start, int(chn.LoopStart) - start, int(chn.LoopEnd) - int(chn.LoopStart)
}

func setSampleWindow(chn *Channel, start, oneshot, repeat int) {
	length := int(chn.Length)
	start = clampInt(start, 0, length)
	loopStart := clampInt(start+max(oneshot, 0), start, length)
	loopEnd := clampInt(loopStart+max(repeat, 0), loopStart, length)
	chn.SampleStart = uint32(start)
	chn.LoopStart = uint32(loopStart)
	chn.LoopEnd = uint32(loopEnd)
	if loopEnd > loopStart {
		chn.Flags |= ChnLoop
	} else {
		chn.Flags &^= ChnLoop
	}
	chn.Position = clampOffset(int64(chn.Position), chn.Length)
}

func modify(current int, value uint16, mod uint8) int {
	switch mod {
	case script.ModAdd:
		return current + int(value)
	case script.ModSub:
		return current - int(value)
	}
	return int(value)
}

func evaluateCondition(chn *Channel, kind uint8, value int) bool {
	switch kind {
	case script.CondPitchLess:
		return chn.Period < value
	case script.CondPitchGreater:
		return chn.Period > value
	case script.CondVolumeLess:
		return chn.Volume < value
	case script.CondVolumeGreater:
		return chn.Volume > value
	case script.CondNoteEqual:
		return chn.Note == value
	case script.CondCommandEqual:
		return int(chn.Row.Kind) == value
	}
	return false
}

func (s *State) clampPeriod(period int, sf SoundFile) int {
	lo, hi := sf.PeriodRange()
	if hi < lo {
		return max(period, 0)
	}
	return clampInt(period, lo, hi)
}

// shareDetune updates this State's detune and that of the paired channel's
// State when it is playing on that channel.
func (s *State) shareDetune(value int, add bool, states []State) {
	apply := func(st *State) {
		if add {
			st.detune += value
		} else {
			st.detune = value
		}
		st.detune = clampInt(st.detune, -0x8000, 0x7FFF)
	}
	apply(s)
	pair := s.realChannel ^ 1
	if pair < len(states) && &states[pair] != s && states[pair].realChannel == pair {
		apply(&states[pair])
	}
}

func (s *State) cloneTrack(play *PlayState, track int, flags uint8, states []State) {
	if len(play.Channels) == 0 {
		return
	}
	track = clampInt(track, 0, len(play.Channels)-1)
	src := play.Channels[track]
	dst := &play.Channels[s.realChannel]
	if flags&script.CloneSample != 0 {
		dst.Sample = src.Sample
		dst.PendingSample = src.PendingSample
		dst.Position = src.Position
		dst.Length = src.Length
		dst.SampleStart = src.SampleStart
		dst.LoopStart = src.LoopStart
		dst.LoopEnd = src.LoopEnd
		dst.Flags = dst.Flags&^ChnLoop | src.Flags&ChnLoop
	}
	if flags&script.ClonePeriod != 0 {
		dst.Period = src.Period
	}
	if flags&script.CloneVolume != 0 {
		dst.Volume = src.Volume
	}
	if flags&script.CloneScript != 0 && track < len(states) && &states[track] != s {
		realChannel, workTrack := s.realChannel, s.workTrack
		relative := s.flags & flagWorkTrackRelative
		*s = states[track]
		s.realChannel, s.workTrack = realChannel, workTrack
		s.flags = s.flags&^flagWorkTrackRelative | relative
	}
}
