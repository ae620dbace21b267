package synth

import "github.com/cbegin/trackersynth-go/internal/script"

// NextTick runs one tick of the script playing on channel. Call it once per
// channel per tick, before ApplyChannelState.
func (s *State) NextTick(sc script.Script, play *PlayState, channel int, sf SoundFile, states []State) {
	if channel < 0 || channel >= len(play.Channels) {
		return
	}
	s.resolveChannel(channel, len(play.Channels))
	s.housekeeping(sc, play, &play.Channels[s.realChannel], sf)

	if !s.halted() {
		boundary := s.stepsRemain == 0
		if boundary {
			s.stepsRemain = s.stepSpeed - 1
		} else {
			s.stepsRemain--
		}
		switch {
		case s.ticksRemain > 0:
			if int(s.currentRow) < len(sc) {
				s.EvaluateRunningEvent(sc[s.currentRow])
			}
			s.ticksRemain--
		case boundary:
			s.advance(sc, play, channel, sf, states)
		}
	}

	// The work track may have moved during dispatch.
	s.accumulate(&play.Channels[s.realChannel], sf)
}

func (s *State) advance(sc script.Script, play *PlayState, channel int, sf SoundFile, states []State) {
	jumps := 0
	for {
		s.currentRow = s.nextRow
		if int(s.currentRow) >= len(sc) {
			s.Stop()
			return
		}
		s.nextRow = s.currentRow + 1
		ev := sc[s.currentRow]
		if s.EvaluateEvent(ev, play, channel, sf, states) {
			return
		}
		if ev.IsJumpEvent() {
			jumps++
			if jumps >= maxJumpsPerTick {
				return
			}
		}
	}
}

func (s *State) housekeeping(sc script.Script, play *PlayState, chn *Channel, sf SoundFile) {
	if s.flags&flagGTKKeyOffArmed != 0 && chn.Released() {
		s.flags &^= flagGTKKeyOffArmed
		s.JumpTo(s.gtkKeyOffTarget)
	}

	if s.flags&flagMEDMarkerPending != 0 {
		s.flags &^= flagMEDMarkerPending
		if row := sc.FindMarker(s.medPendingMark); row != script.StopRow {
			s.JumpTo(row)
		}
	}

	if s.pumaWaveStep != 0 && s.pumaWaveCount > 1 {
		s.pumaWavePos++
		if s.pumaWavePos >= s.pumaWaveCount {
			s.pumaWavePos = 0
		}
		swapSample(chn, int(s.pumaWaveStart)+int(s.pumaWavePos)*int(s.pumaWaveStep), sf)
	}

	if s.flags&flagMEDHoldArmed != 0 {
		s.medHold--
		if s.medHold <= 0 || chn.Released() {
			s.flags &^= flagMEDHoldArmed
			s.JumpTo(s.medDecayTarget)
		}
	}

	if s.interruptOn != 0 {
		fired := false
		for kind := uint8(0); kind < script.NumInterrupts; kind++ {
			bit := uint8(1) << kind
			if s.interruptOn&bit == 0 || !interruptFired(kind, play, chn) {
				continue
			}
			s.interruptOn &^= bit
			if !fired {
				s.JumpTo(s.interrupts[kind])
				fired = true
			}
		}
	}
}

func interruptFired(kind uint8, play *PlayState, chn *Channel) bool {
	rowStart := play.Tick == 0
	switch kind {
	case script.InterruptPitch:
		return chn.NewNote
	case script.InterruptVolume:
		return rowStart && chn.Row.Kind == CommandVolume
	case script.InterruptSample:
		return chn.NewSample
	case script.InterruptRelease:
		return chn.Released()
	case script.InterruptVolumeDown:
		return rowStart && chn.Row.Kind == CommandVolumeDown
	case script.InterruptPortamento:
		return rowStart && chn.Row.Kind == CommandPortamento
	}
	return false
}

// accumulate advances the modulators that run whether or not the program
// counter moved this tick.
func (s *State) accumulate(chn *Channel, sf SoundFile) {
	if s.medArpLen > 0 {
		s.medArpNote = int(s.medArpeggio[s.medArpPos])
		s.medArpPos = (s.medArpPos + 1) % s.medArpLen
	}

	if s.gtkVolumeStep != 0 || s.gtkPitchStep != 0 || s.gtkPanStep != 0 {
		s.gtkSpeedCount++
		if s.gtkSpeedCount >= s.gtkSpeed {
			s.gtkSpeedCount = 0
			s.setVolumeFactor(s.volumeFactor + s.gtkVolumeStep)
			s.setGTKPitch(s.gtkPitch + s.gtkPitchStep)
			s.setPanning(s.panning + s.gtkPanStep)
		}
	}
	if s.flags&flagGTKVibrato != 0 {
		s.gtkVibratoOut = s.gtkVibrato.Tick()
	}
	if s.flags&flagGTKTremolo != 0 {
		s.gtkTremoloOut = s.gtkTremolo.Tick()
	}
	if s.flags&flagGTKTremor != 0 {
		s.gtkTremorMuted = s.gtkTremorPos >= s.gtkTremorOn
		s.gtkTremorPos++
		if s.gtkTremorPos >= s.gtkTremorOn+s.gtkTremorOff {
			s.gtkTremorPos = 0
		}
	}

	if s.medVolumeStep != 0 {
		s.setVolumeFactor(s.volumeFactor + s.medVolumeStep)
	}
	if s.medPeriodStep != 0 {
		s.periodAdd = clampInt(s.periodAdd+s.medPeriodStep, -0xFFFF, 0xFFFF)
	}
	if s.flags&flagMEDEnvelope != 0 {
		s.stepEnvelope(sf)
	}
	if s.medVibrato.Active() {
		s.medVibratoOut = s.medVibrato.Tick()
	}

	s.tickLFOs()

	if s.fcVibrato.Active() {
		if s.fcVibDelay > 0 {
			s.fcVibDelay--
		} else {
			s.fcVibratoOut = s.fcVibrato.Tick()
		}
	}
	if s.fcBendTicks > 0 {
		s.fcBend = clampInt(s.fcBend+s.fcBendSpeed, -0xFFFF, 0xFFFF)
		s.fcBendTicks--
	}
	if s.fcVolumeTicks > 0 {
		s.setVolumeFactor(s.volumeFactor + s.fcVolumeSpeed*256)
		s.fcVolumeTicks--
	}
}

func (s *State) stepEnvelope(sf SoundFile) {
	table := sf.Waveform(s.medEnvelope)
	if len(table) == 0 {
		return
	}
	if s.medEnvPos >= len(table) {
		if s.flags&flagMEDEnvelopeLoop == 0 {
			s.flags &^= flagMEDEnvelope
			return
		}
		s.medEnvPos = 0
	}
	v := int(table[s.medEnvPos])
	s.medEnvPos++
	if s.flags&flagMEDEnvelopeVolume != 0 {
		s.setVolumeFactor((v + 128) * 64)
	} else {
		s.medEnvPeriod = v
	}
}

// tickLFOs evaluates the FTM LFO bank in slot order. Outputs land in pending
// registers and only become visible on the next tick, so no slot sees
// another slot's output from the same tick.
func (s *State) tickLFOs() {
	s.lfoPitch, s.lfoVolume = s.pendPitch, s.pendVolume
	s.pendPitch, s.pendVolume = 0, 0
	for i := range s.lfos {
		s.lfos[i].speedMod = s.pendSpeed[i]
		s.lfos[i].depthMod = s.pendDepth[i]
	}
	s.pendSpeed = [numLFOs]int{}
	s.pendDepth = [numLFOs]int{}

	for i := range s.lfos {
		l := &s.lfos[i]
		if l.target == script.LFOTargetNone {
			continue
		}
		l.osc.Speed = clampInt(l.speed+l.speedMod, 0, lfoParamMax)
		l.osc.Depth = clampInt(l.depth+l.depthMod, 0, lfoParamMax)
		out := l.osc.Tick()
		switch {
		case l.target == script.LFOTargetPitch:
			s.pendPitch += out
		case l.target == script.LFOTargetVolume:
			s.pendVolume += out
		case l.target >= script.LFOTargetSpeed1 && l.target <= script.LFOTargetSpeed4:
			s.pendSpeed[l.target-script.LFOTargetSpeed1] += out
		case l.target >= script.LFOTargetDepth1 && l.target <= script.LFOTargetDepth4:
			s.pendDepth[l.target-script.LFOTargetDepth1] += out
		}
	}
}
