package synth

import "math"

const (
	// LinearStepsPerOctave is the resolution of linear pitch registers.
	LinearStepsPerOctave = 768
	stepsPerSemitone     = LinearStepsPerOctave / 12
	maxLinearSteps       = LinearStepsPerOctave * 8

	// amigaClock converts between Amiga periods and Hz.
	amigaClock = 3546895
)

// linearTable[i] is 2^(i/768) in 16.16 fixed point.
var linearTable = func() [LinearStepsPerOctave]int64 {
	var t [LinearStepsPerOctave]int64
	for i := range t {
		t[i] = int64(math.Round(math.Exp2(float64(i)/LinearStepsPerOctave) * 65536))
	}
	return t
}()

// ApplyChannelState folds the registers into the channel's realized volume,
// panning and detune, and into period. Call it exactly once per channel per
// tick after NextTick; period is the caller's working copy.
func (s *State) ApplyChannelState(chn *Channel, period *int, sf SoundFile) {
	freq := sf.Flags()&PeriodsAreFrequencies != 0

	vol := chn.RealVolume * s.volumeFactor / volumeFactorMax
	vol += s.gtkTremoloOut + s.lfoVolume
	vol = clampInt(vol, 0, 256)
	if s.gtkTremorMuted {
		vol = 0
	}
	chn.RealVolume = vol

	chn.RealPan = biasPan(chn.RealPan, s.panning)

	slide := false
	if steps := s.linearPitch + s.medArpNote*stepsPerSemitone + s.gtkVibratoOut + s.lfoPitch; steps != 0 {
		*period = linearSlide(*period, steps, freq)
		slide = true
	}
	if s.gtkPitch != gtkPitchUnity {
		*period = frequencySlide(*period, s.gtkPitch, freq)
		slide = true
	}
	if add := s.periodAdd + s.medEnvPeriod; add != 0 {
		*period += add
		slide = true
	}
	if s.medVibratoOut != 0 {
		*period += s.medVibratoOut
		slide = true
	}
	if s.applyFC(chn, period, freq) {
		slide = true
	}

	if slide && !freq {
		if lo, hi := sf.PeriodRange(); hi >= lo {
			*period = clampInt(*period, lo, hi)
		}
	}

	chn.Detune += s.detune
}

// biasPan moves pan (0..256) towards the side selected by bias (0..4096).
func biasPan(pan, bias int) int {
	if bias < panningCenter {
		return pan * bias / panningCenter
	}
	return pan + (256-pan)*(bias-panningCenter)/panningCenter
}

// linearSlide raises the pitch of period by steps 768ths of an octave.
func linearSlide(period, steps int, freq bool) int {
	if period <= 0 {
		return period
	}
	if !freq {
		steps = -steps
	}
	steps = clampInt(steps, -maxLinearSteps, maxLinearSteps)
	octave := steps / LinearStepsPerOctave
	frac := steps % LinearStepsPerOctave
	if frac < 0 {
		frac += LinearStepsPerOctave
		octave--
	}
	v := int64(period) * linearTable[frac] >> 16
	if octave >= 0 {
		v <<= uint(octave)
	} else {
		v >>= uint(-octave)
	}
	return int(v)
}

// frequencySlide scales the frequency of period by factor/4096.
func frequencySlide(period, factor int, freq bool) int {
	if period <= 0 {
		return period
	}
	if freq {
		return int(int64(period) * int64(factor) / gtkPitchUnity)
	}
	if factor == 0 {
		return amigaClock
	}
	return int(int64(period) * gtkPitchUnity / int64(factor))
}

func (s *State) applyFC(chn *Channel, period *int, freq bool) bool {
	changed := false
	transpose := s.fcPitch
	if s.flags&flagFCFixedNote != 0 && chn.Note != 0 {
		transpose = s.fcPitch - chn.Note
	}
	if transpose != 0 {
		*period = linearSlide(*period, transpose*stepsPerSemitone, freq)
		changed = true
	}
	if offset := s.fcBend + s.fcVibratoOut; offset != 0 {
		// Positive bends raise the pitch.
		if freq {
			*period += offset
		} else {
			*period -= offset
		}
		changed = true
	}
	return changed
}
