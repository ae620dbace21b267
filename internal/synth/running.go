package synth

import "github.com/cbegin/trackersynth-go/internal/script"

// EvaluateRunningEvent continues a multi-tick event. The interpolated value
// is re-derived from the event operands and the remaining tick count, so the
// event stream is never re-read.
func (s *State) EvaluateRunningEvent(ev script.Event) {
	switch ev.Op() {
	case script.OpPumaVolumeRamp:
		start, end := int(ev.Byte0()), int(ev.Byte1())
		s.setVolumeFactor(interpolate(start, end, int(ev.Byte2()), s.ticksRemain) * 256)
	case script.OpPumaPitchRamp:
		start, end := int(ev.I8()), int(int8(ev.Byte1()))
		s.periodAdd = interpolate(start, end, int(ev.Byte2()), s.ticksRemain)
	}
}

func interpolate(start, end, total int, remain uint16) int {
	if total <= 0 {
		return end
	}
	elapsed := clampInt(total-int(remain)+1, 0, total)
	return start + (end-start)*elapsed/total
}
