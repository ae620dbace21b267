package synth

import (
	"github.com/cbegin/trackersynth-go/internal/lfo"
	"github.com/cbegin/trackersynth-go/internal/script"
)

const (
	// maxJumpsPerTick bounds same-tick jump iterations.
	maxJumpsPerTick = 10

	volumeFactorMax = 16384
	panningMax      = 4096
	panningCenter   = 2048
	gtkPitchUnity   = 4096
	lfoParamMax     = 255
	maxArpeggio     = 16
	numLFOs         = 4

	// workTrackSelf means FTM opcodes address the script's own channel.
	workTrackSelf = -1
)

type stateFlags uint32

const (
	flagCondition stateFlags = 1 << iota
	flagGTKKeyOffArmed
	flagGTKTremor
	flagGTKTremolo
	flagGTKVibrato
	flagMEDHoldArmed
	flagMEDEnvelope
	flagMEDEnvelopeLoop
	flagMEDEnvelopeVolume
	flagMEDMarkerPending
	flagWorkTrackRelative
	flagFCFixedNote
)

type ftmLFO struct {
	target   uint8
	speed    int
	depth    int
	speedMod int
	depthMod int
	osc      lfo.Osc
}

// State is one interpreter cursor plus the union of every format family's
// registers. It is a plain value: copying a State copies the whole machine.
type State struct {
	currentRow  uint16
	nextRow     uint16
	ticksRemain uint16
	stepSpeed   uint8
	stepsRemain uint8
	loopCount   uint16
	flags       stateFlags

	// Shared output registers, folded by ApplyChannelState.
	volumeFactor int // 0..16384, 16384 = unity
	panning      int // 0..4096, 2048 = center
	linearPitch  int // 768 steps per octave
	periodAdd    int
	detune       int
	realChannel  int

	// GTK
	gtkKeyOffTarget uint16
	gtkPitch        int
	gtkVolumeStep   int
	gtkPitchStep    int
	gtkPanStep      int
	gtkSpeed        int
	gtkSpeedCount   int
	gtkTremorOn     int
	gtkTremorOff    int
	gtkTremorPos    int
	gtkTremorMuted  bool
	gtkVibrato      lfo.Osc
	gtkTremolo      lfo.Osc
	gtkVibratoOut   int
	gtkTremoloOut   int

	// Puma
	pumaWaveStart uint8
	pumaWaveStep  uint8
	pumaWaveCount uint8
	pumaWavePos   uint8

	// MED
	medArpeggio     [maxArpeggio]uint8
	medArpLen       int
	medArpPos       int
	medArpNote      int
	medPendingMark  uint16
	medHold         int
	medDecayTarget  uint16
	medEnvelope     int
	medEnvPos       int
	medEnvPeriod    int
	medVolumeStep   int
	medPeriodStep   int
	medVibrato      lfo.Osc
	medVibratoOut   int

	// FTM
	workTrack   int
	interrupts  [script.NumInterrupts]uint16
	interruptOn uint8
	lfos        [numLFOs]ftmLFO
	lfoPitch    int
	lfoVolume   int
	pendPitch   int
	pendVolume  int
	pendSpeed   [numLFOs]int
	pendDepth   [numLFOs]int

	// Future Composer
	fcPitch       int
	fcVibrato     lfo.Osc
	fcVibDelay    int
	fcVibratoOut  int
	fcBendSpeed   int
	fcBendTicks   int
	fcBend        int
	fcVolumeSpeed int
	fcVolumeTicks int
}

// NewState returns a halted State with default registers.
func NewState() State {
	var s State
	s.Reset()
	return s
}

// Reset restores every register to its default and halts the cursor.
func (s *State) Reset() {
	*s = State{
		currentRow:   script.StopRow,
		nextRow:      script.StopRow,
		stepSpeed:    1,
		volumeFactor: volumeFactorMax,
		panning:      panningCenter,
		gtkPitch:     gtkPitchUnity,
		gtkSpeed:     1,
		gtkTremorOn:  3,
		gtkTremorOff: 3,
		workTrack:    workTrackSelf,
		realChannel:  s.realChannel,
	}
}

// Start schedules the script to run from row on the next tick.
func (s *State) Start(row uint16) {
	s.currentRow = script.StopRow
	s.JumpTo(row)
}

// JumpTo moves the cursor so that row executes on the next tick, abandoning
// any running event.
func (s *State) JumpTo(row uint16) {
	s.nextRow = row
	s.ticksRemain = 0
	s.stepsRemain = 0
}

// Stop halts the cursor. Registers keep their values.
func (s *State) Stop() {
	s.currentRow = script.StopRow
	s.nextRow = script.StopRow
	s.ticksRemain = 0
}

func (s *State) halted() bool {
	return s.currentRow == script.StopRow && s.nextRow == script.StopRow
}

// Running reports whether the cursor still has work to do.
func (s *State) Running() bool { return !s.halted() }

func (s *State) CurrentRow() uint16  { return s.currentRow }
func (s *State) NextRow() uint16     { return s.nextRow }
func (s *State) TicksRemain() uint16 { return s.ticksRemain }
func (s *State) StepSpeed() uint8    { return s.stepSpeed }
func (s *State) StepsRemain() uint8  { return s.stepsRemain }
func (s *State) LoopCount() uint16   { return s.loopCount }
func (s *State) VolumeFactor() int   { return s.volumeFactor }
func (s *State) Panning() int        { return s.panning }
func (s *State) LinearPitch() int    { return s.linearPitch }
func (s *State) PeriodAdd() int      { return s.periodAdd }
func (s *State) Detune() int         { return s.detune }
func (s *State) Condition() bool     { return s.flags&flagCondition != 0 }

// RealChannel is the channel this State's channel-addressing opcodes act on
// after work-track redirection.
func (s *State) RealChannel() int { return s.realChannel }

// WorkTrack returns the configured work track and whether it is relative.
// A track of -1 means the script's own channel.
func (s *State) WorkTrack() (track int, relative bool) {
	return s.workTrack, s.flags&flagWorkTrackRelative != 0
}

func (s *State) setFlag(f stateFlags, on bool) {
	if on {
		s.flags |= f
	} else {
		s.flags &^= f
	}
}

func (s *State) setVolumeFactor(v int) {
	s.volumeFactor = clampInt(v, 0, volumeFactorMax)
}

func (s *State) setPanning(v int) {
	s.panning = clampInt(v, 0, panningMax)
}

func (s *State) setGTKPitch(v int) {
	s.gtkPitch = clampInt(v, 0, 0xFFFF)
}

// resolveChannel applies the work track to the script's own channel.
func (s *State) resolveChannel(channel, numChannels int) {
	switch {
	case numChannels <= 0:
		s.realChannel = channel
	case s.flags&flagWorkTrackRelative != 0:
		s.realChannel = ((channel+s.workTrack)%numChannels + numChannels) % numChannels
	case s.workTrack == workTrackSelf:
		s.realChannel = channel
	default:
		s.realChannel = clampInt(s.workTrack, 0, numChannels-1)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
