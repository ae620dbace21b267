package synth

// ChannelFlags are playback flags of a Channel.
type ChannelFlags uint32

const (
	ChnLoop   ChannelFlags = 1 << iota // sample loops between LoopStart and LoopEnd
	ChnKeyOff                          // note has been released
	ChnMute                            // voice stopped by a script
)

// CommandKind identifies the row command a channel is currently playing.
// Only the kinds scripts react to are distinguished.
type CommandKind uint8

const (
	CommandNone CommandKind = iota
	CommandSynthJump
	CommandVolume
	CommandVolumeDown
	CommandPortamento
	CommandOther
)

type RowCommand struct {
	Kind  CommandKind
	Param uint8
}

// Channel is the mixer-facing view of one output channel. Scripts mutate it
// directly; the mixer and sequencer that own it are outside this package.
//
// Sample indices are 1-based; 0 means no sample.
type Channel struct {
	Period  int
	Note    int // 1-based note number, 0 = none
	Volume  int // 0..256
	Panning int // 0..256, 128 = center

	Sample        int
	PendingSample int // applied by the mixer at the end of the current loop
	Position      uint32
	Length        uint32
	SampleStart   uint32
	LoopStart     uint32
	LoopEnd       uint32
	Flags         ChannelFlags

	NewNote   bool
	NewSample bool
	Row       RowCommand

	// Outputs of ApplyChannelState. The caller seeds RealVolume and RealPan
	// from Volume and Panning before each tick's folding pass.
	RealVolume int
	RealPan    int
	Detune     int
}

// Released reports whether the note has been keyed off.
func (c *Channel) Released() bool { return c.Flags&ChnKeyOff != 0 }

// Seed copies the base volume and panning into the realized outputs and
// clears the detune accumulator.
func (c *Channel) Seed() {
	c.RealVolume = c.Volume
	c.RealPan = c.Panning
	c.Detune = 0
}

// PlayState is the part of the sequencer state that engine-level opcodes
// write to.
type PlayState struct {
	Channels     []Channel
	GlobalVolume int // 0..256
	Tempo        int
	Speed        int
	Tick         int // tick within the current row, 0 = row start

	NextOrder    int
	NextRow      int
	PositionJump bool
}

// ModuleFlags are read-only capabilities of the playing module.
type ModuleFlags uint8

const (
	// PeriodsAreFrequencies means Channel.Period is a frequency in Hz rather
	// than an Amiga period.
	PeriodsAreFrequencies ModuleFlags = 1 << iota
	// ImmediateSampleSwap makes sample changes take effect at once instead
	// of at the end of the playing loop.
	ImmediateSampleSwap
)

type SampleInfo struct {
	Length    uint32
	LoopStart uint32
	LoopEnd   uint32
	Loop      bool
}

// SoundFile exposes what scripts need to know about the playing module.
type SoundFile interface {
	Flags() ModuleFlags
	PeriodRange() (min, max int)
	NumSamples() int
	Sample(index int) SampleInfo
	// Waveform returns a signed 8-bit table used by envelope opcodes, or nil.
	Waveform(index int) []int8
	// FindOrder resolves a pattern and row to an order list position.
	FindOrder(pattern, row int) (order int, ok bool)
}
