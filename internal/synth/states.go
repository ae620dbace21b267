package synth

import "github.com/cbegin/trackersynth-go/internal/script"

// States holds one State per script of the instrument playing on a channel.
// The zero value is ready to use.
type States struct {
	states []State
}

// NextTick resizes the collection to the instrument's script count, handles
// note triggers and synth jump commands, then ticks every script in order.
func (c *States) NextTick(scripts []script.Script, play *PlayState, channel int, sf SoundFile) {
	c.resize(len(scripts))
	if channel < 0 || channel >= len(play.Channels) {
		return
	}
	chn := &play.Channels[channel]

	if chn.NewNote {
		for i := range c.states {
			c.states[i].Reset()
			c.states[i].Start(0)
		}
	}

	if play.Tick == 0 && chn.Row.Kind == CommandSynthJump && len(c.states) > 1 {
		st := &c.states[1]
		if speed, ok := scripts[1].FirstStepSpeed(); ok {
			st.stepSpeed = max(speed, 1)
		}
		st.JumpTo(uint16(chn.Row.Param))
	}

	for i := range c.states {
		c.states[i].NextTick(scripts[i], play, channel, sf, c.states)
	}
}

// ApplyChannelState folds every script's registers into the channel in
// script order.
func (c *States) ApplyChannelState(chn *Channel, period *int, sf SoundFile) {
	for i := range c.states {
		c.states[i].ApplyChannelState(chn, period, sf)
	}
}

// Stop halts every script.
func (c *States) Stop() {
	for i := range c.states {
		c.states[i].Stop()
	}
}

func (c *States) Len() int { return len(c.states) }

// At returns the State of script i.
func (c *States) At(i int) *State { return &c.states[i] }

func (c *States) resize(n int) {
	c.states = resizeStates(c.states, n)
}

func resizeStates(states []State, n int) []State {
	if len(states) > n {
		return states[:n]
	}
	for len(states) < n {
		states = append(states, NewState())
	}
	return states
}

// GlobalScriptState runs one module-wide script with one State per output
// channel. The zero value is ready to use.
type GlobalScriptState struct {
	states  []State
	restart bool
}

// NextTick ticks the script on every channel. A synth jump row command on the
// first tick of a row (re)starts that channel's State at the given row.
func (g *GlobalScriptState) NextTick(sc script.Script, play *PlayState, sf SoundFile) {
	g.states = resizeStates(g.states, len(play.Channels))
	if g.restart {
		g.restart = false
		for i := range g.states {
			g.states[i].Reset()
			g.states[i].Start(0)
		}
	}
	for ch := range g.states {
		chn := &play.Channels[ch]
		if play.Tick == 0 && chn.Row.Kind == CommandSynthJump {
			g.states[ch].Reset()
			g.states[ch].Start(uint16(chn.Row.Param))
		}
		g.states[ch].NextTick(sc, play, ch, sf, g.states)
	}
}

// ApplyChannelState folds the registers of every State whose work track
// currently resolves to channel.
func (g *GlobalScriptState) ApplyChannelState(chn *Channel, channel int, period *int, sf SoundFile) {
	for i := range g.states {
		if g.states[i].RealChannel() == channel {
			g.states[i].ApplyChannelState(chn, period, sf)
		}
	}
}

// Stop halts every channel's State.
func (g *GlobalScriptState) Stop() {
	g.restart = false
	for i := range g.states {
		g.states[i].Stop()
	}
}

// Restart resets every channel's State and starts the script from row 0 on
// the next tick.
func (g *GlobalScriptState) Restart() {
	g.restart = true
}

func (g *GlobalScriptState) Len() int { return len(g.states) }

// At returns the State of output channel i.
func (g *GlobalScriptState) At(i int) *State { return &g.states[i] }
