package trackersynth

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/cbegin/trackersynth-go/internal/script"
	"github.com/cbegin/trackersynth-go/internal/scriptasm"
)

// Compile reads an instrument listing into its scripts.
func Compile(listing string) ([]script.Script, error) {
	scripts, err := scriptasm.Parse(listing)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("compile instrument"))
	}
	return scripts, nil
}

// CompileGlobal reads a listing holding a single module-wide script.
func CompileGlobal(listing string) (script.Script, error) {
	scripts, err := Compile(listing)
	if err != nil {
		return nil, err
	}
	switch len(scripts) {
	case 0:
		return nil, nil
	case 1:
		return scripts[0], nil
	}
	return nil, fault.New("global listing must hold one script",
		fmsg.WithDesc("multiple scripts", "A global script listing may not contain more than one script."),
		ftag.With(ftag.InvalidArgument))
}

// Trace plays the instrument in listing on channel 0 for ticks ticks.
func Trace(listing string, ticks int, opts ...TraceOption) ([]TickFrame, error) {
	scripts, err := Compile(listing)
	if err != nil {
		return nil, err
	}
	t, err := NewTracer(opts...)
	if err != nil {
		return nil, err
	}
	if err := t.SetInstrument(0, scripts); err != nil {
		return nil, err
	}
	return t.Run(ticks), nil
}

// Listing renders scripts back into listing text.
func Listing(scripts []script.Script) string {
	return scriptasm.Format(scripts)
}
