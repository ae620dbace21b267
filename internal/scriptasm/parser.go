// Package scriptasm reads and writes the text listing of compiled scripts.
//
// A listing holds one event per line: an opcode name followed by its
// operands, separated by spaces or commas. '#' starts a comment. A line
// "name:" defines a label that jump operands may reference by name. A line
// "script" starts the next script of the instrument; events before the first
// such line belong to the first script.
package scriptasm

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/cbegin/trackersynth-go/internal/script"
)

const scriptKeyword = "script"

type pendingTarget struct {
	event int
	label string
	line  int
}

type scriptBuilder struct {
	events  script.Script
	labels  map[string]int
	pending []pendingTarget
}

func newScriptBuilder() *scriptBuilder {
	return &scriptBuilder{events: script.Script{}, labels: map[string]int{}}
}

// Parse compiles a listing into scripts.
func Parse(src string) ([]script.Script, error) {
	var (
		scripts []script.Script
		cur     *scriptBuilder
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		if err := cur.resolve(); err != nil {
			return err
		}
		scripts = append(scripts, cur.events)
		cur = nil
		return nil
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := stripComment(sc.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, scriptKeyword) {
			if err := finish(); err != nil {
				return nil, err
			}
			cur = newScriptBuilder()
			continue
		}
		if cur == nil {
			cur = newScriptBuilder()
		}
		if label, ok := strings.CutSuffix(line, ":"); ok {
			if err := cur.defineLabel(strings.TrimSpace(label), lineNo); err != nil {
				return nil, err
			}
			continue
		}
		if err := cur.parseEvent(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("read listing"))
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return scripts, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func (b *scriptBuilder) defineLabel(name string, line int) error {
	if !isIdent(name) {
		return lineError(line, ftag.InvalidArgument, fmt.Sprintf("invalid label %q", name))
	}
	if _, dup := b.labels[strings.ToLower(name)]; dup {
		return lineError(line, ftag.AlreadyExists, fmt.Sprintf("label %q defined twice", name))
	}
	b.labels[strings.ToLower(name)] = len(b.events)
	return nil
}

func (b *scriptBuilder) parseEvent(line string, lineNo int) error {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return nil
	}
	op, ok := script.ParseOp(fields[0])
	if !ok {
		return lineError(lineNo, ftag.NotFound, fmt.Sprintf("unknown opcode %q", fields[0]))
	}
	operands := op.Operands()
	args := fields[1:]
	if len(args) != len(operands) {
		return lineError(lineNo, ftag.InvalidArgument,
			fmt.Sprintf("%s takes %d operands, got %d", op, len(operands), len(args)))
	}

	values := make([]int, len(operands))
	for i, operand := range operands {
		if operand.Kind == script.ArgTarget && isIdent(args[i]) {
			b.pending = append(b.pending, pendingTarget{event: len(b.events), label: args[i], line: lineNo})
			continue
		}
		v, err := parseOperand(operand, args[i])
		if err != nil {
			return fault.Wrap(err,
				fmsg.With(fmt.Sprintf("line %d: %s operand %s", lineNo, op, operand.Name)),
				ftag.With(ftag.InvalidArgument))
		}
		values[i] = v
	}
	b.events = append(b.events, script.Encode(op, values))
	return nil
}

func (b *scriptBuilder) resolve() error {
	for _, p := range b.pending {
		row, ok := b.labels[strings.ToLower(p.label)]
		if !ok {
			return lineError(p.line, ftag.NotFound, fmt.Sprintf("undefined label %q", p.label))
		}
		b.events[p.event] = b.events[p.event].WithJumpTarget(uint16(row))
	}
	b.pending = nil
	return nil
}

func parseOperand(operand script.Operand, text string) (int, error) {
	if operand.Kind == script.ArgBool {
		switch strings.ToLower(text) {
		case "true", "on", "yes":
			return 1, nil
		case "false", "off", "no":
			return 0, nil
		}
	}
	v, err := strconv.ParseInt(text, 0, 32)
	if err != nil {
		return 0, fault.Wrap(err, fmsg.With(fmt.Sprintf("bad number %q", text)))
	}
	lo, hi := operandRange(operand)
	if v < lo || v > hi {
		return 0, fault.New(fmt.Sprintf("%d out of range [%d, %d]", v, lo, hi))
	}
	return int(v), nil
}

func operandRange(operand script.Operand) (lo, hi int64) {
	bits := operand.Slot.Bits()
	switch operand.Kind {
	case script.ArgBool:
		return 0, 1
	case script.ArgInt:
		return -(1 << (bits - 1)), 1<<(bits-1) - 1
	case script.ArgTarget:
		return 0, int64(script.StopRow)
	}
	return 0, 1<<bits - 1
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func lineError(line int, kind ftag.Kind, msg string) error {
	return fault.New(fmt.Sprintf("line %d: %s", line, msg), ftag.With(kind))
}
