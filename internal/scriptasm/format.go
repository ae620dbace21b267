package scriptasm

import (
	"strconv"
	"strings"

	"github.com/cbegin/trackersynth-go/internal/script"
)

// Format renders scripts as a listing that Parse reads back unchanged.
// Every script is introduced by a "script" line and jump targets inside the
// script are written as labels.
func Format(scripts []script.Script) string {
	var b strings.Builder
	for i, sc := range scripts {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(scriptKeyword)
		b.WriteString("  # ")
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
		formatScript(&b, sc)
	}
	return b.String()
}

func formatScript(b *strings.Builder, sc script.Script) {
	targets := map[int]bool{}
	for _, ev := range sc {
		if ev.IsJumpEvent() {
			if row := int(ev.JumpTarget()); row < len(sc) {
				targets[row] = true
			}
		}
	}

	for row, ev := range sc {
		if targets[row] {
			b.WriteString(labelName(row))
			b.WriteString(":\n")
		}
		b.WriteString("    ")
		b.WriteString(ev.Op().String())
		args := ev.Args()
		for i, operand := range ev.Op().Operands() {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(", ")
			}
			b.WriteString(formatOperand(operand, args[i], targets))
		}
		b.WriteByte('\n')
	}
}

func formatOperand(operand script.Operand, v int, targets map[int]bool) string {
	switch operand.Kind {
	case script.ArgBool:
		return strconv.FormatBool(v != 0)
	case script.ArgTarget:
		if targets[v] {
			return labelName(v)
		}
	}
	return strconv.Itoa(v)
}

func labelName(row int) string {
	return "row" + strconv.Itoa(row)
}
