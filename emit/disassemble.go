package emit

import (
	"fmt"
	"math"
	"strings"
)

// Disassemble renders a container's instruction stream as human-readable
// text, one instruction per line prefixed with its byte offset — the
// format `astc compile -disassemble` prints and test fixtures rely on.
func Disassemble(c Container) string {
	var b strings.Builder
	ins := c.Instructions
	for pc := 0; pc < len(ins); {
		op := Opcode(ins[pc])
		fmt.Fprintf(&b, "%06d  %s", pc, op)

		switch op {
		case CONST_I32:
			v := getUint32(ins[pc+1 : pc+5])
			fmt.Fprintf(&b, " %d\n", int32(v))
			pc += 5
		case CONST_F32:
			v := getUint32(ins[pc+1 : pc+5])
			fmt.Fprintf(&b, " %g\n", math.Float32frombits(v))
			pc += 5
		case CONST_STRING:
			length := int(getUint32(ins[pc+1 : pc+5]))
			data := ins[pc+5 : pc+5+length]
			fmt.Fprintf(&b, " %q\n", strings.TrimRight(string(data), "\x00"))
			pc += 5 + length
		case JMP, JZ, LOAD_LOCAL, STORE_LOCAL, BREAK, CONTINUE:
			v := getUint32(ins[pc+1 : pc+5])
			fmt.Fprintf(&b, " %d\n", v)
			pc += 5
		default:
			b.WriteByte('\n')
			pc++
		}
	}
	return b.String()
}
