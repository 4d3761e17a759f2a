// Package forwarder dispatches ASTC LIBC_CALL instructions to host Go
// equivalents of the registered libc functions (spec.md §4.6). It is the
// single point of contact between the VM's sandboxed stack machine and
// the outside world.
package forwarder

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"astc/libc"
)

// Stats mirrors spec.md §4.6's "statistics counters ... incremented by
// category".
type Stats struct {
	TotalCalls  uint64
	MemoryCalls uint64
	FileCalls   uint64
	StringCalls uint64
}

// Handler forwards one libc call: it receives the raw argument words
// already popped off the VM's operand stack (reversed back into source
// order) and a read-only view of the container's instruction bytes, from
// which pointer-kind arguments (string literal offsets) are
// dereferenced. It returns the 64-bit return value and a host error code
// (0 on success).
type Handler func(f *Forwarder, args []int64, memory []byte) (int64, int32)

// Forwarder owns the process-wide initialized flag and statistics
// counters spec.md §4.6 describes; construct one with New and call Init
// before first dispatch.
type Forwarder struct {
	initialized bool
	log         *logrus.Logger
	stats       Stats
	handlers    map[libc.ID]Handler
	rng         *rand.Rand
}

// New builds a Forwarder wired to the full handler table below. log may
// be nil, in which case a default logrus.Logger is used.
func New(log *logrus.Logger) *Forwarder {
	if log == nil {
		log = logrus.New()
	}
	f := &Forwarder{log: log, handlers: make(map[libc.ID]Handler)}
	f.registerHandlers()
	return f
}

// Init marks the forwarder ready for dispatch. Idempotent: calling it
// again while already initialized is a no-op (spec.md §4.6 "init is
// idempotent").
func (f *Forwarder) Init() error {
	if f.initialized {
		return nil
	}
	f.initialized = true
	f.rng = rand.New(rand.NewSource(1))
	f.log.Debug("forwarder initialized")
	return nil
}

// Cleanup resets statistics and the initialized flag (spec.md §4.6
// "cleanup resets statistics and the flag").
func (f *Forwarder) Cleanup() {
	f.stats = Stats{}
	f.initialized = false
}

// Stats reports the accumulated per-category call counters.
func (f *Forwarder) Stats() Stats { return f.stats }

// Dispatch looks up id in the registry and, on a hit, forwards to its
// handler. An unregistered or unimplemented ID reports a lookup miss:
// error code −1, zero return value, VM continues (spec.md §4.6
// "Dispatch").
func (f *Forwarder) Dispatch(id uint16, args []int64, memory []byte) (int64, int32) {
	entry, ok := libc.LookupID(libc.ID(id))
	if !ok {
		f.log.WithField("call_id", id).Warn("libc dispatch: unregistered call id")
		return 0, -1
	}

	handler, ok := f.handlers[entry.ID]
	if !ok {
		f.log.WithField("name", entry.Name).Warn("libc dispatch: no host handler registered")
		return 0, -1
	}

	f.stats.TotalCalls++
	switch entry.Category {
	case libc.CategoryMemory, libc.CategoryMemoryOps:
		f.stats.MemoryCalls++
	case libc.CategoryFileIO:
		f.stats.FileCalls++
	case libc.CategoryStrings, libc.CategoryExtraStrings:
		f.stats.StringCalls++
	}

	ret, errCode := handler(f, args, memory)
	f.log.WithFields(logrus.Fields{"name": entry.Name, "call_id": id, "error_code": errCode}).Debug("libc call dispatched")
	return ret, errCode
}

// --- memory helpers ---

// cString reads a NUL-terminated string starting at offset within
// memory. Offsets come from CONST_STRING, the only source of pointer
// values this core produces (spec.md §4.6).
func cString(memory []byte, offset int64) string {
	if offset < 0 || int(offset) >= len(memory) {
		return ""
	}
	end := bytes.IndexByte(memory[offset:], 0)
	if end < 0 {
		return string(memory[offset:])
	}
	return string(memory[offset : int(offset)+end])
}

func asFloat32(v int64) float64 {
	return float64(math.Float32frombits(uint32(int32(v))))
}

func floatBits(v float64) int64 {
	return int64(math.Float32bits(float32(v)))
}

// registerHandlers wires the host Go stdlib equivalent for each libc
// entry this forwarder implements. Entries the registry lists but this
// table omits fall back to Dispatch's "no host handler registered" miss
// path — intentionally, where the emulated environment has no
// meaningful host object to forward to (process-wide file descriptors,
// a real heap); see DESIGN.md.
func (f *Forwarder) registerHandlers() {
	h := f.handlers

	h[0x0050] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) { // abs
		v := int32(args[0])
		if v < 0 {
			v = -v
		}
		return int64(v), 0
	}
	h[0x0051] = mathUnary(math.Sqrt)
	h[0x0052] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) {
		return floatBits(math.Pow(asFloat32(args[0]), asFloat32(args[1]))), 0
	}
	h[0x0053] = mathUnary(math.Sin)
	h[0x0054] = mathUnary(math.Cos)
	h[0x0055] = mathUnary(math.Tan)
	h[0x0056] = mathUnary(math.Floor)
	h[0x0057] = mathUnary(math.Ceil)
	h[0x0058] = mathUnary(math.Abs)

	h[0x0010] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // strlen
		return int64(len(cString(mem, args[0]))), 0
	}
	h[0x0013] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // strcmp
		a, b := cString(mem, args[0]), cString(mem, args[1])
		switch {
		case a < b:
			return -1, 0
		case a > b:
			return 1, 0
		default:
			return 0, 0
		}
	}
	h[0x0017] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // strncmp
		a, b := cString(mem, args[0]), cString(mem, args[1])
		n := int(args[2])
		if len(a) > n {
			a = a[:n]
		}
		if len(b) > n {
			b = b[:n]
		}
		switch {
		case a < b:
			return -1, 0
		case a > b:
			return 1, 0
		default:
			return 0, 0
		}
	}

	h[0x0060] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // atoi
		v, err := strconv.Atoi(cString(mem, args[0]))
		if err != nil {
			return 0, -1
		}
		return int64(v), 0
	}
	h[0x0061] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // atol
		v, err := strconv.ParseInt(cString(mem, args[0]), 10, 64)
		if err != nil {
			return 0, -1
		}
		return v, 0
	}
	h[0x0062] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // atof
		v, err := strconv.ParseFloat(cString(mem, args[0]), 64)
		if err != nil {
			return 0, -1
		}
		return floatBits(v), 0
	}

	h[0x0030] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // printf
		n, _ := fmt.Fprint(os.Stdout, cString(mem, args[0]))
		return int64(n), 0
	}
	h[0x0080] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // puts
		n, _ := fmt.Fprintln(os.Stdout, cString(mem, args[0]))
		return int64(n), 0
	}
	h[0x0081] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) { // putchar
		fmt.Fprint(os.Stdout, string(rune(args[0])))
		return args[0], 0
	}

	h[0x00A0] = ctype(func(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }) // isalpha
	h[0x00A1] = ctype(func(r rune) bool { return r >= '0' && r <= '9' })                              // isdigit
	h[0x00A2] = ctype(func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })   // isspace
	h[0x00A5] = ctype(func(r rune) bool { return r >= 'A' && r <= 'Z' })                               // isupper
	h[0x00A6] = ctype(func(r rune) bool { return r >= 'a' && r <= 'z' })                               // islower
	h[0x00A7] = ctype(func(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') }) // isalnum

	h[0x00A3] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) { // toupper
		r := rune(args[0])
		if r >= 'a' && r <= 'z' {
			return int64(r - 'a' + 'A'), 0
		}
		return args[0], 0
	}
	h[0x00A4] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) { // tolower
		r := rune(args[0])
		if r >= 'A' && r <= 'Z' {
			return int64(r - 'A' + 'a'), 0
		}
		return args[0], 0
	}

	h[0x00B0] = func(_ *Forwarder, _ []int64, _ []byte) (int64, int32) { return time.Now().Unix(), 0 } // time
	h[0x00B1] = func(_ *Forwarder, _ []int64, _ []byte) (int64, int32) { return int64(time.Now().UnixNano() / 1000), 0 } // clock

	h[0x00C2] = func(f *Forwarder, _ []int64, _ []byte) (int64, int32) { return int64(f.rng.Int31()), 0 } // rand
	h[0x00C3] = func(f *Forwarder, args []int64, _ []byte) (int64, int32) { // srand
		f.rng = rand.New(rand.NewSource(args[0]))
		return 0, 0
	}

	h[0x0070] = func(_ *Forwarder, args []int64, _ []byte) (int64, int32) { return args[0], 0 } // exit: VM decides to stop; code surfaced to caller
	h[0x0073] = func(_ *Forwarder, args []int64, mem []byte) (int64, int32) { // getenv
		val, ok := os.LookupEnv(cString(mem, args[0]))
		if !ok {
			return 0, -1
		}
		return int64(len(val)), 0 // no host heap to place the result string into; length is all this core can report
	}
}

func mathUnary(fn func(float64) float64) Handler {
	return func(_ *Forwarder, args []int64, _ []byte) (int64, int32) {
		return floatBits(fn(asFloat32(args[0]))), 0
	}
}

func ctype(pred func(rune) bool) Handler {
	return func(_ *Forwarder, args []int64, _ []byte) (int64, int32) {
		if pred(rune(args[0])) {
			return 1, 0
		}
		return 0, 0
	}
}
