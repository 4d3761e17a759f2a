// Package vm implements the stack-machine interpreter that executes an
// ASTC bytecode container (spec.md §4.5): a single-threaded, strictly
// sequential loop over a 2048-slot operand stack, 512 local slots, and
// 1024 global slots, dispatching LIBC_CALL instructions through the
// forwarder (§4.6).
package vm

import (
	"encoding/binary"
	"time"

	"github.com/sirupsen/logrus"

	"astc/emit"
)

const (
	localSlotCount  = 512
	globalSlotCount = 1024

	// safetyBound is the "large safety bound" instruction-count cutoff
	// (spec.md §4.5): reaching it halts the VM with a runaway diagnostic,
	// the only timeout-like mechanism the VM has (§5).
	safetyBound = 1_000_000
)

// Forwarder is the subset of the libc forwarder's API the VM depends on,
// kept as an interface so vm does not import forwarder directly and the
// two packages can be tested in isolation. memory is the container's
// instruction buffer, passed through so pointer-kind arguments (string
// literal offsets from CONST_STRING) can be dereferenced; callers must
// not retain or mutate it (spec.md §4.6 "argument marshalling").
type Forwarder interface {
	Dispatch(id uint16, args []int64, memory []byte) (ret int64, errCode int32)
}

// Stats is read back by embedders after Run returns (spec.md §3
// "instrumentation counters").
type Stats struct {
	InstructionsExecuted uint64
	CallsMade            uint64
	Started              time.Time
	Elapsed              time.Duration
}

// VM is a single-use stack-machine interpreter. Construct one with New
// per container execution; it is not safe to reuse across runs.
type VM struct {
	stack   *Stack
	locals  [localSlotCount]int32
	globals [globalSlotCount]int32
	pc      uint32
	running bool

	forwarder Forwarder
	log       *logrus.Logger
	stats     Stats
	memory    []byte
}

// New builds a VM with the spec-mandated minimum stack capacity. A nil
// forwarder is permitted; LIBC_CALL then always reports a dispatch miss.
func New(fw Forwarder, log *logrus.Logger) *VM {
	if log == nil {
		log = logrus.New()
	}
	return &VM{stack: newStack(defaultStackCapacity), forwarder: fw, log: log}
}

// Stats reports the instrumentation counters accumulated by the most
// recent Run.
func (vm *VM) Stats() Stats { return vm.stats }

// Run executes container to completion (HALT, an unhandled fault, or the
// safety bound) and returns the integer exit status (spec.md §4.5
// "Termination"): the stack top at HALT, or zero if the stack is empty.
func (vm *VM) Run(container emit.Container) (int, error) {
	ins := container.Instructions
	vm.memory = ins
	vm.pc = 0
	vm.running = true
	vm.stats = Stats{Started: time.Now()}

	defer func() {
		vm.stats.Elapsed = time.Since(vm.stats.Started)
	}()

	for vm.running && int(vm.pc) < len(ins) && vm.stats.InstructionsExecuted < safetyBound {
		op := emit.Opcode(ins[vm.pc])
		pc0 := vm.pc
		vm.pc++

		if err := vm.step(op, ins); err != nil {
			vm.log.WithFields(logrus.Fields{
				"pc":           pc0,
				"opcode":       op.String(),
				"instructions": vm.stats.InstructionsExecuted,
			}).Error(err.Error())
			return 1, err
		}
		vm.stats.InstructionsExecuted++
	}

	if vm.stats.InstructionsExecuted >= safetyBound {
		err := &RuntimeFault{PC: vm.pc, Message: "instruction count exceeded the safety bound"}
		vm.log.WithField("bound", safetyBound).Error(err.Error())
		return 1, err
	}

	top, ok := vm.stack.Peek()
	if !ok {
		return 0, nil
	}
	return int(top), nil
}

func (vm *VM) readOperand(ins emit.Instructions) uint32 {
	v := binary.LittleEndian.Uint32(ins[vm.pc : vm.pc+4])
	vm.pc += 4
	return v
}

func (vm *VM) step(op emit.Opcode, ins emit.Instructions) error {
	switch op {
	case emit.NOP:
		return nil

	case emit.HALT:
		vm.running = false
		return nil

	case emit.CONST_I32:
		v := vm.readOperand(ins)
		return vm.push(int32(v))

	case emit.CONST_F32:
		// Pushed verbatim as its IEEE-754 bit pattern, not a truncated
		// integer: the operand stack carries no float arithmetic opcodes,
		// so a CONST_F32 value only has meaning when a LIBC_CALL argument
		// of float kind reinterprets these bits (spec.md §4.6).
		v := vm.readOperand(ins)
		return vm.push(int32(v))

	case emit.CONST_STRING:
		length := vm.readOperand(ins)
		offset := vm.pc // string bytes begin here; pointer args dereference this offset into memory
		vm.pc += length
		return vm.push(int32(offset))

	case emit.ADD, emit.SUB, emit.MUL, emit.DIV, emit.MOD:
		return vm.binaryArith(op)

	case emit.EQ, emit.NE, emit.LT, emit.LE, emit.GT, emit.GE:
		return vm.compare(op)

	case emit.AND, emit.OR:
		return vm.logical(op)

	case emit.NOT:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		return vm.push(boolToI32(v == 0))

	case emit.JMP:
		target := vm.readOperand(ins)
		vm.pc = target
		return nil

	case emit.JZ:
		target := vm.readOperand(ins)
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if v == 0 {
			vm.pc = target
		}
		return nil

	case emit.LOAD_LOCAL:
		idx := vm.readOperand(ins)
		v, err := vm.loadLocal(idx)
		if err != nil {
			return err
		}
		return vm.push(v)

	case emit.STORE_LOCAL:
		idx := vm.readOperand(ins)
		v, err := vm.pop()
		if err != nil {
			return err
		}
		return vm.storeLocal(idx, v)

	case emit.DROP:
		_, err := vm.pop()
		return err

	case emit.BREAK, emit.CONTINUE:
		target := vm.readOperand(ins)
		vm.pc = target
		return nil

	case emit.LIBC_CALL:
		return vm.libcCall()

	case emit.USER_CALL:
		return vm.userCall()

	default:
		return &RuntimeFault{PC: vm.pc - 1, Message: "unknown opcode"}
	}
}

func (vm *VM) push(v int32) error {
	if !vm.stack.Push(v) {
		return &RuntimeFault{PC: vm.pc, Message: "operand stack overflow"}
	}
	return nil
}

func (vm *VM) pop() (int32, error) {
	v, ok := vm.stack.Pop()
	if !ok {
		return 0, &RuntimeFault{PC: vm.pc, Message: "operand stack underflow"}
	}
	return v, nil
}

func (vm *VM) loadLocal(idx uint32) (int32, error) {
	if idx >= localSlotCount {
		return 0, &RuntimeFault{PC: vm.pc, Message: "local slot index out of range"}
	}
	return vm.locals[idx], nil
}

func (vm *VM) storeLocal(idx uint32, v int32) error {
	if idx >= localSlotCount {
		return &RuntimeFault{PC: vm.pc, Message: "local slot index out of range"}
	}
	vm.locals[idx] = v
	return nil
}

func (vm *VM) binaryArith(op emit.Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	switch op {
	case emit.ADD:
		return vm.push(a + b)
	case emit.SUB:
		return vm.push(a - b)
	case emit.MUL:
		return vm.push(a * b)
	case emit.DIV:
		if b == 0 {
			return &RuntimeFault{PC: vm.pc, Message: "division by zero"}
		}
		return vm.push(a / b)
	case emit.MOD:
		if b == 0 {
			return &RuntimeFault{PC: vm.pc, Message: "division by zero"}
		}
		return vm.push(a % b)
	}
	return &RuntimeFault{PC: vm.pc, Message: "unreachable arithmetic opcode"}
}

func (vm *VM) compare(op emit.Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case emit.EQ:
		result = a == b
	case emit.NE:
		result = a != b
	case emit.LT:
		result = a < b
	case emit.LE:
		result = a <= b
	case emit.GT:
		result = a > b
	case emit.GE:
		result = a >= b
	}
	return vm.push(boolToI32(result))
}

func (vm *VM) logical(op emit.Opcode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	switch op {
	case emit.AND:
		return vm.push(a & b)
	case emit.OR:
		return vm.push(a | b)
	}
	return &RuntimeFault{PC: vm.pc, Message: "unreachable logical opcode"}
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// libcCall implements spec.md §4.5's "LIBC_CALL handling": pop the call
// ID, pop the argument count, pop that many words (in reverse, to
// restore source order), dispatch through the forwarder, push the
// truncated return value.
func (vm *VM) libcCall() error {
	callID, err := vm.pop()
	if err != nil {
		return err
	}
	argCount, err := vm.pop()
	if err != nil {
		return err
	}
	if argCount < 0 {
		return &RuntimeFault{PC: vm.pc, Message: "negative argument count"}
	}

	args := make([]int64, argCount)
	for i := int(argCount) - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		args[i] = int64(v)
	}

	var ret int64
	if vm.forwarder != nil {
		ret, _ = vm.forwarder.Dispatch(uint16(callID), args, vm.memory)
		vm.stats.CallsMade++
	}
	return vm.push(int32(ret))
}

// userCall implements §4.5's USER_CALL stub: pop the name hash and
// argument count, discard the arguments, and push zero — there is no
// function table to resolve a non-libc call against (spec.md §9 Open
// Questions).
func (vm *VM) userCall() error {
	_, err := vm.pop() // name hash
	if err != nil {
		return err
	}
	argCount, err := vm.pop()
	if err != nil {
		return err
	}
	for i := int32(0); i < argCount; i++ {
		if _, err := vm.pop(); err != nil {
			return err
		}
	}
	return vm.push(0)
}
