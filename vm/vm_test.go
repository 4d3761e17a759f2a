package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/emit"
)

func runInstructions(t *testing.T, fw Forwarder, ins []byte) (int, error) {
	t.Helper()
	container := emit.Container{Version: 1, Instructions: emit.Instructions(ins)}
	machine := New(fw, nil)
	return machine.Run(container)
}

func TestHaltReturnsStackTop(t *testing.T) {
	status, err := runInstructions(t, nil, []byte{
		byte(emit.CONST_I32), 42, 0, 0, 0,
		byte(emit.HALT),
	})
	require.NoError(t, err)
	require.Equal(t, 42, status)
}

func TestHaltOnEmptyStackReturnsZero(t *testing.T) {
	status, err := runInstructions(t, nil, []byte{byte(emit.HALT)})
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestArithmeticAddsOperandsInOrder(t *testing.T) {
	status, err := runInstructions(t, nil, []byte{
		byte(emit.CONST_I32), 10, 0, 0, 0,
		byte(emit.CONST_I32), 3, 0, 0, 0,
		byte(emit.SUB),
		byte(emit.HALT),
	})
	require.NoError(t, err)
	require.Equal(t, 7, status)
}

func TestDivisionByZeroIsRuntimeFault(t *testing.T) {
	_, err := runInstructions(t, nil, []byte{
		byte(emit.CONST_I32), 1, 0, 0, 0,
		byte(emit.CONST_I32), 0, 0, 0, 0,
		byte(emit.DIV),
		byte(emit.HALT),
	})
	require.Error(t, err)
	var fault *RuntimeFault
	require.ErrorAs(t, err, &fault)
}

func TestUnknownOpcodeIsRuntimeFault(t *testing.T) {
	_, err := runInstructions(t, nil, []byte{0xEE})
	require.Error(t, err)
	var fault *RuntimeFault
	require.ErrorAs(t, err, &fault)
}

func TestStackUnderflowIsRuntimeFault(t *testing.T) {
	_, err := runInstructions(t, nil, []byte{byte(emit.ADD)})
	require.Error(t, err)
	var fault *RuntimeFault
	require.ErrorAs(t, err, &fault)
}

func TestJZSkipsOverFalseBranch(t *testing.T) {
	// if (0) { return 1 } return 2
	ins := []byte{
		byte(emit.CONST_I32), 0, 0, 0, 0, // condition
		byte(emit.JZ), 16, 0, 0, 0, // jump to the `return 2` CONST_I32 at offset 16
		byte(emit.CONST_I32), 1, 0, 0, 0,
		byte(emit.HALT),
		byte(emit.CONST_I32), 2, 0, 0, 0,
		byte(emit.HALT),
	}
	status, err := runInstructions(t, nil, ins)
	require.NoError(t, err)
	require.Equal(t, 2, status)
}

func TestLocalStoreThenLoadRoundTrips(t *testing.T) {
	ins := []byte{
		byte(emit.CONST_I32), 9, 0, 0, 0,
		byte(emit.STORE_LOCAL), 0, 0, 0, 0,
		byte(emit.LOAD_LOCAL), 0, 0, 0, 0,
		byte(emit.HALT),
	}
	status, err := runInstructions(t, nil, ins)
	require.NoError(t, err)
	require.Equal(t, 9, status)
}

type stubForwarder struct {
	lastID   uint16
	lastArgs []int64
	ret      int64
}

func (f *stubForwarder) Dispatch(id uint16, args []int64, memory []byte) (int64, int32) {
	f.lastID = id
	f.lastArgs = args
	return f.ret, 0
}

func TestLibcCallDispatchesThroughForwarder(t *testing.T) {
	fw := &stubForwarder{ret: 7}
	ins := []byte{
		byte(emit.CONST_I32), 5, 0, 0, 0, // one argument
		byte(emit.CONST_I32), 1, 0, 0, 0, // arg count
		byte(emit.CONST_I32), 0x30, 0, 0, 0, // call id (printf)
		byte(emit.LIBC_CALL),
		byte(emit.HALT),
	}
	status, err := runInstructions(t, fw, ins)
	require.NoError(t, err)
	require.Equal(t, 7, status)
	require.Equal(t, uint16(0x30), fw.lastID)
	require.Equal(t, []int64{5}, fw.lastArgs)
}

func TestLibcCallWithNilForwarderPushesZero(t *testing.T) {
	ins := []byte{
		byte(emit.CONST_I32), 0, 0, 0, 0, // arg count
		byte(emit.CONST_I32), 0x30, 0, 0, 0, // call id
		byte(emit.LIBC_CALL),
		byte(emit.HALT),
	}
	status, err := runInstructions(t, nil, ins)
	require.NoError(t, err)
	require.Equal(t, 0, status)
}

func TestInstructionCountIsTrackedInStats(t *testing.T) {
	container := emit.Container{Instructions: emit.Instructions{
		byte(emit.CONST_I32), 1, 0, 0, 0,
		byte(emit.HALT),
	}}
	machine := New(nil, nil)
	_, err := machine.Run(container)
	require.NoError(t, err)
	require.Equal(t, uint64(2), machine.Stats().InstructionsExecuted)
}
