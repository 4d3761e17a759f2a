package forwarder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"astc/forwarder"
)

func newReady(t *testing.T) *forwarder.Forwarder {
	t.Helper()
	f := forwarder.New(nil)
	require.NoError(t, f.Init())
	return f
}

func TestDispatchUnregisteredIDReportsMiss(t *testing.T) {
	f := newReady(t)
	ret, code := f.Dispatch(0xFFFF, nil, nil)
	require.Equal(t, int64(0), ret)
	require.Equal(t, int32(-1), code)
}

func TestStrlenReadsNulTerminatedString(t *testing.T) {
	f := newReady(t)
	memory := append([]byte("hello"), 0)
	ret, code := f.Dispatch(0x0010, []int64{0}, memory)
	require.Equal(t, int32(0), code)
	require.Equal(t, int64(5), ret)
}

func TestAbsNegatesNegativeOperand(t *testing.T) {
	f := newReady(t)
	ret, code := f.Dispatch(0x0050, []int64{-7}, nil)
	require.Equal(t, int32(0), code)
	require.Equal(t, int64(7), ret)
}

func TestStatsCountTotalAndCategory(t *testing.T) {
	f := newReady(t)
	memory := append([]byte("x"), 0)
	f.Dispatch(0x0010, []int64{0}, memory) // strlen: string category
	f.Dispatch(0x0050, []int64{-1}, nil)   // abs: not tallied under any of the three named categories

	stats := f.Stats()
	require.Equal(t, uint64(2), stats.TotalCalls)
	require.Equal(t, uint64(1), stats.StringCalls)
}

func TestInitIsIdempotent(t *testing.T) {
	f := forwarder.New(nil)
	require.NoError(t, f.Init())
	require.NoError(t, f.Init())
}

func TestCleanupResetsStats(t *testing.T) {
	f := newReady(t)
	f.Dispatch(0x0050, []int64{-1}, nil)
	require.NotZero(t, f.Stats().TotalCalls)

	f.Cleanup()
	require.Zero(t, f.Stats().TotalCalls)
}

func TestAtoiParsesDecimalString(t *testing.T) {
	f := newReady(t)
	memory := append([]byte("123"), 0)
	ret, code := f.Dispatch(0x0060, []int64{0}, memory)
	require.Equal(t, int32(0), code)
	require.Equal(t, int64(123), ret)
}
