package i2cbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_LazyOpen(t *testing.T) {
	tr := &MockTransport{}
	bus := New(1, tr)
	assert.Equal(t, 0, tr.OpenCalls)
	_, err := bus.ReadByte(context.Background(), 0x48)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.OpenCalls)
	// already open, no second open
	_, err = bus.ReadByte(context.Background(), 0x48)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.OpenCalls)
}

func TestBus_OpenFailure(t *testing.T) {
	tr := &MockTransport{
		OpenFunc: func(bus int) error { return fmt.Errorf("no such device") },
	}
	bus := New(9, tr)
	_, err := bus.ReadByte(context.Background(), 0x48)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindOpen, failure.Kind)
	assert.Equal(t, 0, tr.SelectCalls)
	// handle never acquired, nothing to release
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, tr.CloseCalls)
}

func TestBus_SelectCaching(t *testing.T) {
	tr := &MockTransport{}
	bus := New(1, tr)
	ctx := context.Background()

	_, err := bus.ReadRegU8(ctx, 0x48, 0x00)
	require.NoError(t, err)
	_, err = bus.ReadRegU16(ctx, 0x48, 0x02)
	require.NoError(t, err)
	require.NoError(t, bus.WriteRegU8(ctx, 0x48, 0x01, 0x80))
	assert.Equal(t, 1, tr.SelectCalls, "same address must be selected once")

	_, err = bus.ReadRegU8(ctx, 0x49, 0x00)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.SelectCalls, "new address triggers one more select")

	_, err = bus.ReadRegU8(ctx, 0x48, 0x00)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.SelectCalls, "returning to a previous address selects again")
}

func TestBus_FailedSelectKeepsCache(t *testing.T) {
	var fail atomic.Bool
	tr := &MockTransport{
		SelectFunc: func(addr byte) error {
			if fail.Load() {
				return fmt.Errorf("ioctl failed")
			}
			return nil
		},
	}
	bus := New(1, tr)
	ctx := context.Background()

	_, err := bus.ReadByte(ctx, 0x10)
	require.NoError(t, err)
	require.Equal(t, 1, tr.SelectCalls)

	fail.Store(true)
	_, err = bus.ReadByte(ctx, 0x50)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindIOControl, failure.Kind)
	require.Equal(t, 2, tr.SelectCalls)

	// cache still holds 0x10, next operation there needs no select
	fail.Store(false)
	_, err = bus.ReadByte(ctx, 0x10)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.SelectCalls)

	// a retry of the failed address goes through the ioctl again
	_, err = bus.ReadByte(ctx, 0x50)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.SelectCalls)
}

func TestBus_IsReachable_SelectFailure(t *testing.T) {
	tr := &MockTransport{
		SelectFunc: func(addr byte) error { return fmt.Errorf("ioctl failed") },
	}
	bus := New(1, tr)
	assert.False(t, bus.IsReachable(context.Background(), 0x48))
	assert.Equal(t, 0, tr.WriteQuickCalls, "no probe after failed select")
	assert.Equal(t, 0, tr.ReadByteCalls, "no probe after failed select")
}

func TestBus_IsReachable_ProbeDispatch(t *testing.T) {
	tests := []struct {
		addr  byte
		write bool
	}{
		{0x03, true},
		{0x2F, true},
		{0x30, false},
		{0x37, false},
		{0x38, true},
		{0x4F, true},
		{0x50, false},
		{0x5F, false},
		{0x60, true},
		{0x77, true},
		{0x02, false},
		{0x78, false},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%#02x", test.addr), func(t *testing.T) {
			tr := &MockTransport{}
			bus := New(1, tr)
			assert.True(t, bus.IsReachable(context.Background(), test.addr))
			if test.write {
				assert.Equal(t, 1, tr.WriteQuickCalls)
				assert.Equal(t, 0, tr.ReadByteCalls)
			} else {
				assert.Equal(t, 0, tr.WriteQuickCalls)
				assert.Equal(t, 1, tr.ReadByteCalls)
			}
		})
	}
}

func TestBus_IsReachable_ProbeFailure(t *testing.T) {
	tr := &MockTransport{
		ReadByteFunc: func() (byte, error) { return 0, fmt.Errorf("remote i/o error") },
	}
	bus := New(1, tr)
	assert.False(t, bus.IsReachable(context.Background(), 0x50))
}

func TestBus_WordInterpretation(t *testing.T) {
	tests := []struct {
		word     uint16
		expected int16
	}{
		{0xFFFF, -1},
		{0x8000, -32768},
		{0x7FFF, 32767},
		{0x0000, 0},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%#04x", test.word), func(t *testing.T) {
			tr := &MockTransport{
				ReadRegU16Func: func(reg byte) (uint16, error) { return test.word, nil },
			}
			bus := New(1, tr)
			u, err := bus.ReadRegU16(context.Background(), 0x48, 0x00)
			require.NoError(t, err)
			assert.Equal(t, test.word, u)
			s, err := bus.ReadRegS16(context.Background(), 0x48, 0x00)
			require.NoError(t, err)
			assert.Equal(t, test.expected, s)
		})
	}
}

func TestBus_Read24(t *testing.T) {
	tests := []struct {
		name     string
		stream   [3]byte
		unsigned uint32
		signed   int32
	}{
		{"256", [3]byte{0x00, 0x01, 0x00}, 256, 256},
		{"max", [3]byte{0xFF, 0xFF, 0xFF}, 0xFFFFFF, -1},
		{"sign-bit", [3]byte{0x80, 0x00, 0x00}, 0x800000, -8388608},
		{"plain", [3]byte{0x01, 0x02, 0x03}, 0x010203, 0x010203},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next := 1
			tr := &MockTransport{
				ReadRegU8Func: func(reg byte) (byte, error) { return test.stream[0], nil },
				ReadByteFunc: func() (byte, error) {
					b := test.stream[next]
					next++
					return b, nil
				},
			}
			bus := New(1, tr)
			u, err := bus.ReadRegU24(context.Background(), 0x76, 0xFA)
			require.NoError(t, err)
			assert.Equal(t, test.unsigned, u)

			next = 1
			s, err := bus.ReadRegS24(context.Background(), 0x76, 0xFA)
			require.NoError(t, err)
			assert.Equal(t, test.signed, s)
		})
	}
}

func TestBus_Read24_AbortsOnSubReadFailure(t *testing.T) {
	calls := 0
	tr := &MockTransport{
		ReadByteFunc: func() (byte, error) {
			calls++
			if calls == 1 {
				return 0, fmt.Errorf("remote i/o error")
			}
			return 0xAB, nil
		},
	}
	bus := New(1, tr)
	_, err := bus.ReadRegU24(context.Background(), 0x76, 0xFA)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindRead, failure.Kind)
	assert.Equal(t, 1, tr.ReadByteCalls, "third byte must not be requested")
}

func TestBus_RegisterRoundTrip(t *testing.T) {
	regs := map[byte]byte{}
	tr := &MockTransport{
		WriteRegU8Func: func(reg, value byte) error {
			regs[reg] = value
			return nil
		},
		ReadRegU8Func: func(reg byte) (byte, error) {
			return regs[reg], nil
		},
	}
	bus := New(1, tr)
	ctx := context.Background()
	require.NoError(t, bus.WriteRegU8(ctx, 0x20, 0x0A, 0x5C))
	v, err := bus.ReadRegU8(ctx, 0x20, 0x0A)
	require.NoError(t, err)
	assert.Equal(t, byte(0x5C), v)
}

func TestBus_BlockReads(t *testing.T) {
	tr := &MockTransport{
		ReadBlockFunc: func(reg byte, buf []byte) (int, error) {
			for i := range buf {
				buf[i] = byte(i)
			}
			return len(buf), nil
		},
	}
	bus := New(1, tr)
	data, err := bus.ReadBlock(context.Background(), 0x50, 0x00)
	require.NoError(t, err)
	require.Len(t, data, BlockSize)
	assert.Equal(t, byte(31), data[31])

	_, err = bus.ReadI2CBlock(context.Background(), 0x50, 0x00)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.ReadI2CBlockCalls)
}

func TestBus_WriteFailureKind(t *testing.T) {
	tr := &MockTransport{
		WriteBlockFunc: func(reg byte, data []byte) error { return fmt.Errorf("remote i/o error") },
	}
	bus := New(1, tr)
	err := bus.WriteBlock(context.Background(), 0x50, 0x00, []byte{1, 2, 3})
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindWrite, failure.Kind)
}

func TestBus_SetPEC(t *testing.T) {
	var got bool
	tr := &MockTransport{
		SetPECFunc: func(enabled bool) error {
			got = enabled
			return nil
		},
	}
	bus := New(1, tr)
	require.NoError(t, bus.SetPEC(context.Background(), 0x48, true))
	assert.True(t, got)
	assert.Equal(t, 1, tr.SelectCalls)

	tr.SetPECFunc = func(enabled bool) error { return fmt.Errorf("not supported") }
	err := bus.SetPEC(context.Background(), 0x48, false)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, KindIOControl, failure.Kind)
}

func TestBus_CloseOnce(t *testing.T) {
	tr := &MockTransport{
		ReadByteFunc: func() (byte, error) { return 0, fmt.Errorf("remote i/o error") },
	}
	bus := New(1, tr)
	_, err := bus.ReadByte(context.Background(), 0x48)
	require.Error(t, err)
	// handle was opened even though the read failed
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
	assert.Equal(t, 1, tr.CloseCalls)
}

func TestBus_CloseWithoutOpen(t *testing.T) {
	tr := &MockTransport{}
	bus := New(1, tr)
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, tr.CloseCalls)
}

func TestBus_Exclusive(t *testing.T) {
	var order []byte
	tr := &MockTransport{
		ReadRegU8Func: func(reg byte) (byte, error) {
			order = append(order, reg)
			return 0x01, nil
		},
		WriteRegU8Func: func(reg, value byte) error {
			order = append(order, reg)
			return nil
		},
	}
	bus := New(1, tr)
	err := bus.Exclusive(context.Background(), func(tx *Tx) error {
		v, err := tx.ReadRegU8(context.Background(), 0x20, 0x0A)
		if err != nil {
			return err
		}
		return tx.WriteRegU8(context.Background(), 0x20, 0x0A, v|0x80)
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x0A}, order)
	assert.Equal(t, 1, tr.SelectCalls, "address cached across the batch")
}

func TestBus_Exclusive_ErrorPropagation(t *testing.T) {
	sentinel := errors.New("caller error")
	bus := New(1, &MockTransport{})
	err := bus.Exclusive(context.Background(), func(tx *Tx) error {
		return sentinel
	})
	assert.Same(t, sentinel, err)
}

func TestBus_Serialization(t *testing.T) {
	var inFlight atomic.Int32
	var overlaps atomic.Int32
	tr := &MockTransport{
		ReadRegU8Func: func(reg byte) (byte, error) {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return 0, nil
		},
		WriteRegU8Func: func(reg, value byte) error {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return nil
		},
	}
	bus := New(1, tr)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := byte(0x20 + i%4)
			for j := 0; j < 8; j++ {
				if j%2 == 0 {
					_, _ = bus.ReadRegU8(ctx, addr, byte(j))
				} else {
					_ = bus.WriteRegU8(ctx, addr, byte(j), 0xFF)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.Zero(t, overlaps.Load(), "transport operations interleaved")
	assert.Equal(t, 1, tr.OpenCalls)
}
