// Package periph implements the bus transport on top of the periph.io
// host drivers. It is the portable fallback when the i2c-dev SMBus ioctls
// are not available: primitives are mapped onto raw write/read transactions.
package periph

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/i2cbus"
)

var ErrNotSupported = errors.New("not supported by the periph transport")

// Transport drives a bus through periph.io. The slave address is carried
// per transaction, so SelectAddress only records it.
type Transport struct {
	bus  i2c.BusCloser
	addr uint16
}

var _ i2cbus.Transport = &Transport{}

func New() *Transport {
	return &Transport{}
}

// NewBus wires a periph transport into a managed bus.
func NewBus(number int) *i2cbus.Bus {
	return i2cbus.New(number, New())
}

func (t *Transport) Open(ctx context.Context, bus int) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("could not init host: %w", err)
	}
	b, err := i2creg.Open(strconv.Itoa(bus))
	if err != nil {
		return fmt.Errorf("could not open i2c bus %d: %w", bus, err)
	}
	t.bus = b
	return nil
}

func (t *Transport) Close() error {
	if t.bus == nil {
		return nil
	}
	err := t.bus.Close()
	t.bus = nil
	return err
}

func (t *Transport) SelectAddress(ctx context.Context, addr byte) error {
	t.addr = uint16(addr)
	return nil
}

// SetPEC has no equivalent in the periph transaction model.
func (t *Transport) SetPEC(ctx context.Context, enabled bool) error {
	return ErrNotSupported
}

func (t *Transport) ReadByte(ctx context.Context) (byte, error) {
	var buf [1]byte
	if err := t.tx(nil, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (t *Transport) WriteByte(ctx context.Context, value byte) error {
	return t.tx([]byte{value}, nil)
}

// WriteQuick emulates the quick transaction as a zero-length write; the
// payload bit is dropped.
func (t *Transport) WriteQuick(ctx context.Context, value byte) error {
	return t.tx([]byte{}, nil)
}

func (t *Transport) ReadRegU8(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	if err := t.tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (t *Transport) WriteRegU8(ctx context.Context, reg, value byte) error {
	return t.tx([]byte{reg, value}, nil)
}

func (t *Transport) ReadRegU16(ctx context.Context, reg byte) (uint16, error) {
	var buf [2]byte
	if err := t.tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	// SMBus words travel low byte first
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func (t *Transport) WriteRegU16(ctx context.Context, reg byte, value uint16) error {
	return t.tx([]byte{reg, byte(value), byte(value >> 8)}, nil)
}

// ReadBlock emulates the SMBus block read as a register-addressed burst of
// len(buf) bytes; the raw transaction model cannot frame the length byte.
func (t *Transport) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	if err := t.tx([]byte{reg}, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (t *Transport) WriteBlock(ctx context.Context, reg byte, data []byte) error {
	return t.tx(append([]byte{reg}, data...), nil)
}

func (t *Transport) ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	return t.ReadBlock(ctx, reg, buf)
}

func (t *Transport) WriteI2CBlock(ctx context.Context, reg byte, data []byte) error {
	return t.WriteBlock(ctx, reg, data)
}

func (t *Transport) tx(w, r []byte) error {
	if t.bus == nil {
		return fmt.Errorf("bus not open")
	}
	if err := t.bus.Tx(t.addr, w, r); err != nil {
		return fmt.Errorf("transaction with %#02x failed: %w", t.addr, err)
	}
	return nil
}
