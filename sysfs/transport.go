// Package sysfs implements the bus transport for Linux /dev/i2c-N device
// nodes using the i2c-dev SMBus ioctl interface.
//
// See https://www.kernel.org/doc/Documentation/i2c/dev-interface for the
// ioctl catalog this maps onto.
package sysfs

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mklimuk/i2cbus"
)

// i2c-dev ioctl requests.
const (
	i2cSlave = 0x0703
	i2cPEC   = 0x0708
	i2cSMBus = 0x0720
)

// SMBus transaction direction.
const (
	smbusWrite = 0
	smbusRead  = 1
)

// SMBus transaction types.
const (
	smbusQuick        = 0
	smbusByte         = 1
	smbusByteData     = 2
	smbusWordData     = 3
	smbusBlockData    = 5
	smbusI2CBlockData = 8
)

const blockMax = i2cbus.BlockSize

// smbusData mirrors union i2c_smbus_data: one byte, one word or a block of
// up to 32 bytes preceded by a length byte (plus one byte of PEC headroom).
type smbusData [blockMax + 2]byte

type smbusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      *smbusData
}

// Transport drives one /dev/i2c-N device node. It implements
// i2cbus.Transport and performs no locking of its own.
type Transport struct {
	f *os.File
}

var _ i2cbus.Transport = &Transport{}

// New returns an unopened transport. The device node is chosen by the bus
// number passed to Open.
func New() *Transport {
	return &Transport{}
}

// NewBus is a convenience constructor wiring a sysfs transport into a
// managed bus for /dev/i2c-<number>.
func NewBus(number int) *i2cbus.Bus {
	return i2cbus.New(number, New())
}

func (t *Transport) Open(ctx context.Context, bus int) error {
	dev := fmt.Sprintf("/dev/i2c-%d", bus)
	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", dev, err)
	}
	t.f = f
	return nil
}

func (t *Transport) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f = nil
	return err
}

func (t *Transport) SelectAddress(ctx context.Context, addr byte) error {
	if err := t.ioctl(i2cSlave, uintptr(addr)); err != nil {
		return fmt.Errorf("could not select slave %#02x: %w", addr, err)
	}
	return nil
}

func (t *Transport) SetPEC(ctx context.Context, enabled bool) error {
	var v uintptr
	if enabled {
		v = 1
	}
	if err := t.ioctl(i2cPEC, v); err != nil {
		return fmt.Errorf("could not set PEC=%t: %w", enabled, err)
	}
	return nil
}

func (t *Transport) ReadByte(ctx context.Context) (byte, error) {
	var data smbusData
	if err := t.smbus(smbusRead, 0, smbusByte, &data); err != nil {
		return 0, fmt.Errorf("smbus byte read: %w", err)
	}
	return data[0], nil
}

func (t *Transport) WriteByte(ctx context.Context, value byte) error {
	if err := t.smbus(smbusWrite, value, smbusByte, nil); err != nil {
		return fmt.Errorf("smbus byte write: %w", err)
	}
	return nil
}

func (t *Transport) WriteQuick(ctx context.Context, value byte) error {
	// for quick transactions the direction field carries the payload bit
	if err := t.smbus(value, 0, smbusQuick, nil); err != nil {
		return fmt.Errorf("smbus quick write: %w", err)
	}
	return nil
}

func (t *Transport) ReadRegU8(ctx context.Context, reg byte) (byte, error) {
	var data smbusData
	if err := t.smbus(smbusRead, reg, smbusByteData, &data); err != nil {
		return 0, fmt.Errorf("smbus byte data read: %w", err)
	}
	return data[0], nil
}

func (t *Transport) WriteRegU8(ctx context.Context, reg, value byte) error {
	var data smbusData
	data[0] = value
	if err := t.smbus(smbusWrite, reg, smbusByteData, &data); err != nil {
		return fmt.Errorf("smbus byte data write: %w", err)
	}
	return nil
}

func (t *Transport) ReadRegU16(ctx context.Context, reg byte) (uint16, error) {
	var data smbusData
	if err := t.smbus(smbusRead, reg, smbusWordData, &data); err != nil {
		return 0, fmt.Errorf("smbus word data read: %w", err)
	}
	return binary.NativeEndian.Uint16(data[0:2]), nil
}

func (t *Transport) WriteRegU16(ctx context.Context, reg byte, value uint16) error {
	var data smbusData
	binary.NativeEndian.PutUint16(data[0:2], value)
	if err := t.smbus(smbusWrite, reg, smbusWordData, &data); err != nil {
		return fmt.Errorf("smbus word data write: %w", err)
	}
	return nil
}

func (t *Transport) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	var data smbusData
	if err := t.smbus(smbusRead, reg, smbusBlockData, &data); err != nil {
		return 0, fmt.Errorf("smbus block read: %w", err)
	}
	n := int(data[0])
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf, data[1:1+n])
	return n, nil
}

func (t *Transport) WriteBlock(ctx context.Context, reg byte, data []byte) error {
	if len(data) > blockMax {
		return fmt.Errorf("block too large: %d > %d", len(data), blockMax)
	}
	var d smbusData
	d[0] = byte(len(data))
	copy(d[1:], data)
	if err := t.smbus(smbusWrite, reg, smbusBlockData, &d); err != nil {
		return fmt.Errorf("smbus block write: %w", err)
	}
	return nil
}

func (t *Transport) ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	n := len(buf)
	if n > blockMax {
		n = blockMax
	}
	var data smbusData
	data[0] = byte(n)
	if err := t.smbus(smbusRead, reg, smbusI2CBlockData, &data); err != nil {
		return 0, fmt.Errorf("i2c block read: %w", err)
	}
	n = int(data[0])
	if n > len(buf) {
		n = len(buf)
	}
	copy(buf, data[1:1+n])
	return n, nil
}

func (t *Transport) WriteI2CBlock(ctx context.Context, reg byte, data []byte) error {
	if len(data) > blockMax {
		return fmt.Errorf("block too large: %d > %d", len(data), blockMax)
	}
	var d smbusData
	d[0] = byte(len(data))
	copy(d[1:], data)
	if err := t.smbus(smbusWrite, reg, smbusI2CBlockData, &d); err != nil {
		return fmt.Errorf("i2c block write: %w", err)
	}
	return nil
}

func (t *Transport) smbus(readWrite, command byte, size uint32, data *smbusData) error {
	if t.f == nil {
		return fmt.Errorf("bus not open")
	}
	args := smbusIoctlData{
		readWrite: readWrite,
		command:   command,
		size:      size,
		data:      data,
	}
	// the uintptr conversion must happen inside the Syscall argument list
	// so the pointer stays valid if the stack moves
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(), i2cSMBus, uintptr(unsafe.Pointer(&args))); errno != 0 {
		return errno
	}
	return nil
}

// ioctl issues a request with a scalar argument.
func (t *Transport) ioctl(req, arg uintptr) error {
	if t.f == nil {
		return fmt.Errorf("bus not open")
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, t.f.Fd(), req, arg); errno != 0 {
		return errno
	}
	return nil
}
