// Package adapter provides bus transports backed by external bridge chips
// rather than a native bus controller: the Microchip MCP2221 USB-HID bridge
// and any gobot platform adaptor.
package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/i2cbus"
	"github.com/mklimuk/i2cbus/cmd/i2cbus/console"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

// MCP2221 HID command codes.
const (
	cmdStatus    = 0x10
	cmdReadData  = 0x40
	cmdWriteData = 0x90
	cmdReadReq   = 0x91
)

var ErrBusBusy = errors.New("I2C engine is busy (command not completed)")
var ErrNotSupported = errors.New("not supported by the MCP2221 bridge")

// MCP2221 drives an I2C bus through the Microchip MCP2221 USB-HID bridge.
// It implements i2cbus.Transport. The slave address travels inside every
// 64-byte command frame, so SelectAddress only records it; the bridge has a
// single I2C engine and the bus number passed to Open is ignored beyond
// device discovery.
//
// The transport keeps no goroutine safety of its own; the managing bus
// serializes all calls.
type MCP2221 struct {
	request      []byte
	response     []byte
	responseWait time.Duration
	addr         byte
}

// Status reports the state of the bridge's I2C engine.
type Status struct {
	DataBufferCounter      int
	SpeedDivider           int
	Timeout                int
	CurrentAddress         string
	LastWriteRequestedSize uint16
	LastWriteSentSize      uint16
	ReadPending            int
}

var _ i2cbus.Transport = &MCP2221{}

func NewMCP2221() *MCP2221 {
	return &MCP2221{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 50 * time.Millisecond,
	}
}

// Open checks that exactly one bridge is attached and that its I2C engine
// answers a status request.
func (d *MCP2221) Open(ctx context.Context, bus int) error {
	_, err := d.status(ctx)
	if err != nil {
		return fmt.Errorf("could not reach MCP2221 adapter: %w", err)
	}
	return nil
}

// SelectAddress records the slave address used by subsequent frames.
func (d *MCP2221) SelectAddress(ctx context.Context, addr byte) error {
	d.addr = addr
	return nil
}

// SetPEC is not available on the bridge's I2C engine.
func (d *MCP2221) SetPEC(ctx context.Context, enabled bool) error {
	return ErrNotSupported
}

func (d *MCP2221) ReadByte(ctx context.Context) (byte, error) {
	buf := make([]byte, 1)
	if err := d.readFromAddr(ctx, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *MCP2221) WriteByte(ctx context.Context, value byte) error {
	return d.writeToAddr(ctx, []byte{value})
}

// WriteQuick issues a zero-length write transaction; the payload bit of an
// SMBus quick command cannot be expressed through the bridge and is dropped.
func (d *MCP2221) WriteQuick(ctx context.Context, value byte) error {
	return d.writeToAddr(ctx, nil)
}

func (d *MCP2221) ReadRegU8(ctx context.Context, reg byte) (byte, error) {
	if err := d.writeToAddr(ctx, []byte{reg}); err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if err := d.readFromAddr(ctx, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *MCP2221) WriteRegU8(ctx context.Context, reg, value byte) error {
	return d.writeToAddr(ctx, []byte{reg, value})
}

func (d *MCP2221) ReadRegU16(ctx context.Context, reg byte) (uint16, error) {
	if err := d.writeToAddr(ctx, []byte{reg}); err != nil {
		return 0, err
	}
	buf := make([]byte, 2)
	if err := d.readFromAddr(ctx, buf); err != nil {
		return 0, err
	}
	// SMBus words travel low byte first
	return binary.LittleEndian.Uint16(buf), nil
}

func (d *MCP2221) WriteRegU16(ctx context.Context, reg byte, value uint16) error {
	return d.writeToAddr(ctx, []byte{reg, byte(value), byte(value >> 8)})
}

// ReadBlock emulates the SMBus block read as a register-addressed burst;
// the bridge cannot frame the length byte, so the full buffer is read.
func (d *MCP2221) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	if err := d.writeToAddr(ctx, []byte{reg}); err != nil {
		return 0, err
	}
	if err := d.readFromAddr(ctx, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (d *MCP2221) WriteBlock(ctx context.Context, reg byte, data []byte) error {
	return d.writeToAddr(ctx, append([]byte{reg}, data...))
}

func (d *MCP2221) ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	return d.ReadBlock(ctx, reg, buf)
}

func (d *MCP2221) WriteI2CBlock(ctx context.Context, reg byte, data []byte) error {
	return d.WriteBlock(ctx, reg, data)
}

// Close cancels any pending transfer on the I2C engine. The HID device is
// opened per frame, so there is no descriptor to release.
func (d *MCP2221) Close() error {
	_, err := d.releaseBus(context.Background())
	return err
}

func (d *MCP2221) writeToAddr(ctx context.Context, buffer []byte) error {
	d.resetBuffers()
	d.request[0] = cmdWriteData
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = d.addr << 1
	if len(buffer) > 0 {
		copy(d.request[4:], buffer)
	}
	err := d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("write to %#02x failed: %w", d.addr, err)
	}
	if d.response[1] == 0x01 {
		return ErrBusBusy
	}
	return nil
}

func (d *MCP2221) readFromAddr(ctx context.Context, buffer []byte) error {
	d.resetBuffers()
	d.request[0] = cmdReadReq
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = d.addr<<1 + 1
	err := d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("bus read from %#02x failed: %w", d.addr, err)
	}
	d.request[0] = cmdReadData
	resetBuffer(d.response)
	err = d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

func (d *MCP2221) status(ctx context.Context) (*Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatus
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func (d *MCP2221) releaseBus(ctx context.Context) (*Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatus
	d.request[2] = 0x10
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *Status {
	/*
		9: Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
	*/
	status := &Status{
		DataBufferCounter: int(buffer[13]),
		SpeedDivider:      int(buffer[14]),
		Timeout:           int(buffer[15]),
		ReadPending:       int(buffer[25]),
		CurrentAddress:    hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (d *MCP2221) send(ctx context.Context, response bool) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) > 1 {
		return fmt.Errorf("ambiguous device identification")
	}
	if len(devs) == 0 {
		return fmt.Errorf("MCP2221 device not found")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	defer func() {
		_ = dev.Close()
	}()
	verbose := console.IsVerbose(ctx)
	if verbose {
		console.Printf("sending message to adapter:\n%s\n", hex.Dump(d.request))
	}
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	time.Sleep(d.responseWait)
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	if verbose {
		console.Printf("read message from adapter:\n%s\n", hex.Dump(d.response))
	}
	return nil
}

func (d *MCP2221) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := 0; i < len(buf)-1; i++ {
		buf[i] = 0x00
	}
}
