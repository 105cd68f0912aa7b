package i2cbus

import (
	"context"
	"sync"
)

// addrNone marks the selection cache as empty.
const addrNone int16 = -1

// Bus serializes all access to one physical I2C bus and exposes
// address-scoped SMBus-style operations on top of a Transport.
//
// The transport handle is opened lazily on the first operation that selects
// an address and released by Close. The bus caches the last successfully
// selected slave address and skips the select ioctl while consecutive
// operations target the same device, which is why one bus number must be
// owned by exactly one Bus instance: a second handle on the same device
// node would move the driver's address state behind the cache's back.
//
// All methods are safe for concurrent use. Calls are serialized; no two
// transport operations ever interleave.
type Bus struct {
	mx      sync.Mutex
	number  int
	tr      Transport
	opened  bool
	current int16
}

// New creates a manager for the bus with the given number. The transport is
// not touched until the first operation.
func New(number int, tr Transport) *Bus {
	return &Bus{number: number, tr: tr, current: addrNone}
}

// Number returns the bus number this manager owns.
func (b *Bus) Number() int {
	return b.number
}

// Close releases the transport handle if it was opened. It is safe to call
// after a failed operation and safe to call more than once; the handle is
// released exactly once.
func (b *Bus) Close() error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if !b.opened {
		return nil
	}
	b.opened = false
	b.current = addrNone
	return b.tr.Close()
}

// Exclusive runs fn while holding the bus for the whole batch. Sub-operations
// issued through the Tx execute back to back with no other caller able to
// slip in between them, which makes multi-step sequences such as
// read-modify-write safe against address re-selection by a third party.
// Errors returned by fn propagate unchanged.
func (b *Bus) Exclusive(ctx context.Context, fn func(tx *Tx) error) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return fn(&Tx{b: b})
}

// IsReachable reports whether a device answers at the given address. It never
// returns an error: a failed open or select counts as unreachable, and no
// probe primitive is issued in that case. The probe primitive is chosen per
// address range, see ProbeModeFor.
func (b *Bus) IsReachable(ctx context.Context, addr byte) bool {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.isReachable(ctx, addr)
}

// ReadByte reads a single byte from addr without addressing a register.
func (b *Bus) ReadByte(ctx context.Context, addr byte) (byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.readByte(ctx, addr)
}

// ReadRegU8 reads a single byte from a register of the device at addr.
func (b *Bus) ReadRegU8(ctx context.Context, addr, reg byte) (byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.readRegU8(ctx, addr, reg)
}

// ReadRegU16 reads a 16-bit word from a register of the device at addr.
func (b *Bus) ReadRegU16(ctx context.Context, addr, reg byte) (uint16, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.readRegU16(ctx, addr, reg)
}

// ReadRegS16 reads the same word as ReadRegU16 reinterpreted as a
// two's-complement signed value.
func (b *Bus) ReadRegS16(ctx context.Context, addr, reg byte) (int16, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	v, err := b.readRegU16(ctx, addr, reg)
	return int16(v), err
}

// ReadRegU24 reads a 24-bit big-endian value starting at reg. The two low
// bytes come from unaddressed sequential reads, relying on the device
// auto-incrementing its register pointer. Three separate bus transactions;
// the first sub-read to fail aborts the composite.
func (b *Bus) ReadRegU24(ctx context.Context, addr, reg byte) (uint32, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	v, err := b.read24(ctx, addr, reg)
	return v >> 8, err
}

// ReadRegS24 is the signed variant of ReadRegU24; the 24-bit pattern is
// sign-extended into the int32.
func (b *Bus) ReadRegS24(ctx context.Context, addr, reg byte) (int32, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	v, err := b.read24(ctx, addr, reg)
	return int32(v) >> 8, err
}

// ReadBlock reads a block of up to BlockSize bytes from a register using the
// SMBus block framing.
func (b *Bus) ReadBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.readBlock(ctx, addr, reg)
}

// ReadI2CBlock reads a block of up to BlockSize bytes from a register using
// the raw I2C block framing.
func (b *Bus) ReadI2CBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.readI2CBlock(ctx, addr, reg)
}

// WriteByte writes a single byte to addr without addressing a register.
func (b *Bus) WriteByte(ctx context.Context, addr, value byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeByte(ctx, addr, value)
}

// WriteQuick issues an SMBus quick transaction carrying only the given bit.
func (b *Bus) WriteQuick(ctx context.Context, addr, value byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeQuick(ctx, addr, value)
}

// WriteRegU8 writes a single byte to a register of the device at addr.
func (b *Bus) WriteRegU8(ctx context.Context, addr, reg, value byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeRegU8(ctx, addr, reg, value)
}

// WriteRegU16 writes a 16-bit word to a register of the device at addr.
func (b *Bus) WriteRegU16(ctx context.Context, addr, reg byte, value uint16) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeRegU16(ctx, addr, reg, value)
}

// WriteBlock writes data to a register using the SMBus block framing. The
// length on the wire is len(data).
func (b *Bus) WriteBlock(ctx context.Context, addr, reg byte, data []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeBlock(ctx, addr, reg, data)
}

// WriteI2CBlock writes data to a register using the raw I2C block framing.
func (b *Bus) WriteI2CBlock(ctx context.Context, addr, reg byte, data []byte) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.writeI2CBlock(ctx, addr, reg, data)
}

// SetPEC enables or disables packet error checking for the device at addr.
func (b *Bus) SetPEC(ctx context.Context, addr byte, enabled bool) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.setPEC(ctx, addr, enabled)
}

// ensureOpen opens the transport handle on first use. No-op when already open.
func (b *Bus) ensureOpen(ctx context.Context) error {
	if b.opened {
		return nil
	}
	if err := b.tr.Open(ctx, b.number); err != nil {
		return newFailure(KindOpen, err, "could not open bus %d: %v", b.number, err)
	}
	b.opened = true
	return nil
}

// selectAddress points the transport at addr, skipping the ioctl when the
// cache already holds it. The cache is updated only on success: after a
// failed select the driver's state is unknown, so the next operation selects
// again from scratch.
func (b *Bus) selectAddress(ctx context.Context, addr byte) error {
	if err := b.ensureOpen(ctx); err != nil {
		return err
	}
	if b.current == int16(addr) {
		return nil
	}
	if err := b.tr.SelectAddress(ctx, addr); err != nil {
		return newFailure(KindIOControl, err, "could not select address %#02x on bus %d: %v", addr, b.number, err)
	}
	b.current = int16(addr)
	return nil
}

func (b *Bus) isReachable(ctx context.Context, addr byte) bool {
	if err := b.selectAddress(ctx, addr); err != nil {
		return false
	}
	var err error
	switch ProbeModeFor(addr) {
	case ProbeWrite:
		err = b.tr.WriteQuick(ctx, 0)
	default:
		_, err = b.tr.ReadByte(ctx)
	}
	return err == nil
}

func (b *Bus) readByte(ctx context.Context, addr byte) (byte, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return 0, err
	}
	v, err := b.tr.ReadByte(ctx)
	if err != nil {
		return 0, newFailure(KindRead, err, "byte read from %#02x failed: %v", addr, err)
	}
	return v, nil
}

func (b *Bus) readRegU8(ctx context.Context, addr, reg byte) (byte, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return 0, err
	}
	v, err := b.tr.ReadRegU8(ctx, reg)
	if err != nil {
		return 0, newFailure(KindRead, err, "byte read from %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return v, nil
}

func (b *Bus) readRegU16(ctx context.Context, addr, reg byte) (uint16, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return 0, err
	}
	v, err := b.tr.ReadRegU16(ctx, reg)
	if err != nil {
		return 0, newFailure(KindRead, err, "word read from %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return v, nil
}

// read24 assembles one register-addressed byte read and two unaddressed
// sequential byte reads into the high 24 bits of a uint32. The sequential
// reads assume the device auto-increments its internal register pointer;
// that assumption is undocumented for some parts and should be validated
// against real hardware per device.
func (b *Bus) read24(ctx context.Context, addr, reg byte) (uint32, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return 0, err
	}
	hi, err := b.tr.ReadRegU8(ctx, reg)
	if err != nil {
		return 0, newFailure(KindRead, err, "24-bit read from %#02x reg %#02x failed: %v", addr, reg, err)
	}
	mid, err := b.tr.ReadByte(ctx)
	if err != nil {
		return 0, newFailure(KindRead, err, "24-bit read from %#02x reg %#02x failed on second byte: %v", addr, reg, err)
	}
	lo, err := b.tr.ReadByte(ctx)
	if err != nil {
		return 0, newFailure(KindRead, err, "24-bit read from %#02x reg %#02x failed on third byte: %v", addr, reg, err)
	}
	return uint32(hi)<<24 | uint32(mid)<<16 | uint32(lo)<<8, nil
}

func (b *Bus) readBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return nil, err
	}
	buf := make([]byte, BlockSize)
	n, err := b.tr.ReadBlock(ctx, reg, buf)
	if err != nil {
		return nil, newFailure(KindRead, err, "block read from %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return buf[:n], nil
}

func (b *Bus) readI2CBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	if err := b.selectAddress(ctx, addr); err != nil {
		return nil, err
	}
	buf := make([]byte, BlockSize)
	n, err := b.tr.ReadI2CBlock(ctx, reg, buf)
	if err != nil {
		return nil, newFailure(KindRead, err, "i2c block read from %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return buf[:n], nil
}

func (b *Bus) writeByte(ctx context.Context, addr, value byte) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteByte(ctx, value); err != nil {
		return newFailure(KindWrite, err, "byte write to %#02x failed: %v", addr, err)
	}
	return nil
}

func (b *Bus) writeQuick(ctx context.Context, addr, value byte) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteQuick(ctx, value); err != nil {
		return newFailure(KindWrite, err, "quick write to %#02x failed: %v", addr, err)
	}
	return nil
}

func (b *Bus) writeRegU8(ctx context.Context, addr, reg, value byte) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteRegU8(ctx, reg, value); err != nil {
		return newFailure(KindWrite, err, "byte write to %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return nil
}

func (b *Bus) writeRegU16(ctx context.Context, addr, reg byte, value uint16) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteRegU16(ctx, reg, value); err != nil {
		return newFailure(KindWrite, err, "word write to %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return nil
}

func (b *Bus) writeBlock(ctx context.Context, addr, reg byte, data []byte) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteBlock(ctx, reg, data); err != nil {
		return newFailure(KindWrite, err, "block write to %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return nil
}

func (b *Bus) writeI2CBlock(ctx context.Context, addr, reg byte, data []byte) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.WriteI2CBlock(ctx, reg, data); err != nil {
		return newFailure(KindWrite, err, "i2c block write to %#02x reg %#02x failed: %v", addr, reg, err)
	}
	return nil
}

func (b *Bus) setPEC(ctx context.Context, addr byte, enabled bool) error {
	if err := b.selectAddress(ctx, addr); err != nil {
		return err
	}
	if err := b.tr.SetPEC(ctx, enabled); err != nil {
		return newFailure(KindIOControl, err, "could not set PEC=%t for %#02x: %v", enabled, addr, err)
	}
	return nil
}
