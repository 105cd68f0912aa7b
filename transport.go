package i2cbus

import "context"

// BlockSize is the payload capacity of SMBus block operations.
const BlockSize = 32

// Transport is the OS/driver boundary of one physical I2C bus: a handle that
// can be opened lazily, pointed at a slave address and driven with the SMBus
// primitive catalog. Implementations are not required to be safe for
// concurrent use; Bus serializes every call it makes.
type Transport interface {
	// Open acquires the handle for the given bus number.
	Open(ctx context.Context, bus int) error
	// SelectAddress points the handle at a slave address. All primitives
	// below target the last selected address.
	SelectAddress(ctx context.Context, addr byte) error
	// SetPEC toggles packet error checking for subsequent transfers.
	SetPEC(ctx context.Context, enabled bool) error

	ReadByte(ctx context.Context) (byte, error)
	WriteByte(ctx context.Context, value byte) error
	WriteQuick(ctx context.Context, value byte) error
	ReadRegU8(ctx context.Context, reg byte) (byte, error)
	WriteRegU8(ctx context.Context, reg, value byte) error
	ReadRegU16(ctx context.Context, reg byte) (uint16, error)
	WriteRegU16(ctx context.Context, reg byte, value uint16) error
	// ReadBlock fills buf (up to BlockSize bytes) using the SMBus block
	// read framing and reports the transferred length.
	ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error)
	WriteBlock(ctx context.Context, reg byte, data []byte) error
	// ReadI2CBlock is the raw I2C block variant: same buffer contract,
	// no length byte on the wire.
	ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error)
	WriteI2CBlock(ctx context.Context, reg byte, data []byte) error

	// Close releases the handle. Callers must not reuse the transport
	// without a new Open.
	Close() error
}
