package i2cbus

import "context"

// Tx is the view of a Bus handed to an Exclusive callback. It exposes the
// full operation set against the already-held bus, so sub-operations run
// without re-acquiring the lock and without any other caller interleaving.
// A Tx must not escape its callback.
type Tx struct {
	b *Bus
}

// Bus returns the number of the bus the batch runs on.
func (tx *Tx) Bus() int {
	return tx.b.number
}

func (tx *Tx) IsReachable(ctx context.Context, addr byte) bool {
	return tx.b.isReachable(ctx, addr)
}

func (tx *Tx) ReadByte(ctx context.Context, addr byte) (byte, error) {
	return tx.b.readByte(ctx, addr)
}

func (tx *Tx) ReadRegU8(ctx context.Context, addr, reg byte) (byte, error) {
	return tx.b.readRegU8(ctx, addr, reg)
}

func (tx *Tx) ReadRegU16(ctx context.Context, addr, reg byte) (uint16, error) {
	return tx.b.readRegU16(ctx, addr, reg)
}

func (tx *Tx) ReadRegS16(ctx context.Context, addr, reg byte) (int16, error) {
	v, err := tx.b.readRegU16(ctx, addr, reg)
	return int16(v), err
}

func (tx *Tx) ReadRegU24(ctx context.Context, addr, reg byte) (uint32, error) {
	v, err := tx.b.read24(ctx, addr, reg)
	return v >> 8, err
}

func (tx *Tx) ReadRegS24(ctx context.Context, addr, reg byte) (int32, error) {
	v, err := tx.b.read24(ctx, addr, reg)
	return int32(v) >> 8, err
}

func (tx *Tx) ReadBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	return tx.b.readBlock(ctx, addr, reg)
}

func (tx *Tx) ReadI2CBlock(ctx context.Context, addr, reg byte) ([]byte, error) {
	return tx.b.readI2CBlock(ctx, addr, reg)
}

func (tx *Tx) WriteByte(ctx context.Context, addr, value byte) error {
	return tx.b.writeByte(ctx, addr, value)
}

func (tx *Tx) WriteQuick(ctx context.Context, addr, value byte) error {
	return tx.b.writeQuick(ctx, addr, value)
}

func (tx *Tx) WriteRegU8(ctx context.Context, addr, reg, value byte) error {
	return tx.b.writeRegU8(ctx, addr, reg, value)
}

func (tx *Tx) WriteRegU16(ctx context.Context, addr, reg byte, value uint16) error {
	return tx.b.writeRegU16(ctx, addr, reg, value)
}

func (tx *Tx) WriteBlock(ctx context.Context, addr, reg byte, data []byte) error {
	return tx.b.writeBlock(ctx, addr, reg, data)
}

func (tx *Tx) WriteI2CBlock(ctx context.Context, addr, reg byte, data []byte) error {
	return tx.b.writeI2CBlock(ctx, addr, reg, data)
}

func (tx *Tx) SetPEC(ctx context.Context, addr byte, enabled bool) error {
	return tx.b.setPEC(ctx, addr, enabled)
}
