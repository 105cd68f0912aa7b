package adapter

import (
	"context"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/i2cbus"
)

// Gobot adapts any gobot platform connector (nanopi, raspi, ...) to
// i2cbus.Transport. Gobot binds the slave address at connection time, so
// SelectAddress opens a per-address connection and keeps it for reuse.
type Gobot struct {
	connector i2c.Connector
	bus       int
	conns     map[byte]i2c.Connection
	current   i2c.Connection
}

var _ i2cbus.Transport = &Gobot{}

func NewGobot(connector i2c.Connector) *Gobot {
	return &Gobot{
		connector: connector,
		conns:     make(map[byte]i2c.Connection),
	}
}

// Open records the bus number and connects the underlying adaptor when it
// exposes a Connect hook (gobot adaptors do).
func (g *Gobot) Open(ctx context.Context, bus int) error {
	g.bus = bus
	if c, ok := g.connector.(interface{ Connect() error }); ok {
		if err := c.Connect(); err != nil {
			return fmt.Errorf("adaptor connect error: %w", err)
		}
	}
	return nil
}

func (g *Gobot) SelectAddress(ctx context.Context, addr byte) error {
	if conn, ok := g.conns[addr]; ok {
		g.current = conn
		return nil
	}
	conn, err := g.connector.GetI2cConnection(int(addr), g.bus)
	if err != nil {
		return fmt.Errorf("could not get connection for %#02x on bus %d: %w", addr, g.bus, err)
	}
	g.conns[addr] = conn
	g.current = conn
	return nil
}

// SetPEC is not exposed by gobot connections.
func (g *Gobot) SetPEC(ctx context.Context, enabled bool) error {
	return ErrNotSupported
}

func (g *Gobot) ReadByte(ctx context.Context) (byte, error) {
	conn, err := g.conn()
	if err != nil {
		return 0, err
	}
	return conn.ReadByte()
}

func (g *Gobot) WriteByte(ctx context.Context, value byte) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteByte(value)
}

// WriteQuick emulates the quick transaction as a zero-length write; the
// payload bit is dropped.
func (g *Gobot) WriteQuick(ctx context.Context, value byte) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteBytes(nil)
}

func (g *Gobot) ReadRegU8(ctx context.Context, reg byte) (byte, error) {
	conn, err := g.conn()
	if err != nil {
		return 0, err
	}
	return conn.ReadByteData(reg)
}

func (g *Gobot) WriteRegU8(ctx context.Context, reg, value byte) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteByteData(reg, value)
}

func (g *Gobot) ReadRegU16(ctx context.Context, reg byte) (uint16, error) {
	conn, err := g.conn()
	if err != nil {
		return 0, err
	}
	return conn.ReadWordData(reg)
}

func (g *Gobot) WriteRegU16(ctx context.Context, reg byte, value uint16) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteWordData(reg, value)
}

func (g *Gobot) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	conn, err := g.conn()
	if err != nil {
		return 0, err
	}
	if err := conn.ReadBlockData(reg, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (g *Gobot) WriteBlock(ctx context.Context, reg byte, data []byte) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteBlockData(reg, data)
}

// ReadI2CBlock falls back to the generic block read; gobot exposes a single
// block framing.
func (g *Gobot) ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	return g.ReadBlock(ctx, reg, buf)
}

func (g *Gobot) WriteI2CBlock(ctx context.Context, reg byte, data []byte) error {
	conn, err := g.conn()
	if err != nil {
		return err
	}
	return conn.WriteBytes(append([]byte{reg}, data...))
}

func (g *Gobot) Close() error {
	var first error
	for _, conn := range g.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	g.conns = make(map[byte]i2c.Connection)
	g.current = nil
	if c, ok := g.connector.(interface{ Finalize() error }); ok {
		if err := c.Finalize(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (g *Gobot) conn() (i2c.Connection, error) {
	if g.current == nil {
		return nil, fmt.Errorf("no address selected")
	}
	return g.current, nil
}
