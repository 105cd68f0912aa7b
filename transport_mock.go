package i2cbus

import "context"

// MockTransport is a behavior-func test double for Transport. Every primitive
// delegates to the matching behavior function when one is set and otherwise
// succeeds with a zero value, so tests only wire the calls they care about.
// Call counters are updated on every invocation regardless of outcome.
//
// Example usage:
//
//	tr := &MockTransport{
//		ReadRegU16Func: func(reg byte) (uint16, error) { return 0xFFFF, nil },
//	}
//	bus := New(1, tr)
type MockTransport struct {
	OpenFunc          func(bus int) error
	SelectFunc        func(addr byte) error
	SetPECFunc        func(enabled bool) error
	ReadByteFunc      func() (byte, error)
	WriteByteFunc     func(value byte) error
	WriteQuickFunc    func(value byte) error
	ReadRegU8Func     func(reg byte) (byte, error)
	WriteRegU8Func    func(reg, value byte) error
	ReadRegU16Func    func(reg byte) (uint16, error)
	WriteRegU16Func   func(reg byte, value uint16) error
	ReadBlockFunc     func(reg byte, buf []byte) (int, error)
	WriteBlockFunc    func(reg byte, data []byte) error
	ReadI2CBlockFunc  func(reg byte, buf []byte) (int, error)
	WriteI2CBlockFunc func(reg byte, data []byte) error
	CloseFunc         func() error

	OpenCalls          int
	SelectCalls        int
	SetPECCalls        int
	ReadByteCalls      int
	WriteByteCalls     int
	WriteQuickCalls    int
	ReadRegU8Calls     int
	WriteRegU8Calls    int
	ReadRegU16Calls    int
	WriteRegU16Calls   int
	ReadBlockCalls     int
	WriteBlockCalls    int
	ReadI2CBlockCalls  int
	WriteI2CBlockCalls int
	CloseCalls         int
}

var _ Transport = &MockTransport{}

func (m *MockTransport) Open(ctx context.Context, bus int) error {
	m.OpenCalls++
	if m.OpenFunc != nil {
		return m.OpenFunc(bus)
	}
	return nil
}

func (m *MockTransport) SelectAddress(ctx context.Context, addr byte) error {
	m.SelectCalls++
	if m.SelectFunc != nil {
		return m.SelectFunc(addr)
	}
	return nil
}

func (m *MockTransport) SetPEC(ctx context.Context, enabled bool) error {
	m.SetPECCalls++
	if m.SetPECFunc != nil {
		return m.SetPECFunc(enabled)
	}
	return nil
}

func (m *MockTransport) ReadByte(ctx context.Context) (byte, error) {
	m.ReadByteCalls++
	if m.ReadByteFunc != nil {
		return m.ReadByteFunc()
	}
	return 0, nil
}

func (m *MockTransport) WriteByte(ctx context.Context, value byte) error {
	m.WriteByteCalls++
	if m.WriteByteFunc != nil {
		return m.WriteByteFunc(value)
	}
	return nil
}

func (m *MockTransport) WriteQuick(ctx context.Context, value byte) error {
	m.WriteQuickCalls++
	if m.WriteQuickFunc != nil {
		return m.WriteQuickFunc(value)
	}
	return nil
}

func (m *MockTransport) ReadRegU8(ctx context.Context, reg byte) (byte, error) {
	m.ReadRegU8Calls++
	if m.ReadRegU8Func != nil {
		return m.ReadRegU8Func(reg)
	}
	return 0, nil
}

func (m *MockTransport) WriteRegU8(ctx context.Context, reg, value byte) error {
	m.WriteRegU8Calls++
	if m.WriteRegU8Func != nil {
		return m.WriteRegU8Func(reg, value)
	}
	return nil
}

func (m *MockTransport) ReadRegU16(ctx context.Context, reg byte) (uint16, error) {
	m.ReadRegU16Calls++
	if m.ReadRegU16Func != nil {
		return m.ReadRegU16Func(reg)
	}
	return 0, nil
}

func (m *MockTransport) WriteRegU16(ctx context.Context, reg byte, value uint16) error {
	m.WriteRegU16Calls++
	if m.WriteRegU16Func != nil {
		return m.WriteRegU16Func(reg, value)
	}
	return nil
}

func (m *MockTransport) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	m.ReadBlockCalls++
	if m.ReadBlockFunc != nil {
		return m.ReadBlockFunc(reg, buf)
	}
	return len(buf), nil
}

func (m *MockTransport) WriteBlock(ctx context.Context, reg byte, data []byte) error {
	m.WriteBlockCalls++
	if m.WriteBlockFunc != nil {
		return m.WriteBlockFunc(reg, data)
	}
	return nil
}

func (m *MockTransport) ReadI2CBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	m.ReadI2CBlockCalls++
	if m.ReadI2CBlockFunc != nil {
		return m.ReadI2CBlockFunc(reg, buf)
	}
	return len(buf), nil
}

func (m *MockTransport) WriteI2CBlock(ctx context.Context, reg byte, data []byte) error {
	m.WriteI2CBlockCalls++
	if m.WriteI2CBlockFunc != nil {
		return m.WriteI2CBlockFunc(reg, data)
	}
	return nil
}

func (m *MockTransport) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
