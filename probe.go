package i2cbus

// ProbeMode selects the primitive used to test whether an address answers.
type ProbeMode uint8

const (
	// ProbeWrite probes with a zero-length quick write.
	ProbeWrite ProbeMode = iota
	// ProbeRead probes with a single-byte read.
	ProbeRead
)

func (m ProbeMode) String() string {
	if m == ProbeWrite {
		return "quick-write"
	}
	return "byte-read"
}

// ProbeModeFor follows the i2cdetect convention: EEPROM-class ranges
// (0x30-0x37, 0x50-0x5F) can corrupt state on a quick write, most other
// device classes misbehave on a stray read, so the address window is split
// between the two primitives. Addresses outside the enumerated ranges get
// the read probe.
func ProbeModeFor(addr byte) ProbeMode {
	switch {
	case addr >= 0x03 && addr <= 0x2F,
		addr >= 0x38 && addr <= 0x4F,
		addr >= 0x60 && addr <= 0x77:
		return ProbeWrite
	default:
		return ProbeRead
	}
}
