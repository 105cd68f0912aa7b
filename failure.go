package i2cbus

import "fmt"

// Kind classifies a bus failure by the primitive family that produced it.
type Kind uint8

const (
	// KindOpen means the bus device handle could not be acquired.
	KindOpen Kind = iota + 1
	// KindRead means a read primitive reported failure.
	KindRead
	// KindWrite means a write primitive reported failure.
	KindWrite
	// KindIOControl means an address select or feature control call failed.
	KindIOControl
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	case KindIOControl:
		return "io-control"
	default:
		return "unknown"
	}
}

// Failure is the error type returned by every Bus operation. Transports
// return plain errors; Bus wraps them with the kind of the failed primitive.
type Failure struct {
	Kind   Kind
	Detail string
	cause  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("i2c %s failure: %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error {
	return f.cause
}

func newFailure(kind Kind, cause error, format string, args ...any) *Failure {
	detail := fmt.Sprintf(format, args...)
	if site := callSite(); site != "" {
		detail += " [" + site + "]"
	}
	return &Failure{Kind: kind, Detail: detail, cause: cause}
}
