//go:build i2cdiag

package i2cbus

import (
	"fmt"
	"runtime"
)

// callSite reports the function and source location of the operation that
// produced a failure. Only compiled in under the i2cdiag tag; the production
// error shape carries no call-site metadata.
func callSite() string {
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return fmt.Sprintf("%s %s:%d", fn.Name(), file, line)
}
