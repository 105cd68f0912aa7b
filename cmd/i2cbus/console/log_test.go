package console

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutput(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	defer SetOutput(os.Stdout)

	Print("scan complete")
	Printf("%02x ", byte(0x48))
	PInfof(PictoSearch, "%d device(s) found", 3)

	assert.Equal(t, "scan complete\n48 🔍 3 device(s) found\n", out.String())
}
