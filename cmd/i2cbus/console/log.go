package console

import (
	"fmt"
	"io"
	"os"
)

const PictoPlug = "🔌"
const PictoSearch = "🔍"
const PictoPin = "📌"
const PictoStop = "🚫"

var writer io.Writer = os.Stdout

func SetOutput(w io.Writer) {
	writer = w
}

func PInfof(picto, msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, "%s %s\n", picto, fmt.Sprintf(msg, args...))
}

func Print(msg string) {
	_, _ = fmt.Fprintln(writer, msg)
}

func Printf(msg string, args ...interface{}) {
	_, _ = fmt.Fprintf(writer, msg, args...)
}
