package status

import (
	"fmt"
	"io"
	"os"

	"go.bug.st/serial"
)

// Stdout selects standard output as the status sink.
const Stdout = "stdout"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenSink opens the status console: standard output for "" or "stdout",
// otherwise the named serial device at baud.
func OpenSink(port string, baud int) (io.WriteCloser, error) {
	if port == "" || port == Stdout {
		return nopCloser{os.Stdout}, nil
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open status console %s: %w", port, err)
	}
	return p, nil
}
