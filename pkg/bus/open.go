package bus

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultBusName selects the first I2C bus found by the host drivers.
const DefaultBusName = ""

// Open initializes the host drivers and opens the named I2C bus. The
// returned Closer releases the underlying bus.
func Open(name string) (*Shared, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return NewShared(b), b, nil
}
