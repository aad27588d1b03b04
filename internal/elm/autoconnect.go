package elm

import (
	"fmt"

	"github.com/anodyne74/obdcore/internal/transport"
)

// AutoConnect tries each ranked serial port returned by
// transport.FindSerialPorts until one opens and answers 0100, returning the
// connected Driver and the port it landed on.
func AutoConnect(baud int) (*Driver, string, error) {
	ports := transport.FindSerialPorts()
	if len(ports) == 0 {
		return nil, "", fmt.Errorf("no ELM327 adapter found: check USB connection")
	}

	var lastErr error
	for _, port := range ports {
		t, err := transport.NewSerialTransport(port, baud)
		if err != nil {
			lastErr = err
			continue
		}
		d := New(t)
		if err := d.Open(); err != nil {
			lastErr = err
			_ = t.Close()
			continue
		}
		if !d.TestVehicleConnection() {
			lastErr = fmt.Errorf("port %s opened but did not answer 0100", port)
			_ = d.Close()
			continue
		}
		return d, port, nil
	}
	return nil, "", fmt.Errorf("auto-connect failed on all candidate ports: %w", lastErr)
}
