package session

import (
	"fmt"

	"github.com/anodyne74/obdcore/internal/datastore"
	"github.com/anodyne74/obdcore/internal/transport"
)

// AutoConnect ranks candidate serial devices with transport.FindSerialPorts
// and opens a Session on the first one that answers Connect successfully,
// closing every port it rejects along the way. Mirrors the original
// adapter's find_ports + auto_connect behavior of trying each likely
// USB-serial candidate in turn rather than requiring an exact device path.
func AutoConnect(baud int, manufacturerHint string, store datastore.Store) (*Session, error) {
	ports := transport.FindSerialPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("session: no candidate serial ports found")
	}

	var lastErr error
	for _, port := range ports {
		t, err := transport.NewSerialTransport(port, baud)
		if err != nil {
			lastErr = err
			continue
		}

		s := New(t, manufacturerHint, store)
		if err := s.Connect(); err != nil {
			lastErr = fmt.Errorf("%s: %w", port, err)
			s.Disconnect()
			continue
		}
		return s, nil
	}
	return nil, fmt.Errorf("session: no candidate port answered: %w", lastErr)
}
