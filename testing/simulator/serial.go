package simulator

import (
	"log"
	"time"

	"github.com/tarm/serial"
)

// ServeSerial runs an ELM327 line-protocol simulator over an already-open
// serial port (e.g. one end of a virtual null-modem pair), for exercising
// transport.SerialTransport without real vehicle hardware.
func ServeSerial(portName string, baud int) error {
	config := &serial.Config{Name: portName, Baud: baud}
	port, err := serial.OpenPort(config)
	if err != nil {
		return err
	}
	defer port.Close()

	log.Printf("Simulator listening on serial port %s", portName)

	sim := NewELM327(DefaultData())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sim.Tick()
			case <-stop:
				return
			}
		}
	}()

	go func() {
		buf := make([]byte, 256)
		for {
			n, _ := sim.Read(buf)
			if n > 0 {
				if _, err := port.Write(buf[:n]); err != nil {
					return
				}
				continue
			}
			time.Sleep(2 * time.Millisecond)
		}
	}()

	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			if _, werr := sim.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
