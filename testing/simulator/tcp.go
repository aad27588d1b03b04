package simulator

import (
	"io"
	"log"
	"net"
	"time"
)

// StartTCPServer runs an ELM327 line-protocol simulator on addr, one
// simulated adapter per accepted connection, so transport.TCPTransport
// (and anything built on it) can be exercised without real hardware.
func StartTCPServer(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	log.Printf("Simulator listening on %s", addr)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("Error accepting connection: %v", err)
			continue
		}
		go serveConnection(conn)
	}
}

func serveConnection(conn net.Conn) {
	defer conn.Close()
	log.Printf("New connection from %s", conn.RemoteAddr())

	sim := NewELM327(DefaultData())

	stop := make(chan struct{})
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
	defer close(stop)

	go pumpReads(conn, sim)

	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if _, werr := sim.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("Connection %s read error: %v", conn.RemoteAddr(), err)
			}
			return
		}
	}
}

// pumpReads forwards whatever the simulator queues back to conn.
func pumpReads(conn net.Conn, sim *ELM327) {
	buf := make([]byte, 256)
	for {
		n, _ := sim.Read(buf)
		if n > 0 {
			if _, err := conn.Write(buf[:n]); err != nil {
				return
			}
			continue
		}
		time.Sleep(2 * time.Millisecond)
	}
}
