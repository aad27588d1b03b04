package main

import (
	"flag"
	"log"

	"github.com/anodyne74/obdcore/testing/simulator"
)

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial device to serve the simulator on")
	baud := flag.Int("baud", 38400, "baud rate")
	flag.Parse()

	if err := simulator.ServeSerial(*port, *baud); err != nil {
		log.Fatal(err)
	}
}
