// depthprobe opens the depth processor over USB, prints its serial number
// and firmware versions, and exits: the smallest program that proves the
// transport and typestate wiring talk to real hardware.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nasa-jpl/k4ausb/depthmcu"
	"github.com/nasa-jpl/k4ausb/k4aconfig"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

func main() {
	cfgPath := flag.String("conf", "depthprobe.yml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := k4aconfig.Load(*cfgPath)
	if err != nil {
		log.Fatal("load config:", err)
	}

	conn, err := usbcommand.Open(usbcommand.DepthProcessor, cfg.DeviceIndex, usbcommand.WithTimeout(cfg.Timeout()))
	if err != nil {
		log.Fatal("open depth processor:", err)
	}
	defer conn.Close()

	off := depthmcu.New(conn)
	fmt.Println("serial:", conn.SerialNumber())

	version, err := off.Version()
	if err != nil {
		log.Fatal("version:", err)
	}
	fmt.Printf("firmware: rgb=%+v depth=%+v audio=%+v\n", version.RGB, version.Depth, version.Audio)

	if err := off.WaitIsReady(); err != nil {
		log.Fatal("wait is ready:", err)
	}
	fmt.Println("depth MCU ready")
}
