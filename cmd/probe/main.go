package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ecc1/sx126x"
)

func main() {
	r := sx126x.Open(sx126x.DefaultConfig())
	if r.Error() != nil {
		log.Fatal(r.Error())
	}
	defer r.Close()
	if err := r.Reset(); err != nil {
		log.Fatal(err)
	}
	v, err := r.ReadRegister(sx126x.RegVersion)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("version: 0x%02X\n", v)
	s, err := r.GetStatus()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("status: %v\n", s)
	e, err := r.GetDeviceErrors()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("device errors: %v\n", e)
	if irq, err := r.IRQ(); err == nil {
		fmt.Printf("DIO1: %v\n", irq)
	}
}
