// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237_test

import (
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/ina237"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	arb := i2carb.New(bus)
	defer arb.Close()

	// 100µA resolution on a 10mΩ shunt.
	lsb := 100 * physic.MicroAmpere
	cal, err := ina237.ShuntCalFor(lsb, 10*physic.MilliOhm, ina237.RangeHigh)
	if err != nil {
		log.Fatal(err)
	}
	dev, err := ina237.New(arb, ina237.Config{ShuntCal: cal, CurrentLSB: lsb})
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	v := ina237.DefaultConfigurationRegisterValues()
	v.Averaging = ina237.Avg64
	if err := dev.Initialize(v); err != nil {
		log.Fatal(err)
	}

	for range 10 {
		time.Sleep(100 * time.Millisecond)
		m, err := dev.Read()
		if err != nil {
			log.Fatal(err)
		}
		log.Println(m)
	}
}
