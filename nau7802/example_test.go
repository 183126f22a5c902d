// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nau7802_test

import (
	"errors"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/nau7802"
)

// Example powers up a load cell amplifier, calibrates it and prints raw
// conversions.
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

	dev, err := nau7802.New(arb, &nau7802.DefaultOpts)
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	if err := dev.Initialize(); err != nil {
		log.Fatal(err)
	}
	if err := dev.SetLDOVoltage(nau7802.LDO3V3); err != nil {
		log.Fatal(err)
	}
	if err := dev.EnableLDO(); err != nil {
		log.Fatal(err)
	}
	if err := dev.SetGain(nau7802.Gain128); err != nil {
		log.Fatal(err)
	}
	if err := dev.SetConversionRate(nau7802.Rate10SPS); err != nil {
		log.Fatal(err)
	}
	if err := dev.Calibrate(); err != nil {
		log.Fatal(err)
	}

	for range 10 {
		time.Sleep(100 * time.Millisecond)
		v, err := dev.ReadADC()
		if errors.Is(err, nau7802.ErrDataNotReady) {
			continue
		}
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("%s: %d", dev, v)
	}
}
