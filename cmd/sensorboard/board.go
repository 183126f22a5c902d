// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/ina237"
	"github.com/loadcell/sensorboard/nau7802"
	"github.com/loadcell/sensorboard/sht4x"
	"github.com/loadcell/sensorboard/telemetry"
)

// board is every device on one arbitrated bus.
type board struct {
	cfg config

	power *ina237.Dev
	adc   *nau7802.Dev
	env   *sht4x.Dev // nil when disabled

	precision sht4x.Precision
}

func newBoard(arb *i2carb.Arbiter, cfg config, sleep func(time.Duration)) (*board, error) {
	b := &board{cfg: cfg}
	ic, err := cfg.INA237.driverConfig()
	if err != nil {
		return nil, err
	}
	if b.power, err = ina237.New(arb, ic); err != nil {
		return nil, err
	}
	opts := nau7802.DefaultOpts
	opts.Addr = cfg.NAU7802.Address
	opts.Sleep = sleep
	if b.adc, err = nau7802.New(arb, &opts); err != nil {
		return nil, err
	}
	if cfg.SHT4x.Enabled {
		if b.env, err = sht4x.New(arb, cfg.SHT4x.Address); err != nil {
			return nil, err
		}
		b.env.Sleep = sleep
		if b.precision, err = cfg.SHT4x.precision(); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// init brings up every device. The ADC is calibrated on the configured
// channel before the first sample.
func (b *board) init() error {
	v, err := b.cfg.INA237.values()
	if err != nil {
		return err
	}
	if err := b.power.Initialize(v); err != nil {
		return fmt.Errorf("%s: %w", b.power, err)
	}
	s, err := b.cfg.NAU7802.settings()
	if err != nil {
		return err
	}
	steps := []func() error{
		b.adc.Initialize,
		func() error { return b.adc.SetLDOVoltage(s.ldo) },
		b.adc.EnableLDO,
		func() error { return b.adc.SetGain(s.gain) },
		func() error { return b.adc.SetConversionRate(s.rate) },
		b.adc.Calibrate,
		func() error {
			_, err := b.adc.SelectChannel(s.channel)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("%s: %w", b.adc, err)
		}
	}
	if b.env != nil {
		if err := b.env.Reset(); err != nil {
			return fmt.Errorf("%s: %w", b.env, err)
		}
	}
	return nil
}

// logReadBacks logs the register state the devices report after init.
func (b *board) logReadBacks(l *log.Logger) error {
	id, err := b.power.ManufacturerID()
	if err != nil {
		return err
	}
	if id != ina237.ManufacturerTI {
		l.Printf("%s: unexpected manufacturer id 0x%04x", b.power, id)
	}
	cfg, err := b.power.Configuration()
	if err != nil {
		return err
	}
	adc, err := b.power.ADCConfiguration()
	if err != nil {
		return err
	}
	cal, err := b.power.ShuntCal()
	if err != nil {
		return err
	}
	v := ina237.ParseConfigurationRegisterValues(cfg, adc)
	l.Printf("%s: config=0x%04x adc_config=0x%04x shunt_cal=%d range=%s mode=%s avg=%s",
		b.power, cfg, adc, cal, v.ADCRange, v.Mode, v.Averaging)

	rev, err := b.adc.RevisionID()
	if err != nil {
		return err
	}
	c1, err := b.adc.Ctrl1()
	if err != nil {
		return err
	}
	c2, err := b.adc.Ctrl2()
	if err != nil {
		return err
	}
	off, err := b.adc.Offset(c2.Channel())
	if err != nil {
		return err
	}
	gain, err := b.adc.GainCalibration(c2.Channel())
	if err != nil {
		return err
	}
	l.Printf("%s: revision=0x%x ldo=%s gain=%s rate=%s channel=%s offset=%d gain_cal=%d",
		b.adc, rev, c1.LDO, c1.Gain, c2.Rate, c2.Channel(), off, gain)

	if b.env != nil {
		sn, err := b.env.SerialNumber()
		if err != nil {
			return err
		}
		l.Printf("%s: serial=0x%08x", b.env, sn)
	}
	return nil
}

// sample reads every device once. A failing device is recorded in the
// sample's faults and does not stop the others.
func (b *board) sample(now time.Time) telemetry.Sample {
	s := telemetry.Sample{Time: now, BoardID: b.cfg.BoardID}

	if m, err := b.power.Read(); err != nil {
		s.Fault(b.power.String(), err)
	} else {
		s.BusMilliVolts = m.BusMilliVolts()
		s.ShuntMicroVolts = m.ShuntMicroVolts()
		s.CurrentMicroAmps = m.CurrentMicroAmps()
		s.DieMilliCelsius = m.TemperatureMilliCelsius()
	}

	switch v, err := b.adc.ReadADC(); {
	case errors.Is(err, nau7802.ErrDataNotReady):
	case err != nil:
		s.Fault(b.adc.String(), err)
	default:
		s.LoadCounts = v
		s.LoadReady = true
	}

	if b.env != nil {
		var e physic.Env
		if err := b.env.Measure(b.precision, &e); err != nil {
			s.Fault(b.env.String(), err)
		} else {
			s.AmbientMilliCelsius = int32((e.Temperature - physic.ZeroCelsius) / physic.MilliKelvin)
			s.HumidityMilliPercent = int32(e.Humidity / (physic.PercentRH / 1000))
		}
	}
	return s
}

// halt stops the converters.
func (b *board) halt() error {
	var errs []error
	if err := b.power.Halt(); err != nil {
		errs = append(errs, err)
	}
	if err := b.adc.Halt(); err != nil {
		errs = append(errs, err)
	}
	if b.env != nil {
		if err := b.env.Halt(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
