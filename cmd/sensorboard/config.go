// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/loadcell/sensorboard/ina237"
	"github.com/loadcell/sensorboard/nau7802"
	"github.com/loadcell/sensorboard/sht4x"
)

// config is the board description read from YAML.
type config struct {
	// Bus is the periph bus name; empty selects the first bus.
	Bus      string        `yaml:"bus"`
	BoardID  string        `yaml:"board_id"`
	Interval time.Duration `yaml:"interval"`
	// Samples is the number of ticks to run; 0 runs until interrupted.
	Samples int `yaml:"samples"`
	// Output is the CBOR stream path; "-" or empty writes to stdout.
	Output string `yaml:"output"`

	INA237  ina237Config  `yaml:"ina237"`
	NAU7802 nau7802Config `yaml:"nau7802"`
	SHT4x   sht4xConfig   `yaml:"sht4x"`
}

type ina237Config struct {
	Address uint16 `yaml:"address"`
	// ShuntCal is the SHUNT_CAL register value. It must be non-zero, or the
	// part never reports a current.
	ShuntCal     uint16 `yaml:"shunt_cal"`
	CurrentLSBuA int64  `yaml:"current_lsb_ua"`
	Averaging    int    `yaml:"averaging"`
	Range        string `yaml:"range"`
}

type nau7802Config struct {
	Address uint16 `yaml:"address"`
	LDO     string `yaml:"ldo"`
	Gain    int    `yaml:"gain"`
	Rate    int    `yaml:"rate"`
	Channel string `yaml:"channel"`
}

type sht4xConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Address   uint16 `yaml:"address"`
	Precision string `yaml:"precision"`
}

func defaultConfig() config {
	return config{
		BoardID:  "sensorboard",
		Interval: time.Second,
		Output:   "-",
		// The bring-up board: 4000 counts shunt calibration, ±40.96mV range,
		// 64 sample averaging.
		INA237: ina237Config{
			Address:      ina237.DefaultAddress,
			ShuntCal:     4000,
			CurrentLSBuA: 1,
			Averaging:    64,
			Range:        "low",
		},
		NAU7802: nau7802Config{
			Address: nau7802.DefaultAddress,
			LDO:     "3.3V",
			Gain:    128,
			Rate:    10,
			Channel: "A",
		},
		SHT4x: sht4xConfig{
			Enabled:   true,
			Address:   sht4x.DefaultAddress,
			Precision: "high",
		},
	}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (config, error) {
	if path == "" {
		c := defaultConfig()
		return c, c.validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}
	c, err := parseConfig(b)
	if err != nil {
		return config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func parseConfig(b []byte) (config, error) {
	c := defaultConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return config{}, err
	}
	if err := c.validate(); err != nil {
		return config{}, err
	}
	return c, nil
}

func (c *config) validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.Samples < 0 {
		return errors.New("samples must not be negative")
	}
	if _, err := c.INA237.values(); err != nil {
		return err
	}
	if _, err := c.INA237.driverConfig(); err != nil {
		return err
	}
	if _, err := c.NAU7802.settings(); err != nil {
		return err
	}
	if c.SHT4x.Enabled {
		if _, err := c.SHT4x.precision(); err != nil {
			return err
		}
	}
	return nil
}

func (c ina237Config) driverConfig() (ina237.Config, error) {
	if c.CurrentLSBuA <= 0 {
		return ina237.Config{}, fmt.Errorf("ina237: current_lsb_ua %d must be positive", c.CurrentLSBuA)
	}
	if c.ShuntCal == 0 {
		return ina237.Config{}, errors.New("ina237: shunt_cal must be set")
	}
	if c.ShuntCal > 0x7fff {
		return ina237.Config{}, fmt.Errorf("ina237: shunt_cal %d exceeds 15 bits", c.ShuntCal)
	}
	return ina237.Config{
		Addr:       c.Address,
		ShuntCal:   c.ShuntCal,
		CurrentLSB: physic.ElectricCurrent(c.CurrentLSBuA) * physic.MicroAmpere,
	}, nil
}

// values returns the CONFIG and ADC_CONFIG settings: power-on defaults with
// the configured range and averaging.
func (c ina237Config) values() (ina237.ConfigurationRegisterValues, error) {
	v := ina237.DefaultConfigurationRegisterValues()
	switch strings.ToLower(c.Range) {
	case "", "high":
		v.ADCRange = ina237.RangeHigh
	case "low":
		v.ADCRange = ina237.RangeLow
	default:
		return v, fmt.Errorf("ina237: unknown range %q", c.Range)
	}
	for a := ina237.Avg1; a <= ina237.Avg1024; a++ {
		if a.Samples() == c.Averaging {
			v.Averaging = a
			return v, nil
		}
	}
	return v, fmt.Errorf("ina237: unsupported averaging %d", c.Averaging)
}

type nau7802Settings struct {
	ldo     nau7802.LDOVoltage
	gain    nau7802.Gain
	rate    nau7802.ConversionRate
	channel nau7802.Channel
}

func (c nau7802Config) settings() (nau7802Settings, error) {
	var s nau7802Settings
	var ok bool
	for l := nau7802.LDO4V5; l <= nau7802.LDO2V4; l++ {
		if strings.EqualFold(l.String(), c.LDO) {
			s.ldo, ok = l, true
			break
		}
	}
	if !ok {
		return s, fmt.Errorf("nau7802: unsupported ldo %q", c.LDO)
	}
	ok = false
	for g := nau7802.Gain1; g <= nau7802.Gain128; g++ {
		if g.Factor() == c.Gain {
			s.gain, ok = g, true
			break
		}
	}
	if !ok {
		return s, fmt.Errorf("nau7802: unsupported gain %d", c.Gain)
	}
	ok = false
	for _, r := range []nau7802.ConversionRate{nau7802.Rate10SPS, nau7802.Rate20SPS, nau7802.Rate40SPS, nau7802.Rate80SPS, nau7802.Rate320SPS} {
		if r.SamplesPerSecond() == c.Rate {
			s.rate, ok = r, true
			break
		}
	}
	if !ok {
		return s, fmt.Errorf("nau7802: unsupported rate %d", c.Rate)
	}
	switch strings.ToUpper(c.Channel) {
	case "", "A":
		s.channel = nau7802.ChannelA
	case "B":
		s.channel = nau7802.ChannelB
	default:
		return s, fmt.Errorf("nau7802: unknown channel %q", c.Channel)
	}
	return s, nil
}

func (c sht4xConfig) precision() (sht4x.Precision, error) {
	switch strings.ToLower(c.Precision) {
	case "", "high":
		return sht4x.High, nil
	case "medium":
		return sht4x.Medium, nil
	case "low":
		return sht4x.Low, nil
	}
	return 0, fmt.Errorf("sht4x: unknown precision %q", c.Precision)
}
