// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/loadcell/sensorboard/ina237"
	"github.com/loadcell/sensorboard/nau7802"
	"github.com/loadcell/sensorboard/sht4x"
)

const boardYAML = `
bus: "/dev/i2c-1"
board_id: scale-3
interval: 250ms
samples: 40
output: /tmp/scale.cbor
ina237:
  address: 0x45
  shunt_cal: 819
  current_lsb_ua: 100
  averaging: 64
  range: low
nau7802:
  ldo: 3.0V
  gain: 64
  rate: 80
  channel: B
sht4x:
  enabled: false
`

func TestParseConfig(t *testing.T) {
	c, err := parseConfig([]byte(boardYAML))
	require.NoError(t, err)
	assert.Equal(t, "/dev/i2c-1", c.Bus)
	assert.Equal(t, "scale-3", c.BoardID)
	assert.Equal(t, 250*time.Millisecond, c.Interval)
	assert.Equal(t, 40, c.Samples)
	assert.Equal(t, "/tmp/scale.cbor", c.Output)
	assert.False(t, c.SHT4x.Enabled)

	ic, err := c.INA237.driverConfig()
	require.NoError(t, err)
	assert.Equal(t, ina237.Config{Addr: 0x45, ShuntCal: 819, CurrentLSB: 100 * physic.MicroAmpere}, ic)

	v, err := c.INA237.values()
	require.NoError(t, err)
	assert.Equal(t, ina237.RangeLow, v.ADCRange)
	assert.Equal(t, ina237.Avg64, v.Averaging)
	assert.Equal(t, ina237.ModeContinuousTempShuntBus, v.Mode)

	// Unset keys keep their defaults.
	assert.Equal(t, nau7802.DefaultAddress, c.NAU7802.Address)
	s, err := c.NAU7802.settings()
	require.NoError(t, err)
	assert.Equal(t, nau7802Settings{
		ldo:     nau7802.LDO3V0,
		gain:    nau7802.Gain64,
		rate:    nau7802.Rate80SPS,
		channel: nau7802.ChannelB,
	}, s)
}

func TestDefaultConfig(t *testing.T) {
	c, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.Interval)
	assert.Equal(t, "-", c.Output)
	assert.True(t, c.SHT4x.Enabled)

	ic, err := c.INA237.driverConfig()
	require.NoError(t, err)
	assert.Equal(t, ina237.Config{Addr: ina237.DefaultAddress, ShuntCal: 4000, CurrentLSB: physic.MicroAmpere}, ic)
	v, err := c.INA237.values()
	require.NoError(t, err)
	assert.Equal(t, ina237.RangeLow, v.ADCRange)
	assert.Equal(t, ina237.Avg64, v.Averaging)
	assert.Equal(t, ina237.ModeContinuousTempShuntBus, v.Mode)

	p, err := c.SHT4x.precision()
	require.NoError(t, err)
	assert.Equal(t, sht4x.High, p)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(boardYAML), 0o600))
	c, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "scale-3", c.BoardID)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      "interval: [",
		"interval":    "interval: 0s",
		"samples":     "samples: -1",
		"range":       "ina237: {range: medium}",
		"averaging":   "ina237: {averaging: 3}",
		"current lsb": "ina237: {current_lsb_ua: 0}",
		"shunt cal":   "ina237: {shunt_cal: 40000}",
		"shunt cal 0": "ina237: {shunt_cal: 0}",
		"ldo":         "nau7802: {ldo: 5V}",
		"gain":        "nau7802: {gain: 3}",
		"rate":        "nau7802: {rate: 100}",
		"channel":     "nau7802: {channel: C}",
		"precision":   "sht4x: {enabled: true, precision: extreme}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}
