// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strings"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/loadcell/sensorboard/telemetry"
)

var (
	colorOK    = color.NRGBA{0x00, 0xc0, 0x00, 0xff}
	colorFault = color.NRGBA{0xd0, 0x00, 0x00, 0xff}
	colorIdle  = color.NRGBA{0x80, 0x80, 0x80, 0xff}
)

// console writes the status log to stderr, with ANSI colours when stderr is
// a terminal.
type console struct {
	*log.Logger
	color   bool
	palette *ansi256.Palette
}

func newConsole() *console {
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	var w io.Writer = os.Stderr
	if tty {
		w = colorable.NewColorableStderr()
	}
	return newConsoleWriter(w, tty)
}

func newConsoleWriter(w io.Writer, useColor bool) *console {
	return &console{
		Logger:  log.New(w, "sensorboard: ", log.LstdFlags),
		color:   useColor,
		palette: ansi256.Default,
	}
}

// block renders one status cell.
func (c *console) block(col color.NRGBA, text string) string {
	if !c.color {
		return "[" + text + "]"
	}
	return c.palette.Block(col) + "\033[0m" + text
}

// status is a one line summary of s: power, load and ambient readings with a
// coloured cell per sensor.
func (c *console) status(s *telemetry.Sample, sensors []string) string {
	var b strings.Builder
	for _, name := range sensors {
		col := colorOK
		for _, f := range s.Faults {
			if strings.HasPrefix(f, name+":") {
				col = colorFault
				break
			}
		}
		b.WriteString(c.block(col, name))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "bus=%dmV current=%duA", s.BusMilliVolts, s.CurrentMicroAmps)
	if s.LoadReady {
		fmt.Fprintf(&b, " load=%d", s.LoadCounts)
	} else {
		b.WriteString(" load=")
		b.WriteString(c.block(colorIdle, "-"))
	}
	fmt.Fprintf(&b, " ambient=%s°C rh=%s%%", milli(s.AmbientMilliCelsius), milli(s.HumidityMilliPercent))
	return b.String()
}

// milli formats a fixed point value with three decimals.
func milli(v int32) string {
	sign := ""
	u := int64(v)
	if u < 0 {
		sign = "-"
		u = -u
	}
	return fmt.Sprintf("%s%d.%03d", sign, u/1000, u%1000)
}
