// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sensorboard brings up the load cell ADC, the power monitor and the
// ambient sensor sharing one I²C bus, then samples them on an interval and
// writes a CBOR telemetry stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/telemetry"
)

func main() {
	configPath := flag.String("config", "", "YAML board configuration")
	scan := flag.Bool("scan", false, "list the addresses answering on the bus and exit")
	flag.Parse()

	con := newConsole()
	if err := mainImpl(con, *configPath, *scan); err != nil {
		con.Fatal(err)
	}
}

func mainImpl(con *console, configPath string, scan bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return err
	}
	arb := i2carb.New(bus)
	defer arb.Close()

	if scan {
		found, err := i2carb.Scan(arb, 0x08, 0x77)
		for _, a := range found {
			con.Printf("%s: device at 0x%02x", bus, a)
		}
		return err
	}

	b, err := newBoard(arb, cfg, time.Sleep)
	if err != nil {
		return err
	}
	if err := b.init(); err != nil {
		return err
	}
	defer func() {
		if err := b.halt(); err != nil {
			con.Printf("halt: %v", err)
		}
	}()
	if err := b.logReadBacks(con.Logger); err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, con, b, telemetry.NewWriter(out))
}

// run samples on every tick until ctx is done or cfg.Samples ticks elapsed.
func run(ctx context.Context, con *console, b *board, w *telemetry.Writer) error {
	names := []string{b.power.String(), b.adc.String()}
	if b.env != nil {
		names = append(names, b.env.String())
	}
	t := time.NewTicker(b.cfg.Interval)
	defer t.Stop()
	for b.cfg.Samples == 0 || w.Count() < b.cfg.Samples {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			s := b.sample(now)
			if err := w.Write(s); err != nil {
				return err
			}
			con.Print(con.status(&s, names))
		}
	}
	return nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
