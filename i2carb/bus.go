// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2carb

import (
	"errors"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Bus returns an i2c.Bus backed by the Arbiter. Each Tx runs in its own
// lease, which lets drivers written against periph's i2c.Bus share the
// arbitrated bus.
func (a *Arbiter) Bus(name string) i2c.Bus {
	return &bus{a: a, name: name}
}

type bus struct {
	a    *Arbiter
	name string
}

func (b *bus) String() string {
	return b.name
}

func (b *bus) Tx(addr uint16, w, r []byte) error {
	return b.a.Tx(addr, w, r)
}

// SetSpeed changes the clock of the underlying bus when it supports it.
func (b *bus) SetSpeed(f physic.Frequency) error {
	return b.a.Do(func(l *Lease) error {
		s, ok := l.a.t.(interface {
			SetSpeed(f physic.Frequency) error
		})
		if !ok {
			return errors.New("i2carb: transport does not support SetSpeed")
		}
		return s.SetSpeed(f)
	})
}

var _ i2c.Bus = &bus{}
