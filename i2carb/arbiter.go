// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2carb

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// Transport is the raw bus the Arbiter owns. Tx must perform the write and
// the read as one repeated-start transaction when both w and r are given.
//
// periph's i2c.Bus, i2ctest.Playback and tinygo's machine.I2C all satisfy it.
type Transport = drivers.I2C

// Arbiter owns a single physical bus and hands out exclusive leases on it.
type Arbiter struct {
	t  Transport
	mu sync.Mutex
	// closed is guarded by mu.
	closed bool
}

// New returns an Arbiter owning t. The caller must not use t directly
// afterwards.
func New(t Transport) *Arbiter {
	return &Arbiter{t: t}
}

// Acquire returns a lease on the bus. It fails immediately with ErrBusy if
// another lease is outstanding and with ErrClosed once the Arbiter is closed.
func (a *Arbiter) Acquire() (*Lease, error) {
	if !a.mu.TryLock() {
		return nil, ErrBusy
	}
	if a.closed {
		a.mu.Unlock()
		return nil, ErrClosed
	}
	return &Lease{a: a}, nil
}

// Do runs fn under a single lease. The lease is released when fn returns,
// whatever the outcome.
func (a *Arbiter) Do(fn func(l *Lease) error) error {
	l, err := a.Acquire()
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l)
}

// Tx performs one transaction in its own lease.
func (a *Arbiter) Tx(addr uint16, w, r []byte) error {
	return a.Do(func(l *Lease) error {
		return l.Tx(addr, w, r)
	})
}

// Close closes the underlying transport when it supports it. It fails with
// ErrBusy while a lease is outstanding. Every later Acquire or Close returns
// ErrClosed.
func (a *Arbiter) Close() error {
	if !a.mu.TryLock() {
		return ErrBusy
	}
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	if c, ok := a.t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// String implements conn.Resource.
func (a *Arbiter) String() string {
	if s, ok := a.t.(fmt.Stringer); ok {
		return "i2carb(" + s.String() + ")"
	}
	return "i2carb"
}

// Lease is the exclusive right to use the bus. It is valid until Release is
// called.
type Lease struct {
	a    *Arbiter
	once sync.Once
	done atomic.Bool
}

// Tx performs one raw transaction on the leased bus. A transport failure is
// returned as a *TransportError naming addr.
func (l *Lease) Tx(addr uint16, w, r []byte) error {
	if l.done.Load() {
		return ErrReleased
	}
	if err := l.a.t.Tx(addr, w, r); err != nil {
		return &TransportError{Addr: addr, Op: opName(w, r), Err: err}
	}
	return nil
}

// Release gives the bus back to the Arbiter. Calling it more than once is a
// no-op.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.done.Store(true)
		l.a.mu.Unlock()
	})
}

func opName(w, r []byte) string {
	switch {
	case len(r) == 0:
		return "write"
	case len(w) == 0:
		return "read"
	default:
		return "write-read"
	}
}

// ErrBusy is returned by Acquire while another lease is outstanding.
var ErrBusy = errors.New("i2carb: bus busy")

// ErrReleased is returned when a lease is used after Release.
var ErrReleased = errors.New("i2carb: lease released")

// ErrClosed is returned by Acquire and Close after the Arbiter was closed.
var ErrClosed = errors.New("i2carb: arbiter closed")

// ErrNACK may be wrapped by a Transport to report that no device
// acknowledged its address.
var ErrNACK = errors.New("i2carb: address not acknowledged")

// IsNACK reports whether err means the addressed device did not acknowledge.
// Besides ErrNACK it recognises the messages periph's sysfs bus (ENXIO,
// EREMOTEIO) and tinygo's machine.I2C report for a missing device. Timeouts,
// arbitration loss and a stuck bus are not NACKs.
func IsNACK(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNACK) {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, m := range nackMessages {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

var nackMessages = []string{
	"nack",
	"no such device or address",
	"remote i/o error",
}

// TransportError is a hardware fault reported by the transport, such as a
// NACK, arbitration loss or timeout, attributed to the device address the
// transaction targeted.
type TransportError struct {
	Addr uint16
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("i2carb: %s at 0x%02x: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
