// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2carb

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

var errNack = fmt.Errorf("fake bus: %w", ErrNACK)

// fakeBus acknowledges the addresses in present and NACKs every other one.
// When fault is set every transaction fails with it instead.
type fakeBus struct {
	present map[uint16]bool
	fault   error
	txs     []uint16
	closed  bool
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.txs = append(f.txs, addr)
	if f.fault != nil {
		return f.fault
	}
	if !f.present[addr] {
		return errNack
	}
	return nil
}

func (f *fakeBus) Close() error {
	f.closed = true
	return nil
}

func TestAcquireSequential(t *testing.T) {
	a := New(&fakeBus{})
	for i := 0; i < 2; i++ {
		l, err := a.Acquire()
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		l.Release()
	}
}

func TestAcquireBusy(t *testing.T) {
	a := New(&fakeBus{})
	l, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Acquire(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := a.Tx(0x10, []byte{1}, nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from Tx, got %v", err)
	}
	l.Release()
	l2, err := a.Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	l2.Release()
}

func TestReleaseTwice(t *testing.T) {
	a := New(&fakeBus{})
	l, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	l.Release()
	l.Release()
	if err := l.Tx(0x10, []byte{0}, nil); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	// A stale lease must not release somebody else's lease.
	l2, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	l.Release()
	if _, err := a.Acquire(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	l2.Release()
}

func TestDoReleasesOnError(t *testing.T) {
	a := New(&fakeBus{})
	want := errors.New("boom")
	if err := a.Do(func(l *Lease) error { return want }); err != want {
		t.Fatalf("got %v", err)
	}
	l, err := a.Acquire()
	if err != nil {
		t.Fatalf("lease leaked: %v", err)
	}
	l.Release()
}

func TestTransportErrorAttribution(t *testing.T) {
	a := New(&fakeBus{present: map[uint16]bool{0x2a: true}})
	err := a.Tx(0x46, []byte{0x05}, make([]byte, 2))
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
	if te.Addr != 0x46 || te.Op != "write-read" {
		t.Fatalf("unexpected error fields %#v", te)
	}
	if !errors.Is(err, errNack) {
		t.Fatal("cause not wrapped")
	}
	if err := a.Tx(0x2a, []byte{0x00}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestOpName(t *testing.T) {
	for _, tc := range []struct {
		w, r []byte
		want string
	}{
		{[]byte{1}, nil, "write"},
		{nil, []byte{0}, "read"},
		{[]byte{1}, []byte{0}, "write-read"},
		{nil, nil, "write"},
	} {
		if got := opName(tc.w, tc.r); got != tc.want {
			t.Errorf("opName(%v, %v) = %q, want %q", tc.w, tc.r, got, tc.want)
		}
	}
}

func TestScan(t *testing.T) {
	f := &fakeBus{present: map[uint16]bool{0x2a: true, 0x44: true, 0x46: true}}
	found, err := Scan(New(f), 0x08, 0x77)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint16{0x2a, 0x44, 0x46}, found); diff != "" {
		t.Fatalf("found mismatch (-want +got):\n%s", diff)
	}
	if len(f.txs) != 0x77-0x08+1 {
		t.Fatalf("read %d addresses", len(f.txs))
	}
	if _, err := Scan(New(f), 0x10, 0x80); err == nil {
		t.Fatal("expected range error")
	}
}

func TestScanWedgedBus(t *testing.T) {
	f := &fakeBus{
		present: map[uint16]bool{0x2a: true},
		fault:   errors.New("i2c: timeout, SDA held low"),
	}
	found, err := Scan(New(f), 0x08, 0x77)
	if err == nil {
		t.Fatal("a bus failing every transaction scanned as empty")
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "read" {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
	if errors.Is(err, ErrNACK) {
		t.Fatal("timeout classified as NACK")
	}
	if len(found) != 0 {
		t.Fatalf("found %v", found)
	}
	if len(f.txs) != 0x77-0x08+1 {
		t.Fatalf("read %d addresses", len(f.txs))
	}
}

// Only the failing addresses are reported; NACKs and ACKs are not errors.
func TestScanMixedFailure(t *testing.T) {
	stuck := errors.New("i2c: arbitration lost")
	f := &flakyBus{fakeBus: fakeBus{present: map[uint16]bool{0x2a: true}}, failAt: 0x30, err: stuck}
	found, err := Scan(New(f), 0x28, 0x32)
	if !errors.Is(err, stuck) {
		t.Fatalf("expected %v, got %v", stuck, err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Addr != 0x30 {
		t.Fatalf("unexpected error %v", err)
	}
	if diff := cmp.Diff([]uint16{0x2a}, found); diff != "" {
		t.Fatalf("found mismatch (-want +got):\n%s", diff)
	}
}

type flakyBus struct {
	fakeBus
	failAt uint16
	err    error
}

func (f *flakyBus) Tx(addr uint16, w, r []byte) error {
	if addr == f.failAt {
		f.txs = append(f.txs, addr)
		return f.err
	}
	return f.fakeBus.Tx(addr, w, r)
}

func TestIsNACK(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrNACK, true},
		{errNack, true},
		{&TransportError{Addr: 0x40, Op: "read", Err: errNack}, true},
		{errors.New("sysfs-i2c: remote I/O error"), true},
		{errors.New("sysfs-i2c: no such device or address"), true},
		{errors.New("I2C error: expected ACK not NACK"), true},
		{errors.New("i2c: timeout, SDA held low"), false},
		{errors.New("i2c: arbitration lost"), false},
		{ErrBusy, false},
	} {
		if got := IsNACK(tc.err); got != tc.want {
			t.Errorf("IsNACK(%v) = %t, want %t", tc.err, got, tc.want)
		}
	}
}

func TestScanBusy(t *testing.T) {
	a := New(&fakeBus{})
	l, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()
	if _, err := Scan(a, 0, 0x7f); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestClose(t *testing.T) {
	f := &fakeBus{}
	a := New(f)
	l, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	l.Release()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if !f.closed {
		t.Fatal("transport not closed")
	}
	if _, err := a.Acquire(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Acquire after Close: expected ErrClosed, got %v", err)
	}
	if err := a.Tx(0x10, []byte{0}, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Tx after Close: expected ErrClosed, got %v", err)
	}
	if _, err := Scan(a, 0x08, 0x77); !errors.Is(err, ErrClosed) {
		t.Fatalf("Scan after Close: expected ErrClosed, got %v", err)
	}
	if err := a.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close: expected ErrClosed, got %v", err)
	}
	if len(f.txs) != 0 {
		t.Fatalf("transport used after Close: %v", f.txs)
	}
}

// A lease may be released from another goroutine than the one using it.
func TestReleaseConcurrent(t *testing.T) {
	a := New(&fakeBus{present: map[uint16]bool{0x10: true}})
	l, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.Release()
	}()
	go func() {
		defer wg.Done()
		if err := l.Tx(0x10, []byte{0}, nil); err != nil && !errors.Is(err, ErrReleased) {
			t.Errorf("Tx: %v", err)
		}
	}()
	wg.Wait()
	if err := l.Tx(0x10, []byte{0}, nil); !errors.Is(err, ErrReleased) {
		t.Fatalf("expected ErrReleased, got %v", err)
	}
	l2, err := a.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	l2.Release()
}

func TestBusView(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x44, W: []byte{0xfd}},
			{Addr: 0x44, R: []byte{0x01, 0x02}},
		},
		DontPanic: true,
	}
	a := New(pb)
	b := a.Bus("shared")
	if s := b.String(); s != "shared" {
		t.Fatalf("String() = %q", s)
	}
	if err := b.Tx(0x44, []byte{0xfd}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 2)
	if err := b.Tx(0x44, nil, r); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x01, 0x02}, r); diff != "" {
		t.Fatal(diff)
	}
	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatal(err)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestBusViewSetSpeedUnsupported(t *testing.T) {
	b := New(&fakeBus{}).Bus("plain")
	if err := b.SetSpeed(100 * physic.KiloHertz); err == nil {
		t.Fatal("expected error")
	}
}
