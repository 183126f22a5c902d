// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package i2carb arbitrates access to one physical I²C bus shared by several
// logical devices.
//
// An Arbiter owns the bus. Drivers never touch the bus directly; they obtain
// a Lease for each transaction and release it as soon as the transaction is
// done:
//
//	l, err := arb.Acquire()
//	if err != nil {
//		return err
//	}
//	defer l.Release()
//	return l.Tx(addr, w, r)
//
// Acquire never blocks. While a lease is outstanding every other Acquire
// fails with ErrBusy, so two devices can never interleave the halves of a
// select-then-read exchange.
//
// Leases are not meant to be held across delays. A driver waiting for a
// device to power up releases its lease between polls so that the other
// devices on the bus keep working.
package i2carb
