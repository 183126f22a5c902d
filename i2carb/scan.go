// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2carb

import (
	"errors"
	"fmt"
)

// Scan issues a one byte read to every address in [from, to] and returns the
// ones that acknowledged.
//
// An address whose read fails with a NACK (see IsNACK) is absent. Any other
// transport failure, such as a timeout or a held SDA line, is collected and
// the scan continues; the collected *TransportError values are returned
// joined alongside the addresses found, so a wedged bus is never reported as
// an empty one. ErrBusy and ErrClosed stop the scan immediately.
func Scan(a *Arbiter, from, to uint16) ([]uint16, error) {
	if to > 0x7f || from > to {
		return nil, fmt.Errorf("i2carb: invalid scan range 0x%02x-0x%02x", from, to)
	}
	var found []uint16
	var errs []error
	var b [1]byte
	for addr := from; addr <= to; addr++ {
		err := a.Tx(addr, nil, b[:])
		var te *TransportError
		switch {
		case err == nil:
			found = append(found, addr)
		case IsNACK(err):
		case errors.As(err, &te):
			errs = append(errs, err)
		default:
			return found, err
		}
	}
	return found, errors.Join(errs...)
}
