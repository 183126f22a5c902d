// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry defines the snapshot the sensor board produces on every
// sampling tick and its CBOR encoding.
//
// A stream is a plain sequence of CBOR data items, one Sample each, with
// integer map keys. Encoding is canonical so identical samples always
// produce identical bytes.
package telemetry
