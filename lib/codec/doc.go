// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec encodes folderize's structured output: list
// snapshots and pass reports written by the CLI's --format flag.
//
// [Format.Encode] writes JSON (indented), YAML, or CBOR. The CBOR
// encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items, so two
// snapshots of identically grouped lists are byte-identical and can be
// compared or hashed directly.
//
// For buffer-oriented use:
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// [Diagnose] renders CBOR in diagnostic notation for debugging.
//
// Output types carry json, yaml and cbor tags with the same names so
// every format shows the same field names.
package codec
