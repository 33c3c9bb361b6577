// Package data carries the bundled seed snapshot used to populate an empty
// store on first run.
package data

import _ "embed"

// Seed is the embedded seed bundle JSON.
//
//go:embed seed.json
var Seed []byte
