//go:build !sonic

// Package jsonc selects the JSON codec at build time. The default build uses
// goccy/go-json, `-tags sonic` switches to bytedance/sonic.
package jsonc

import (
	"io"

	"github.com/goccy/go-json"
)

var Marshal = json.Marshal
var Unmarshal = json.Unmarshal

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
