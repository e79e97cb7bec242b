//go:build sonic

package jsonc

import (
	"io"

	"github.com/bytedance/sonic"
)

var Marshal = sonic.Marshal
var Unmarshal = sonic.Unmarshal

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return sonic.ConfigDefault.MarshalIndent(v, prefix, indent)
}

func Encode(w io.Writer, v any) error {
	return sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func Decode(r io.Reader, v any) error {
	return sonic.ConfigDefault.NewDecoder(r).Decode(v)
}
