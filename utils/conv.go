package utils

import (
	"unicode/utf8"

	"golang.org/x/text/transform"

	"github.com/ruggierom/ac_track_builder/config"
)

// BytesToString decodes name bytes from a scene file. Files produced by this
// tool are always utf-8, but kn5 files from older tooling sometimes carry
// single-byte encoded names. Those are decoded with the configured charmap.
func BytesToString(bs []byte) string {
	if utf8.Valid(bs) {
		return string(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs)
	if err != nil {
		return string(bs)
	}
	return string(s)
}
