package config

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Decoder for material and node names in kn5 files written by tools that
// predate utf-8 naming. Western European single-byte names are the common
// case in the wild, so that is the starting point.
var nameCharmap = charmap.Windows1252

func findCharmap(name string) *charmap.Charmap {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && cm.String() == name {
			return cm
		}
	}
	return nil
}

// SetEncoding selects the name decoder by its display name, for example
// "Windows 1251". ListEncodings enumerates the valid names.
func SetEncoding(name string) error {
	cm := findCharmap(name)
	if cm == nil {
		return errors.Errorf("Failed to find encoding %q", name)
	}
	nameCharmap = cm
	return nil
}

func ListEncodings() []string {
	names := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			names = append(names, cm.String())
		}
	}
	return names
}

func GetEncoding() *charmap.Charmap {
	return nameCharmap
}
