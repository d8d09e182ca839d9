package utils

import "testing"

func TestBytesToString(t *testing.T) {
	if got := BytesToString([]byte("1ROAD")); got != "1ROAD" {
		t.Errorf("utf-8 passthrough = %q", got)
	}
	if got := BytesToString([]byte("дорога")); got != "дорога" {
		t.Errorf("multibyte utf-8 = %q", got)
	}
	// 0xe9 is not valid utf-8 on its own, Windows-1252 maps it to é
	if got := BytesToString([]byte{'c', 'a', 'f', 0xe9}); got != "café" {
		t.Errorf("charmap fallback = %q", got)
	}
}
