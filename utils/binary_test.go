package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteInt32(&buf, -123456); err != nil {
		t.Fatal(err)
	}
	if err := WriteUint16(&buf, 65535); err != nil {
		t.Fatal(err)
	}
	if err := WriteFloat32(&buf, 3.5); err != nil {
		t.Fatal(err)
	}
	if err := WriteByte(&buf, 0xab); err != nil {
		t.Fatal(err)
	}
	if err := WriteString(&buf, "1ROAD"); err != nil {
		t.Fatal(err)
	}

	if v, err := ReadInt32(&buf); err != nil || v != -123456 {
		t.Errorf("ReadInt32 = %d, %v", v, err)
	}
	if v, err := ReadUint16(&buf); err != nil || v != 65535 {
		t.Errorf("ReadUint16 = %d, %v", v, err)
	}
	if v, err := ReadFloat32(&buf); err != nil || v != 3.5 {
		t.Errorf("ReadFloat32 = %v, %v", v, err)
	}
	if v, err := ReadByte(&buf); err != nil || v != 0xab {
		t.Errorf("ReadByte = %#x, %v", v, err)
	}
	if v, err := ReadString(&buf); err != nil || v != "1ROAD" {
		t.Errorf("ReadString = %q, %v", v, err)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes left unread", buf.Len())
	}
}

func TestInt32LittleEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt32(&buf, 0x01020304); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestWriteStringLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "ab"); err != nil {
		t.Fatal(err)
	}
	want := []byte{2, 0, 0, 0, 'a', 'b'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestReadStringBadLength(t *testing.T) {
	for _, length := range []int32{-1, MAX_STRING_LENGTH + 1} {
		var buf bytes.Buffer
		if err := WriteInt32(&buf, length); err != nil {
			t.Fatal(err)
		}
		s, err := ReadString(&buf)
		if !errors.Is(err, ErrStringLength) {
			t.Errorf("length %d: err = %v, want ErrStringLength", length, err)
		}
		if s != "" {
			t.Errorf("length %d: got %q, want empty string", length, s)
		}
	}
}

func TestReadStringTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteInt32(&buf, 10); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("abc")
	if _, err := ReadString(&buf); err == nil {
		t.Error("expected error on truncated string body")
	}
}

func TestSkip(t *testing.T) {
	r := strings.NewReader("0123456789")
	if err := Skip(r, 7); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 3 {
		t.Errorf("%d bytes left, want 3", r.Len())
	}
	if err := Skip(r, 7); err == nil {
		t.Error("expected error skipping past the end")
	}
}
