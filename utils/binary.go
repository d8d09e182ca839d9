package utils

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Strings longer than this are assumed to be stream corruption.
const MAX_STRING_LENGTH = 10000

var ErrStringLength = errors.New("string length out of bounds")

func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func WriteFloat32(w io.Writer, v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.Write(buf[:])
	return err
}

func WriteByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

// WriteString writes a 4 byte signed length prefix followed by the raw
// utf-8 bytes. No terminator.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt32(w, int32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func ReadFloat32(r io.Reader) (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadString reads a length-prefixed string. A negative or oversized length
// prefix returns ErrStringLength and an empty string, leaving the caller to
// decide whether the whole parse is dead.
func ReadString(r io.Reader) (string, error) {
	length, err := ReadInt32(r)
	if err != nil {
		return "", err
	}
	if length < 0 || length > MAX_STRING_LENGTH {
		return "", errors.Wrapf(ErrStringLength, "length prefix %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return BytesToString(buf), nil
}

func Skip(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
