package tabdbwire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
)

// MaxFrameSize bounds a single frame body.
const MaxFrameSize = 8 << 20 // 8 MiB

const headerSize = 4

var (
	ErrEmptyFrame    = errors.New("tabdbwire: empty frame")
	ErrFrameTooLarge = errors.New("tabdbwire: frame too large")
)

// ReadFrame reads one frame (uint32 big-endian length, then a JSON body)
// into v.
func ReadFrame(r io.Reader, v any) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	switch {
	case n == 0:
		return ErrEmptyFrame
	case n > MaxFrameSize:
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, MaxFrameSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("tabdbwire: bad json: %w", err)
	}
	return nil
}

// WriteFrame encodes v as JSON and writes it as one frame.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("tabdbwire: marshal: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), MaxFrameSize)
	}

	hdr := make([]byte, headerSize)
	binary.BigEndian.PutUint32(hdr, uint32(len(body)))

	bufs := net.Buffers{hdr, body}
	_, err = bufs.WriteTo(w)
	return err
}
