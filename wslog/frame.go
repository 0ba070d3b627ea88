// File: wslog/frame.go
// Package wslog implements a non-validating WebSocket frame parser.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wslog

import (
	"encoding/binary"
	"errors"
)

// Frame opcodes per RFC 6455.
const (
	OpContinuation byte = 0x0
	OpText         byte = 0x1
	OpBinary       byte = 0x2
	OpClose        byte = 0x8
	OpPing         byte = 0x9
	OpPong         byte = 0xA
)

// MaxFramePayload bounds a single frame's payload. Larger frames are
// rejected before any payload copy happens.
const MaxFramePayload = 1 << 20 // 1 MiB

// Frame is one decoded WebSocket frame. The parser reports what is on the
// wire; it does not validate opcode legality or fragmentation order.
type Frame struct {
	Final      bool
	Opcode     byte
	Masked     bool
	PayloadLen int64
	MaskKey    [4]byte
	Payload    []byte
}

// OpcodeName returns the RFC name of the frame's opcode.
func (f *Frame) OpcodeName() string {
	switch f.Opcode {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return "reserved"
	}
}

// DecodeFrame parses one frame from raw, unmasking the payload into a
// fresh slice. Returns the frame and consumed byte count. An incomplete
// prefix yields (nil, 0, nil) so stream readers can wait for more bytes.
func DecodeFrame(raw []byte) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, nil // Incomplete
	}
	fin := raw[0]&0x80 != 0
	opcode := raw[0] & 0x0F
	masked := raw[1]&0x80 != 0
	length := int64(raw[1] & 0x7F)
	offset := 2

	switch length {
	case 126:
		if len(raw) < offset+2 {
			return nil, 0, nil // Incomplete
		}
		length = int64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case 127:
		if len(raw) < offset+8 {
			return nil, 0, nil // Incomplete
		}
		length = int64(binary.BigEndian.Uint64(raw[offset:]))
		offset += 8
	}

	if length > MaxFramePayload {
		return nil, 0, errors.New("frame payload exceeds maximum allowed size")
	}

	var maskKey [4]byte
	if masked {
		if len(raw) < offset+4 {
			return nil, 0, nil // Incomplete
		}
		copy(maskKey[:], raw[offset:offset+4])
		offset += 4
	}

	totalLen := offset + int(length)
	if len(raw) < totalLen {
		return nil, 0, nil // Incomplete
	}

	payloadData := raw[offset:totalLen]
	payload := make([]byte, length)
	if masked {
		for i := int64(0); i < length; i++ {
			payload[i] = payloadData[i] ^ maskKey[i%4]
		}
	} else {
		copy(payload, payloadData)
	}

	return &Frame{
		Final:      fin,
		Opcode:     opcode,
		Masked:     masked,
		PayloadLen: length,
		MaskKey:    maskKey,
		Payload:    payload,
	}, totalLen, nil
}

// EncodeFrame serializes an unmasked frame, primarily for tests and replay
// tooling that feeds the logger from captured payloads.
func EncodeFrame(f *Frame) ([]byte, error) {
	n := int64(len(f.Payload))
	if n > MaxFramePayload {
		return nil, errors.New("frame payload exceeds maximum allowed size")
	}
	b0 := f.Opcode
	if f.Final {
		b0 |= 0x80
	}
	switch {
	case n < 126:
		out := make([]byte, 0, 2+n)
		out = append(out, b0, byte(n))
		return append(out, f.Payload...), nil
	case n <= 0xFFFF:
		out := make([]byte, 0, 4+n)
		out = append(out, b0, 126, byte(n>>8), byte(n))
		return append(out, f.Payload...), nil
	default:
		out := make([]byte, 10, 10+n)
		out[0], out[1] = b0, 127
		binary.BigEndian.PutUint64(out[2:], uint64(n))
		return append(out, f.Payload...), nil
	}
}
