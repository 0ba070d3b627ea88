// File: wslog/capture.go
// Package wslog: live capture from a coder/websocket connection.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wslog

import (
	"context"
	"errors"

	"github.com/coder/websocket"
)

// MessageSource is the read side of a WebSocket connection.
// *websocket.Conn satisfies it.
type MessageSource interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

// Capture reads messages from src until the context is canceled or the
// connection closes, logging each as an inbound frame. The library hands
// out whole messages, so every logged frame is final and unmasked; close
// with a normal status is not an error.
func Capture(ctx context.Context, src MessageSource, fl *FrameLogger) error {
	for {
		typ, data, err := src.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		opcode := OpBinary
		if typ == websocket.MessageText {
			opcode = OpText
		}
		fl.LogFrame(DirInbound, &Frame{
			Final:      true,
			Opcode:     opcode,
			PayloadLen: int64(len(data)),
			Payload:    data,
		})
	}
}

// CaptureStream decodes raw frame bytes (for replay of captured traffic)
// and logs every complete frame, returning the number of bytes consumed.
func CaptureStream(raw []byte, dir Direction, fl *FrameLogger) (int, error) {
	consumed := 0
	for {
		f, n, err := DecodeFrame(raw[consumed:])
		if err != nil {
			return consumed, err
		}
		if f == nil {
			return consumed, nil
		}
		fl.LogFrame(dir, f)
		consumed += n
	}
}
