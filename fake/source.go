// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"context"
	"sync"

	"github.com/coder/websocket"

	"github.com/momentics/hioload-core/api"
)

// MessageSource is a scripted wslog.MessageSource. Reads return the queued
// messages in order, then the configured terminal error.
type MessageSource struct {
	mu       sync.Mutex
	messages []scriptedMessage
	final    error
}

type scriptedMessage struct {
	typ  websocket.MessageType
	data []byte
}

// NewMessageSource creates a source that ends with the given error once the
// script is exhausted. A nil final error reports a closed transport.
func NewMessageSource(final error) *MessageSource {
	if final == nil {
		final = api.ErrTransportClosed
	}
	return &MessageSource{final: final}
}

// Push appends one message to the script.
func (s *MessageSource) Push(typ websocket.MessageType, data []byte) {
	s.mu.Lock()
	s.messages = append(s.messages, scriptedMessage{typ: typ, data: append([]byte(nil), data...)})
	s.mu.Unlock()
}

// Read implements the message source contract.
func (s *MessageSource) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return 0, nil, s.final
	}
	m := s.messages[0]
	s.messages = s.messages[1:]
	return m.typ, m.data, nil
}
