// File: transport/translate.go
// Package transport implements the transport-state translation shim.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Maps native state codes reported by an underlying connection layer onto
// the canonical api.TransportState machine, enforcing legal transitions and
// keeping a bounded history of what was observed.

package transport

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/eapache/queue"

	"github.com/momentics/hioload-core/api"
)

// Native state codes as reported by the underlying connection layer.
const (
	NativeDisconnected = iota
	NativeResolving
	NativeConnecting
	NativeEstablished
	NativeHalfClosed
	NativeClosed
	NativeError
)

// defaultHistoryCap bounds the retained transition history.
const defaultHistoryCap = 64

// Translator converts native transport codes into canonical states.
// All methods are safe for concurrent use.
type Translator struct {
	mu         sync.Mutex
	state      api.TransportState
	history    *queue.Queue
	historyCap int
	listeners  []func(api.Transition)
}

// TranslatorOption customizes translator construction.
type TranslatorOption func(*Translator)

// WithHistoryCap bounds the number of retained transitions.
func WithHistoryCap(n int) TranslatorOption {
	return func(t *Translator) { t.historyCap = n }
}

// NewTranslator starts in the idle state.
func NewTranslator(opts ...TranslatorOption) *Translator {
	t := &Translator{
		state:      api.TransportIdle,
		history:    queue.New(),
		historyCap: defaultHistoryCap,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnTransition registers a listener invoked synchronously, outside the
// translator lock, for every accepted transition.
func (t *Translator) OnTransition(fn func(api.Transition)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

// State returns the current canonical state.
func (t *Translator) State() api.TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Apply translates one native code and advances the state machine.
// Illegal transitions leave the state untouched and return a structured
// error; repeating the current state is accepted and ignored.
func (t *Translator) Apply(native int, reason string) (api.TransportState, error) {
	to, ok := translateNative(native)
	if !ok {
		return t.State(), api.NewError(api.ErrCodeInvalidArgument, "unknown native transport code").
			WithContext("native", native)
	}
	t.mu.Lock()
	from := t.state
	if to == from {
		t.mu.Unlock()
		return to, nil
	}
	if !legal(from, to) {
		t.mu.Unlock()
		return from, api.NewError(api.ErrCodeInvalidArgument, "illegal transport transition").
			WithContext("from", from.String()).
			WithContext("to", to.String())
	}
	t.state = to
	tr := api.Transition{From: from, To: to, Native: native, Reason: reason}
	t.history.Add(tr)
	for t.history.Length() > t.historyCap {
		t.history.Remove()
	}
	listeners := append(([]func(api.Transition))(nil), t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(tr)
	}
	return to, nil
}

// History returns the retained transitions, oldest first.
func (t *Translator) History() []api.Transition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]api.Transition, 0, t.history.Length())
	for i := 0; i < t.history.Length(); i++ {
		out = append(out, t.history.Get(i).(api.Transition))
	}
	return out
}

// translateNative maps a native code to its canonical state.
func translateNative(native int) (api.TransportState, bool) {
	switch native {
	case NativeDisconnected:
		return api.TransportIdle, true
	case NativeResolving, NativeConnecting:
		return api.TransportConnecting, true
	case NativeEstablished:
		return api.TransportOpen, true
	case NativeHalfClosed:
		return api.TransportDraining, true
	case NativeClosed:
		return api.TransportClosed, true
	case NativeError:
		return api.TransportFailed, true
	default:
		return api.TransportUnknown, false
	}
}

// legal encodes the canonical state machine. Closed and failed transports
// may reconnect.
func legal(from, to api.TransportState) bool {
	switch from {
	case api.TransportIdle:
		return to == api.TransportConnecting || to == api.TransportClosed
	case api.TransportConnecting:
		return to == api.TransportOpen || to == api.TransportFailed || to == api.TransportClosed
	case api.TransportOpen:
		return to == api.TransportDraining || to == api.TransportClosed || to == api.TransportFailed
	case api.TransportDraining:
		return to == api.TransportClosed || to == api.TransportFailed
	case api.TransportClosed, api.TransportFailed:
		return to == api.TransportConnecting || to == api.TransportIdle
	default:
		return false
	}
}

// FromCloseStatus maps a coder/websocket close status onto the canonical
// terminal state: orderly closes report closed, everything else failed.
func FromCloseStatus(s websocket.StatusCode) api.TransportState {
	switch s {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return api.TransportClosed
	case -1:
		// No close frame was observed.
		return api.TransportFailed
	default:
		return api.TransportFailed
	}
}
