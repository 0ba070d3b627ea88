// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Canonical transport-state vocabulary shared by the translation shim and
// any component reporting connection health.

package api

// TransportState enumerates the canonical states of an underlying transport.
type TransportState int

const (
	TransportUnknown TransportState = iota
	TransportIdle
	TransportConnecting
	TransportOpen
	TransportDraining
	TransportClosed
	TransportFailed
)

func (s TransportState) String() string {
	switch s {
	case TransportIdle:
		return "idle"
	case TransportConnecting:
		return "connecting"
	case TransportOpen:
		return "open"
	case TransportDraining:
		return "draining"
	case TransportClosed:
		return "closed"
	case TransportFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition records one observed state change with its native origin code.
type Transition struct {
	From   TransportState
	To     TransportState
	Native int
	Reason string
}
