// Package ble implements the side-qualified scan → connect → handshake →
// stream state machine for a single Joy-Con 2 controller, on top of
// muka/go-bluetooth's BlueZ D-Bus bindings.
package ble

// State is a connection's lifecycle stage. It only ever advances forward
// until an explicit Disconnect, which resets it to Disconnected.
type State int

const (
	Disconnected State = iota
	Connecting
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
