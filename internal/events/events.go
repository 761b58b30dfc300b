// Package events turns successive controller snapshots into edge-triggered
// events and carries them to the mapping executor over a bounded channel.
package events

import "github.com/2vincentLin/joycon2bridge/internal/joycon2"

// Kind discriminates the payload carried by an Event. Events are a tagged
// variant, not a type hierarchy: one struct, one discriminator field.
type Kind int

const (
	ButtonPressed Kind = iota
	ButtonReleased
	StickMoved
	GyroUpdate
	Connected
	Disconnected
)

func (k Kind) String() string {
	switch k {
	case ButtonPressed:
		return "ButtonPressed"
	case ButtonReleased:
		return "ButtonReleased"
	case StickMoved:
		return "StickMoved"
	case GyroUpdate:
		return "GyroUpdate"
	case Connected:
		return "Connected"
	case Disconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Event is the single tagged-variant type flowing through the bounded
// event channel shared by every controller thread and the executor.
type Event struct {
	Kind   Kind
	Side   joycon2.Side
	Button joycon2.ButtonType // ButtonPressed / ButtonReleased

	StickX float32 // StickMoved
	StickY float32

	GyroX float32 // GyroUpdate
	GyroY float32
	GyroZ float32
}

// ChannelCapacity is the bound spec.md §4.4 calls out: excess events are
// dropped at the sender, never blocking a controller thread.
const ChannelCapacity = 100

// NewChannel builds the shared, bounded event channel.
func NewChannel() chan Event {
	return make(chan Event, ChannelCapacity)
}

// Send performs the drop-if-full non-blocking send spec.md requires; a
// lost edge event is tolerated because the next snapshot resynchronizes
// state within one frame.
func Send(ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
