// Package backend abstracts host input injection behind two small
// capability interfaces so the mapping executor never touches OS details
// directly. Implementations must be safe to share across goroutines; the
// executor is the only caller, but backends are constructed once in
// cmd/joycon2bridge and the same values are handed to the manager.
package backend

import "github.com/2vincentLin/joycon2bridge/internal/joyerr"

// MouseButton enumerates the host mouse buttons an Action can target.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// Keyboard injects key down/up events by name. Names are case-insensitive
// and must be members of the fixed set enumerated in keynames.go.
type Keyboard interface {
	KeyDown(name string) error
	KeyUp(name string) error
	KeyPress(name string) error
}

// Mouse injects relative motion and button events.
type Mouse interface {
	MoveRelative(dx, dy int32) error
	ButtonDown(button MouseButton) error
	ButtonUp(button MouseButton) error
	Click(button MouseButton) error
}

// wrapOp turns an OS-level failure into the BackendOp error kind.
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

type opError struct {
	op  string
	err error
}

func (e *opError) Error() string {
	return "backend: " + e.op + ": " + e.err.Error()
}

func (e *opError) Unwrap() error {
	return joyerr.ErrBackendOp
}

// unsupportedKeyError reports a name outside the recognized key set.
type unsupportedKeyError struct {
	name string
}

func (e *unsupportedKeyError) Error() string {
	return "backend: unsupported key: " + e.name
}

func (e *unsupportedKeyError) Unwrap() error {
	return joyerr.ErrUnsupportedKey
}
