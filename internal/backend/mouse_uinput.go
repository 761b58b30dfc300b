package backend

import (
	"sync"

	"github.com/bendahl/uinput"
	log "github.com/sirupsen/logrus"
)

// uinputMouse injects relative motion and button events into a virtual
// Linux mouse device. bendahl/uinput exposes directional move calls rather
// than a single signed-delta call, so MoveRelative fans a (dx,dy) pair out
// into the appropriate direction calls.
type uinputMouse struct {
	mu  sync.Mutex
	dev uinput.Mouse
}

func NewUinputMouse() (Mouse, error) {
	dev, err := uinput.CreateMouse("/dev/uinput", []byte("joycon2-bridge-mouse"))
	if err != nil {
		return nil, wrapOp("create mouse", err)
	}
	log.Info("uinput mouse device created")
	return &uinputMouse{dev: dev}, nil
}

func (m *uinputMouse) MoveRelative(dx, dy int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dx > 0 {
		if err := m.dev.MoveRight(dx); err != nil {
			return wrapOp("move right", err)
		}
	} else if dx < 0 {
		if err := m.dev.MoveLeft(-dx); err != nil {
			return wrapOp("move left", err)
		}
	}
	if dy > 0 {
		if err := m.dev.MoveDown(dy); err != nil {
			return wrapOp("move down", err)
		}
	} else if dy < 0 {
		if err := m.dev.MoveUp(-dy); err != nil {
			return wrapOp("move up", err)
		}
	}
	return nil
}

func (m *uinputMouse) ButtonDown(button MouseButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	switch button {
	case MouseLeft:
		err = m.dev.LeftPress()
	case MouseRight:
		err = m.dev.RightPress()
	case MouseMiddle:
		err = m.dev.MiddlePress()
	default:
		return &unsupportedKeyError{name: button.String()}
	}
	if err != nil {
		return wrapOp("button down "+button.String(), err)
	}
	return nil
}

func (m *uinputMouse) ButtonUp(button MouseButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	switch button {
	case MouseLeft:
		err = m.dev.LeftRelease()
	case MouseRight:
		err = m.dev.RightRelease()
	case MouseMiddle:
		err = m.dev.MiddleRelease()
	default:
		return &unsupportedKeyError{name: button.String()}
	}
	if err != nil {
		return wrapOp("button up "+button.String(), err)
	}
	return nil
}

func (m *uinputMouse) Click(button MouseButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	switch button {
	case MouseLeft:
		err = m.dev.LeftClick()
	case MouseRight:
		err = m.dev.RightClick()
	case MouseMiddle:
		err = m.dev.MiddleClick()
	default:
		return &unsupportedKeyError{name: button.String()}
	}
	if err != nil {
		return wrapOp("click "+button.String(), err)
	}
	return nil
}
