package backend

import (
	"sync"

	"github.com/bendahl/uinput"
	log "github.com/sirupsen/logrus"
)

// uinputKeyboard injects key events into a virtual Linux keyboard device.
// Writes are serialized: the mapping executor is the sole caller, and the
// mutex only guards against the rare case of a concurrent clear_all racing
// a fresh event during shutdown.
type uinputKeyboard struct {
	mu  sync.Mutex
	dev uinput.Keyboard
}

// NewUinputKeyboard creates a virtual keyboard named "joycon2-bridge" on
// /dev/uinput, grounded on the teacher's /dev/hidg report-write loop but
// targeting a uinput device rather than a USB HID gadget endpoint.
func NewUinputKeyboard() (Keyboard, error) {
	dev, err := uinput.CreateKeyboard("/dev/uinput", []byte("joycon2-bridge-keyboard"))
	if err != nil {
		return nil, wrapOp("create keyboard", err)
	}
	log.Info("uinput keyboard device created")
	return &uinputKeyboard{dev: dev}, nil
}

func (k *uinputKeyboard) KeyDown(name string) error {
	code, ok := keyCodeFor(name)
	if !ok {
		return &unsupportedKeyError{name: name}
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	log.Debugf("keyboard: key down %s (code %d)", name, code)
	if err := k.dev.KeyDown(code); err != nil {
		return wrapOp("key down "+name, err)
	}
	return nil
}

func (k *uinputKeyboard) KeyUp(name string) error {
	code, ok := keyCodeFor(name)
	if !ok {
		return &unsupportedKeyError{name: name}
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	log.Debugf("keyboard: key up %s (code %d)", name, code)
	if err := k.dev.KeyUp(code); err != nil {
		return wrapOp("key up "+name, err)
	}
	return nil
}

func (k *uinputKeyboard) KeyPress(name string) error {
	code, ok := keyCodeFor(name)
	if !ok {
		return &unsupportedKeyError{name: name}
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.dev.KeyPress(code); err != nil {
		return wrapOp("key press "+name, err)
	}
	return nil
}
