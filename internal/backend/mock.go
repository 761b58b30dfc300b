package backend

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// MockKeyboard logs every call and always succeeds. Useful for config
// dry-runs and deterministic tests of the mapping executor.
type MockKeyboard struct {
	mu    sync.Mutex
	Calls []string
}

func NewMockKeyboard() *MockKeyboard {
	return &MockKeyboard{}
}

func (k *MockKeyboard) record(call string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.Calls = append(k.Calls, call)
}

func (k *MockKeyboard) KeyDown(name string) error {
	if !IsRecognizedKey(name) {
		return &unsupportedKeyError{name: name}
	}
	log.Infof("mock keyboard: key down %s", name)
	k.record("down:" + name)
	return nil
}

func (k *MockKeyboard) KeyUp(name string) error {
	if !IsRecognizedKey(name) {
		return &unsupportedKeyError{name: name}
	}
	log.Infof("mock keyboard: key up %s", name)
	k.record("up:" + name)
	return nil
}

func (k *MockKeyboard) KeyPress(name string) error {
	if err := k.KeyDown(name); err != nil {
		return err
	}
	return k.KeyUp(name)
}

// Snapshot returns a copy of the calls recorded so far, for test assertions.
func (k *MockKeyboard) Snapshot() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.Calls))
	copy(out, k.Calls)
	return out
}

// MockMouse logs every call and always succeeds.
type MockMouse struct {
	mu    sync.Mutex
	Calls []string
}

func NewMockMouse() *MockMouse {
	return &MockMouse{}
}

func (m *MockMouse) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockMouse) MoveRelative(dx, dy int32) error {
	log.Infof("mock mouse: move relative (%d, %d)", dx, dy)
	m.record("move")
	return nil
}

func (m *MockMouse) ButtonDown(button MouseButton) error {
	log.Infof("mock mouse: button down %s", button)
	m.record("down:" + button.String())
	return nil
}

func (m *MockMouse) ButtonUp(button MouseButton) error {
	log.Infof("mock mouse: button up %s", button)
	m.record("up:" + button.String())
	return nil
}

func (m *MockMouse) Click(button MouseButton) error {
	if err := m.ButtonDown(button); err != nil {
		return err
	}
	return m.ButtonUp(button)
}

func (m *MockMouse) Snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	copy(out, m.Calls)
	return out
}
