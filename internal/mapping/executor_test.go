package mapping

import (
	"testing"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/events"
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
)

func twoProfileConfig() *Config {
	return &Config{
		Settings: Settings{
			LeftStickDeadzone:  0.15,
			RightStickDeadzone: 0.15,
			DefaultProfile:     "p0",
			SensitivityFactor:  []float32{1.0, 2.0},
		},
		Profiles: []Profile{
			{
				Name: "p0",
				Buttons: map[joycon2.ButtonType][]Action{
					joycon2.BtnA:   {{Kind: ActionKeyHold, Key: "w"}},
					joycon2.BtnB:   {{Kind: ActionKeyHold, Key: "w"}},
					joycon2.BtnSLR: {{Kind: ActionCycleProfiles}},
				},
			},
			{
				Name: "p1",
				Buttons: map[joycon2.ButtonType][]Action{
					joycon2.BtnA:   {{Kind: ActionKeyHold, Key: "y"}},
					joycon2.BtnSLR: {{Kind: ActionCycleProfiles}},
				},
			},
		},
	}
}

func newTestExecutor(cfg *Config) (*Executor, *backend.MockKeyboard, *backend.MockMouse) {
	kb := backend.NewMockKeyboard()
	mouse := backend.NewMockMouse()
	return NewExecutor(cfg, kb, mouse), kb, mouse
}

func TestRefcountSafetyTwoButtonsSameKey(t *testing.T) {
	ex, kb, _ := newTestExecutor(twoProfileConfig())

	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnA})
	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnB})
	ex.handle(events.Event{Kind: events.ButtonReleased, Button: joycon2.BtnA})
	ex.handle(events.Event{Kind: events.ButtonReleased, Button: joycon2.BtnB})

	got := kb.Snapshot()
	want := []string{"down:w", "up:w"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

func TestProfileSwitchClearsHeldKeys(t *testing.T) {
	ex, kb, _ := newTestExecutor(twoProfileConfig())

	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnA}) // profile 0: "w"
	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnSLR})
	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnA}) // profile 1: "y"

	got := kb.Snapshot()
	want := []string{"down:w", "up:w", "down:y"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if len(ex.held.keysDown) != 1 || !ex.held.keysDown["y"] {
		t.Fatalf("held.keysDown = %v, want only y", ex.held.keysDown)
	}
}

func TestDisconnectClearsHeldKeys(t *testing.T) {
	ex, kb, _ := newTestExecutor(twoProfileConfig())
	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnA})
	ex.handle(events.Event{Kind: events.Disconnected, Side: joycon2.SideLeft})

	got := kb.Snapshot()
	if len(got) != 2 || got[0] != "down:w" || got[1] != "up:w" {
		t.Fatalf("calls = %v, want [down:w up:w]", got)
	}
	if len(ex.held.keysDown) != 0 {
		t.Fatalf("expected no held keys after disconnect, got %v", ex.held.keysDown)
	}
}

func TestApplyStickMovementDeadzone(t *testing.T) {
	cfg := &Config{
		Settings: Settings{LeftStickDeadzone: 0.2, DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{
				Name:       "p0",
				SticksLeft: &StickMapping{Mode: StickMouse, Sensitivity: 1.0},
			},
		},
	}
	ex, _, mouse := newTestExecutor(cfg)

	ex.leftStick = joycon2.Stick{X: 0.1, Y: 0.1} // magnitude < 0.2
	ex.applyStickMovement(StickLeft)
	if len(mouse.Snapshot()) != 0 {
		t.Fatalf("expected no mouse movement inside deadzone, got %v", mouse.Snapshot())
	}

	ex.leftStick = joycon2.Stick{X: 0.5, Y: 0}
	ex.applyStickMovement(StickLeft)
	if len(mouse.Snapshot()) != 1 {
		t.Fatalf("expected one mouse movement outside deadzone, got %v", mouse.Snapshot())
	}
}

func TestApplyStickMovementDirectional(t *testing.T) {
	cfg := &Config{
		Settings: Settings{LeftStickDeadzone: 0.1, DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{
				Name: "p0",
				SticksLeft: &StickMapping{
					Mode:       StickDirectional,
					Directions: DirectionBindings{Up: "w", Down: "s", Left: "a", Right: "d"},
				},
			},
		},
	}
	ex, kb, _ := newTestExecutor(cfg)

	ex.leftStick = joycon2.Stick{X: 0, Y: -0.9} // pushed up
	ex.applyStickMovement(StickLeft)
	if !ex.held.keysDown["w"] {
		t.Fatalf("expected w held, calls=%v", kb.Snapshot())
	}

	ex.leftStick = joycon2.Stick{X: 0, Y: 0} // back to center
	ex.applyStickMovement(StickLeft)
	if ex.held.keysDown["w"] {
		t.Fatalf("expected w released on return to deadzone, calls=%v", kb.Snapshot())
	}
}

func TestCycleSensitivityWraps(t *testing.T) {
	ex, _, _ := newTestExecutor(twoProfileConfig())
	if ex.sensitivityIndex != 0 {
		t.Fatalf("expected initial sensitivity index 0")
	}
	ex.executeAction(Action{Kind: ActionCycleSensitivity}, true, joycon2.SideLeft)
	if ex.sensitivityIndex != 1 {
		t.Fatalf("expected sensitivity index 1, got %d", ex.sensitivityIndex)
	}
	ex.executeAction(Action{Kind: ActionCycleSensitivity}, true, joycon2.SideLeft)
	if ex.sensitivityIndex != 0 {
		t.Fatalf("expected sensitivity index to wrap to 0, got %d", ex.sensitivityIndex)
	}
}

func TestToggleGyroMouseIndependentPerSide(t *testing.T) {
	ex, _, _ := newTestExecutor(twoProfileConfig())
	ex.executeAction(Action{Kind: ActionToggleGyroMouseL}, true, joycon2.SideLeft)
	if !ex.gyroMouse.left || ex.gyroMouse.right {
		t.Fatalf("expected only left gyro-mouse enabled, got %+v", ex.gyroMouse)
	}
}

func TestGyroUpdateIgnoredWhenDisabled(t *testing.T) {
	ex, _, mouse := newTestExecutor(twoProfileConfig())
	ex.handle(events.Event{Kind: events.GyroUpdate, Side: joycon2.SideRight, GyroX: 100, GyroY: 100})
	if len(mouse.Snapshot()) != 0 {
		t.Fatalf("expected gyro ignored while gyro-mouse disabled, got %v", mouse.Snapshot())
	}
}

func TestGyroUpdateMovesMouseWhenEnabled(t *testing.T) {
	cfg := twoProfileConfig()
	cfg.Profiles[0].GyroRight = GyroMapping{SensX: 1, SensY: 1}
	ex, _, mouse := newTestExecutor(cfg)
	ex.gyroMouse.right = true

	ex.handle(events.Event{Kind: events.GyroUpdate, Side: joycon2.SideRight, GyroX: 10, GyroY: 10})
	if len(mouse.Snapshot()) != 1 {
		t.Fatalf("expected one mouse move from gyro update, got %v", mouse.Snapshot())
	}
}

// S1: a stick held past the deadzone in mouse mode keeps producing motion
// on every tick, not just the tick that first crossed the deadzone.
func TestStickMouseModeContinuousMovementPerTick(t *testing.T) {
	cfg := &Config{
		Settings: Settings{LeftStickDeadzone: 0.1, DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{Name: "p0", SticksLeft: &StickMapping{Mode: StickMouse, Sensitivity: 1.0}},
		},
	}
	ex, _, mouse := newTestExecutor(cfg)

	ex.leftStick = joycon2.Stick{X: 0.5, Y: 0}
	for i := 0; i < 3; i++ {
		ex.applyStickMovement(StickLeft)
	}
	got := mouse.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected one move per tick while held, got %v", got)
	}
}

// S2: a diagonal stick push holds two directional keys at once, independently.
func TestDirectionalStickIndependentDiagonalKeys(t *testing.T) {
	cfg := &Config{
		Settings: Settings{LeftStickDeadzone: 0.1, DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{
				Name: "p0",
				SticksLeft: &StickMapping{
					Mode:       StickDirectional,
					Directions: DirectionBindings{Up: "w", Down: "s", Left: "a", Right: "d"},
				},
			},
		},
	}
	ex, kb, _ := newTestExecutor(cfg)

	ex.leftStick = joycon2.Stick{X: -0.9, Y: -0.9} // up-left
	ex.applyStickMovement(StickLeft)

	if !ex.held.keysDown["w"] || !ex.held.keysDown["a"] {
		t.Fatalf("expected both w and a held for diagonal push, calls=%v", kb.Snapshot())
	}

	ex.leftStick = joycon2.Stick{X: 0, Y: -0.9} // back to up only
	ex.applyStickMovement(StickLeft)
	if ex.held.keysDown["a"] {
		t.Fatalf("expected a released once x returns to center, calls=%v", kb.Snapshot())
	}
	if !ex.held.keysDown["w"] {
		t.Fatalf("expected w to remain held, calls=%v", kb.Snapshot())
	}
}

// S3: a "+"-joined combo acquires its atoms in order on press and releases
// them in reverse order on release.
func TestComboKeyHoldPressReleaseOrder(t *testing.T) {
	ex, kb, _ := newTestExecutor(twoProfileConfig())

	ex.executeAction(Action{Kind: ActionKeyHold, Key: "shift+w"}, true, joycon2.SideLeft)
	ex.executeAction(Action{Kind: ActionKeyHold, Key: "shift+w"}, false, joycon2.SideLeft)

	got := kb.Snapshot()
	want := []string{"down:shift", "down:w", "up:w", "up:shift"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
}

// S5: with gyro-mouse enabled for a side, a button bound to a mouse-click
// override fires the mouse, not the profile's normal (non-override) binding.
func TestGyroMouseOverrideRoutesMouseClick(t *testing.T) {
	cfg := twoProfileConfig()
	cfg.Profiles[0].Buttons[joycon2.BtnX] = []Action{{Kind: ActionKeyHold, Key: "x"}}
	cfg.Profiles[0].GyroMouseOverridesRight = map[joycon2.ButtonType][]Action{
		joycon2.BtnX: {{Kind: ActionMouseClick, Button: backend.MouseLeft}},
	}
	ex, kb, mouse := newTestExecutor(cfg)
	ex.gyroMouse.right = true

	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnX})
	ex.handle(events.Event{Kind: events.ButtonReleased, Button: joycon2.BtnX})

	if len(kb.Snapshot()) != 0 {
		t.Fatalf("expected no keyboard calls while override active, got %v", kb.Snapshot())
	}
	got := mouse.Snapshot()
	want := []string{"down:left", "up:left"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("mouse calls = %v, want %v", got, want)
	}
}

// Property #2: a key held by both a button and a stick direction is only
// released once every claimant lets go; releasing the button alone must
// not fire a premature key-up while the stick still holds it.
func TestMultiSourceOverlapPartialReleaseKeepsKeyDown(t *testing.T) {
	cfg := &Config{
		Settings: Settings{LeftStickDeadzone: 0.1, DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{
				Name: "p0",
				Buttons: map[joycon2.ButtonType][]Action{
					joycon2.BtnA: {{Kind: ActionKeyHold, Key: "w"}},
				},
				SticksLeft: &StickMapping{
					Mode:       StickDirectional,
					Directions: DirectionBindings{Up: "w"},
				},
			},
		},
	}
	ex, kb, _ := newTestExecutor(cfg)

	ex.handle(events.Event{Kind: events.ButtonPressed, Button: joycon2.BtnA})
	ex.leftStick = joycon2.Stick{X: 0, Y: -0.9} // stick also claims "w"
	ex.applyStickMovement(StickLeft)

	ex.handle(events.Event{Kind: events.ButtonReleased, Button: joycon2.BtnA})
	if !ex.held.keysDown["w"] {
		t.Fatalf("expected w to remain held while stick still claims it, calls=%v", kb.Snapshot())
	}

	ex.leftStick = joycon2.Stick{X: 0, Y: 0}
	ex.applyStickMovement(StickLeft)
	if ex.held.keysDown["w"] {
		t.Fatalf("expected w released once stick also lets go, calls=%v", kb.Snapshot())
	}

	got := kb.Snapshot()
	want := []string{"down:w", "up:w"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("calls = %v, want exactly one down/up pair %v", got, want)
	}
}
