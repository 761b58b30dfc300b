package mapping

import (
	"math"
	"time"

	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/events"
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
)

var log = logrus.WithField("component", "mapping")

const (
	stickMoveSensitivityFactor = 10
	directionalThreshold       = 0.5
	tickInterval               = 16 * time.Millisecond
)

// source distinguishes the two ways a logical key can be held, per the
// refcounting rules: a button source adds to a counter, a stick source is
// idempotent.
type source int

const (
	sourceButton source = iota
	sourceStick
)

type keyRefs struct {
	buttonCount uint32
	stickHeld   bool
}

func (k keyRefs) total() uint32 {
	n := k.buttonCount
	if k.stickHeld {
		n++
	}
	return n
}

// heldState tracks every logical key hold backed by one or more claim
// sources, so a key bound to two buttons (or a button and a stick
// direction) is only released to the backend once every claimant lets go.
type heldState struct {
	buttons    map[joycon2.ButtonType]bool
	keySources map[string]keyRefs
	keysDown   map[string]bool
}

func newHeldState() *heldState {
	return &heldState{
		buttons:    make(map[joycon2.ButtonType]bool),
		keySources: make(map[string]keyRefs),
		keysDown:   make(map[string]bool),
	}
}

func (h *heldState) pressKey(kb backend.Keyboard, name string, src source) {
	refs := h.keySources[name]
	wasZero := refs.total() == 0
	switch src {
	case sourceButton:
		refs.buttonCount++
	case sourceStick:
		refs.stickHeld = true
	}
	h.keySources[name] = refs
	if wasZero {
		if err := kb.KeyDown(name); err != nil {
			log.Warnf("key_down(%s) failed: %v", name, err)
		}
		h.keysDown[name] = true
	}
}

func (h *heldState) releaseKey(kb backend.Keyboard, name string, src source) {
	refs, ok := h.keySources[name]
	if !ok {
		return
	}
	switch src {
	case sourceButton:
		if refs.buttonCount > 0 {
			refs.buttonCount--
		}
	case sourceStick:
		refs.stickHeld = false
	}
	if refs.total() == 0 {
		delete(h.keySources, name)
		if h.keysDown[name] {
			if err := kb.KeyUp(name); err != nil {
				log.Warnf("key_up(%s) failed: %v", name, err)
			}
			delete(h.keysDown, name)
		}
		return
	}
	h.keySources[name] = refs
}

func (h *heldState) clearAll(kb backend.Keyboard) {
	for name := range h.keysDown {
		if err := kb.KeyUp(name); err != nil {
			log.Warnf("key_up(%s) failed: %v", name, err)
		}
	}
	h.buttons = make(map[joycon2.ButtonType]bool)
	h.keySources = make(map[string]keyRefs)
	h.keysDown = make(map[string]bool)
}

// pressCombo/releaseCombo acquire or release every atom of a "+"-joined
// key combo, in order on press and reverse order on release.
func pressCombo(h *heldState, kb backend.Keyboard, combo string, src source) {
	for _, key := range backend.SplitCombo(combo) {
		h.pressKey(kb, key, src)
	}
}

func releaseCombo(h *heldState, kb backend.Keyboard, combo string, src source) {
	atoms := backend.SplitCombo(combo)
	for i := len(atoms) - 1; i >= 0; i-- {
		h.releaseKey(kb, atoms[i], src)
	}
}

// gyroMouseState tracks, per side, whether GyroUpdate events currently
// produce mouse motion and whether the profile's override map applies to
// button events on that side.
type gyroMouseState struct {
	left  bool
	right bool
}

func (g *gyroMouseState) forSide(side joycon2.Side) bool {
	if side == joycon2.SideLeft {
		return g.left
	}
	return g.right
}

func (g *gyroMouseState) toggle(side joycon2.Side) {
	if side == joycon2.SideLeft {
		g.left = !g.left
	} else {
		g.right = !g.right
	}
}

// Executor is the heart of the bridge: it consumes events off the shared
// channel and drives the keyboard/mouse backends under the currently
// active profile, with refcounted key holds so overlapping bindings never
// strand a key down.
type Executor struct {
	cfg      *Config
	keyboard backend.Keyboard
	mouse    backend.Mouse

	profileIndex     int
	sensitivityIndex int
	gyroMouse        gyroMouseState
	leftStick        joycon2.Stick
	rightStick       joycon2.Stick
	held             *heldState
}

// NewExecutor builds an executor starting on the config's default profile.
func NewExecutor(cfg *Config, kb backend.Keyboard, mouse backend.Mouse) *Executor {
	return &Executor{
		cfg:          cfg,
		keyboard:     kb,
		mouse:        mouse,
		profileIndex: cfg.DefaultProfileIndex(),
		held:         newHeldState(),
	}
}

func (e *Executor) profile() *Profile {
	return &e.cfg.Profiles[e.profileIndex]
}

func (e *Executor) sensitivity() float32 {
	factors := e.cfg.Settings.SensitivityFactor
	return factors[e.sensitivityIndex%len(factors)]
}

// Run blocks, consuming ch until it is closed. It ticks apply_stick_movement
// for both sticks roughly every 16ms so a held stick keeps producing motion
// even without fresh stick events.
func (e *Executor) Run(ch <-chan events.Event) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			start := hrtime.Now()
			e.handle(ev)
			if d := hrtime.Since(start); d > 5*time.Millisecond {
				log.Warnf("executor: slow event handling for %s: %s", ev.Kind, d)
			}
		case <-ticker.C:
			e.applyStickMovement(StickLeft)
			e.applyStickMovement(StickRight)
		}
	}
}

func (e *Executor) handle(ev events.Event) {
	switch ev.Kind {
	case events.ButtonPressed:
		e.handleButtonPressed(ev)
	case events.ButtonReleased:
		e.handleButtonReleased(ev)
	case events.StickMoved:
		slot := slotForSide(ev.Side)
		if slot == StickLeft {
			e.leftStick = joycon2.Stick{X: ev.StickX, Y: ev.StickY}
		} else {
			e.rightStick = joycon2.Stick{X: ev.StickX, Y: ev.StickY}
		}
		e.applyStickMovement(slot)
	case events.GyroUpdate:
		e.handleGyroUpdate(ev)
	case events.Disconnected:
		e.held.clearAll(e.keyboard)
	}
}

// slotForSide maps a physical controller side to the stick slot it owns.
// A Joy-Con 2 has one stick; the left controller's stick is the left
// slot, the right controller's stick is the right slot.
func slotForSide(side joycon2.Side) StickSlot {
	if side == joycon2.SideLeft {
		return StickLeft
	}
	return StickRight
}

func (e *Executor) handleButtonPressed(ev events.Event) {
	if e.held.buttons[ev.Button] {
		return
	}
	e.held.buttons[ev.Button] = true
	side := buttonSide(ev.Button)
	actions := e.effectiveActions(side, ev.Button)
	for _, a := range actions {
		e.executeAction(a, true, side)
	}
}

func (e *Executor) handleButtonReleased(ev events.Event) {
	if !e.held.buttons[ev.Button] {
		return
	}
	delete(e.held.buttons, ev.Button)
	side := buttonSide(ev.Button)
	actions := e.effectiveActions(side, ev.Button)
	for _, a := range actions {
		e.executeAction(a, false, side)
	}
}

// buttonSide implements the side partition: A,B,X,Y,R,ZR,Plus,Home,
// RightStickClick,SLR,SRR,Chat belong to the right controller; all other
// buttons belong to the left.
func buttonSide(bt joycon2.ButtonType) joycon2.Side {
	if bt.IsRightSideButton() {
		return joycon2.SideRight
	}
	return joycon2.SideLeft
}

func (e *Executor) effectiveActions(side joycon2.Side, bt joycon2.ButtonType) []Action {
	p := e.profile()
	if e.gyroMouse.forSide(side) {
		if override := p.Override(side); override != nil {
			if actions, ok := override[bt]; ok {
				return actions
			}
		}
	}
	return p.Buttons[bt]
}

func (e *Executor) executeAction(a Action, pressed bool, side joycon2.Side) {
	switch a.Kind {
	case ActionNone:
		return
	case ActionKeyHold:
		if a.Key == "" {
			return
		}
		if pressed {
			pressCombo(e.held, e.keyboard, a.Key, sourceButton)
		} else {
			releaseCombo(e.held, e.keyboard, a.Key, sourceButton)
		}
	case ActionMouseMove:
		if !pressed {
			return
		}
		if a.Dx != 0 || a.Dy != 0 {
			if err := e.mouse.MoveRelative(a.Dx, a.Dy); err != nil {
				log.Warnf("mouse.move_relative failed: %v", err)
			}
		}
	case ActionMouseClick:
		if pressed {
			if err := e.mouse.ButtonDown(a.Button); err != nil {
				log.Warnf("mouse.button_down failed: %v", err)
			}
		} else {
			if err := e.mouse.ButtonUp(a.Button); err != nil {
				log.Warnf("mouse.button_up failed: %v", err)
			}
		}
	case ActionCycleProfiles:
		if !pressed {
			return
		}
		e.cycleProfiles()
	case ActionCycleSensitivity:
		if !pressed {
			return
		}
		e.sensitivityIndex = (e.sensitivityIndex + 1) % len(e.cfg.Settings.SensitivityFactor)
	case ActionToggleGyroMouseL:
		if !pressed {
			return
		}
		e.gyroMouse.toggle(joycon2.SideLeft)
	case ActionToggleGyroMouseR:
		if !pressed {
			return
		}
		e.gyroMouse.toggle(joycon2.SideRight)
	}
}

func (e *Executor) cycleProfiles() {
	e.profileIndex = (e.profileIndex + 1) % len(e.cfg.Profiles)
	e.held.clearAll(e.keyboard)
}

func (e *Executor) handleGyroUpdate(ev events.Event) {
	if !e.gyroMouse.forSide(ev.Side) {
		return
	}
	var gm GyroMapping
	if ev.Side == joycon2.SideLeft {
		gm = e.profile().GyroLeft
	} else {
		gm = e.profile().GyroRight
	}
	s := e.sensitivity()
	dxf := ev.GyroY * gm.SensX * s
	dyf := -ev.GyroX * gm.SensY * s
	if gm.InvertX {
		dxf = -dxf
	}
	if gm.InvertY {
		dyf = -dyf
	}
	dx, dy := int32(dxf), int32(dyf)
	if dx == 0 && dy == 0 {
		return
	}
	if err := e.mouse.MoveRelative(dx, dy); err != nil {
		log.Warnf("mouse.move_relative failed: %v", err)
	}
}

func (e *Executor) applyStickMovement(slot StickSlot) {
	sm := e.profile().StickMapping(slot)
	if sm == nil {
		return
	}

	var pos joycon2.Stick
	var side joycon2.Side
	if slot == StickLeft {
		pos = e.leftStick
		side = joycon2.SideLeft
	} else {
		pos = e.rightStick
		side = joycon2.SideRight
	}

	magnitude := float32(math.Sqrt(float64(pos.X*pos.X + pos.Y*pos.Y)))
	deadzone := e.cfg.Settings.Deadzone(slot)
	if magnitude < deadzone {
		if sm.Mode == StickDirectional {
			e.releaseDirectional(sm)
		}
		return
	}

	s := e.sensitivity()
	switch sm.Mode {
	case StickMouse:
		dx := int32(pos.X * sm.Sensitivity * s * stickMoveSensitivityFactor)
		dy := int32(pos.Y * sm.Sensitivity * s * stickMoveSensitivityFactor)
		if dx != 0 || dy != 0 {
			if err := e.mouse.MoveRelative(dx, dy); err != nil {
				log.Warnf("mouse.move_relative failed: %v", err)
			}
		}
	case StickDirectional:
		e.applyDirectional(sm, pos, side)
	case StickDisabled:
	}
}

func (e *Executor) applyDirectional(sm *StickMapping, pos joycon2.Stick, side joycon2.Side) {
	e.setDirection(sm.Directions.Up, pos.Y < -directionalThreshold)
	e.setDirection(sm.Directions.Down, pos.Y > directionalThreshold)
	e.setDirection(sm.Directions.Left, pos.X < -directionalThreshold)
	e.setDirection(sm.Directions.Right, pos.X > directionalThreshold)
}

func (e *Executor) releaseDirectional(sm *StickMapping) {
	for _, key := range []string{sm.Directions.Up, sm.Directions.Down, sm.Directions.Left, sm.Directions.Right} {
		if key == "" {
			continue
		}
		releaseCombo(e.held, e.keyboard, key, sourceStick)
	}
}

func (e *Executor) setDirection(combo string, want bool) {
	if combo == "" {
		return
	}
	if want {
		pressCombo(e.held, e.keyboard, combo, sourceStick)
	} else {
		releaseCombo(e.held, e.keyboard, combo, sourceStick)
	}
}
