// Package mapping holds the profile/action configuration model, its
// validator, and the mapping executor that turns events into backend
// calls under the active profile.
package mapping

import (
	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
)

// StickMode selects how an analog stick's movement is interpreted.
type StickMode int

const (
	StickDisabled StickMode = iota
	StickMouse
	StickDirectional
)

// ActionKind discriminates an Action's payload. Actions are a tagged
// variant, matching spec.md's description of Action as an enumeration
// rather than a class hierarchy.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionKeyHold
	ActionMouseMove
	ActionMouseClick
	ActionCycleProfiles
	ActionCycleSensitivity
	ActionToggleGyroMouseL
	ActionToggleGyroMouseR
)

// Action is one step a button binding executes. Only the fields relevant
// to Kind are meaningful.
type Action struct {
	Kind   ActionKind
	Key    string // ActionKeyHold: normalized combo string, e.g. "shift+w"
	Dx     int32  // ActionMouseMove
	Dy     int32  // ActionMouseMove
	Button backend.MouseButton // ActionMouseClick
}

// IsMeta reports whether this action mutates executor state rather than
// producing host input (spec.md glossary: "meta action").
func (a Action) IsMeta() bool {
	switch a.Kind {
	case ActionCycleProfiles, ActionCycleSensitivity, ActionToggleGyroMouseL, ActionToggleGyroMouseR:
		return true
	default:
		return false
	}
}

// DirectionBindings names the key (or combo) bound to each of a
// Directional stick's four directions.
type DirectionBindings struct {
	Up    string
	Down  string
	Left  string
	Right string
}

// StickMapping configures one analog stick for one profile.
type StickMapping struct {
	Mode        StickMode
	Sensitivity float32
	Directions  DirectionBindings // only meaningful when Mode == StickDirectional
}

// GyroMapping configures gyro-to-mouse translation for one physical
// controller side, per spec.md §4.6's apply formula.
type GyroMapping struct {
	InvertX bool
	InvertY bool
	SensX   float32
	SensY   float32
}

// StickSlot distinguishes the left vs right analog stick in a profile.
type StickSlot int

const (
	StickLeft StickSlot = iota
	StickRight
)

// Profile is one named, switchable mapping configuration.
type Profile struct {
	Name        string
	Description string

	Buttons map[joycon2.ButtonType][]Action

	SticksLeft  *StickMapping // nil means this stick has no mapping in this profile
	SticksRight *StickMapping

	GyroLeft  GyroMapping
	GyroRight GyroMapping

	GyroMouseOverridesLeft  map[joycon2.ButtonType][]Action
	GyroMouseOverridesRight map[joycon2.ButtonType][]Action
}

// StickMapping returns the mapping for slot, or nil if unmapped.
func (p *Profile) StickMapping(slot StickSlot) *StickMapping {
	if slot == StickLeft {
		return p.SticksLeft
	}
	return p.SticksRight
}

// Override returns the gyro-mouse override action list for side, or nil.
func (p *Profile) Override(side joycon2.Side) map[joycon2.ButtonType][]Action {
	if side == joycon2.SideLeft {
		return p.GyroMouseOverridesLeft
	}
	return p.GyroMouseOverridesRight
}

// Settings holds the global, profile-independent knobs.
type Settings struct {
	LeftStickDeadzone  float32
	RightStickDeadzone float32
	VibrationEnabled   bool
	DefaultProfile     string
	SensitivityFactor  []float32
}

// Deadzone returns the configured deadzone for slot.
func (s Settings) Deadzone(slot StickSlot) float32 {
	if slot == StickLeft {
		return s.LeftStickDeadzone
	}
	return s.RightStickDeadzone
}

// DefaultSettings returns spec.md's documented defaults.
func DefaultSettings() Settings {
	return Settings{
		LeftStickDeadzone:  0.15,
		RightStickDeadzone: 0.15,
		VibrationEnabled:   true,
		SensitivityFactor:  []float32{1.0, 2.0, 3.0},
	}
}

// Config is the fully-typed, validated in-memory schema.
type Config struct {
	Settings Settings
	Profiles []Profile
}

// DefaultProfileIndex returns the index of Settings.DefaultProfile among
// Profiles. Callers must validate the config first; this panics on a
// config that failed validation.
func (c *Config) DefaultProfileIndex() int {
	for i, p := range c.Profiles {
		if p.Name == c.Settings.DefaultProfile {
			return i
		}
	}
	panic("mapping: default profile not found; config was not validated")
}
