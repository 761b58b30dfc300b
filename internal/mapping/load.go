package mapping

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
)

// The config file's TOML shape is kept deliberately "flat" — one struct per
// table, actions as inline tables with a type discriminator — so the TOML
// library never has to understand ButtonType or the Action variant; that
// translation happens once, in fromRaw below, matching spec.md's framing
// of the parser as an external collaborator and the schema as the
// contract this package owns.

type rawAction struct {
	Type   string `toml:"type"`
	Key    string `toml:"key"`
	Dx     int32  `toml:"dx"`
	Dy     int32  `toml:"dy"`
	Button string `toml:"button"`
}

type rawDirections struct {
	Up    string `toml:"up"`
	Down  string `toml:"down"`
	Left  string `toml:"left"`
	Right string `toml:"right"`
}

type rawStickMapping struct {
	Mode        string         `toml:"mode"`
	Sensitivity float32        `toml:"sensitivity"`
	Directions  *rawDirections `toml:"directions"`
}

type rawGyroMapping struct {
	InvertX bool    `toml:"invert_x"`
	InvertY bool    `toml:"invert_y"`
	SensX   float32 `toml:"sens_x"`
	SensY   float32 `toml:"sens_y"`
}

type rawSticks struct {
	Left  *rawStickMapping `toml:"left"`
	Right *rawStickMapping `toml:"right"`
}

type rawGyro struct {
	Left  rawGyroMapping `toml:"left"`
	Right rawGyroMapping `toml:"right"`
}

type rawProfile struct {
	Name        string                    `toml:"name"`
	Description string                    `toml:"description"`
	Buttons     map[string][]rawAction    `toml:"buttons"`
	Sticks      rawSticks                 `toml:"sticks"`
	Gyro        rawGyro                   `toml:"gyro"`
	OverridesL  map[string][]rawAction    `toml:"gyro_mouse_overrides_left"`
	OverridesR  map[string][]rawAction    `toml:"gyro_mouse_overrides_right"`
}

type rawSettings struct {
	LeftStickDeadzone  float32   `toml:"left_stick_deadzone"`
	RightStickDeadzone float32   `toml:"right_stick_deadzone"`
	VibrationEnabled   bool      `toml:"vibration_enabled"`
	DefaultProfile     string    `toml:"default_profile"`
	SensitivityFactor  []float32 `toml:"sensitivity_factor"`
}

type rawConfig struct {
	Settings rawSettings  `toml:"settings"`
	Profiles []rawProfile `toml:"profiles"`
}

// LoadFile reads, parses, and validates a TOML config file. A parse error
// or a validation error both come back wrapped in joyerr.ErrConfigInvalid.
func LoadFile(path string) (*Config, error) {
	var raw rawConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", joyerr.ErrConfigInvalid, path, err)
	}
	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	settings := DefaultSettings()
	if raw.Settings.LeftStickDeadzone != 0 {
		settings.LeftStickDeadzone = raw.Settings.LeftStickDeadzone
	}
	if raw.Settings.RightStickDeadzone != 0 {
		settings.RightStickDeadzone = raw.Settings.RightStickDeadzone
	}
	settings.VibrationEnabled = raw.Settings.VibrationEnabled
	settings.DefaultProfile = raw.Settings.DefaultProfile
	if len(raw.Settings.SensitivityFactor) > 0 {
		settings.SensitivityFactor = raw.Settings.SensitivityFactor
	}

	profiles := make([]Profile, 0, len(raw.Profiles))
	for _, rp := range raw.Profiles {
		p, err := profileFromRaw(rp)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return &Config{Settings: settings, Profiles: profiles}, nil
}

func profileFromRaw(rp rawProfile) (Profile, error) {
	buttons, err := actionMapFromRaw(rp.Name, "buttons", rp.Buttons)
	if err != nil {
		return Profile{}, err
	}
	overridesL, err := actionMapFromRaw(rp.Name, "gyro_mouse_overrides_left", rp.OverridesL)
	if err != nil {
		return Profile{}, err
	}
	overridesR, err := actionMapFromRaw(rp.Name, "gyro_mouse_overrides_right", rp.OverridesR)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Name:                    rp.Name,
		Description:             rp.Description,
		Buttons:                 buttons,
		GyroLeft:                gyroMappingFromRaw(rp.Gyro.Left),
		GyroRight:               gyroMappingFromRaw(rp.Gyro.Right),
		GyroMouseOverridesLeft:  overridesL,
		GyroMouseOverridesRight: overridesR,
	}

	if rp.Sticks.Left != nil {
		sm, err := stickMappingFromRaw(rp.Name, "left", *rp.Sticks.Left)
		if err != nil {
			return Profile{}, err
		}
		p.SticksLeft = &sm
	}
	if rp.Sticks.Right != nil {
		sm, err := stickMappingFromRaw(rp.Name, "right", *rp.Sticks.Right)
		if err != nil {
			return Profile{}, err
		}
		p.SticksRight = &sm
	}

	return p, nil
}

func actionMapFromRaw(profileName, field string, raw map[string][]rawAction) (map[joycon2.ButtonType][]Action, error) {
	if len(raw) == 0 {
		return map[joycon2.ButtonType][]Action{}, nil
	}
	out := make(map[joycon2.ButtonType][]Action, len(raw))
	for name, actions := range raw {
		bt, ok := joycon2.ParseButtonType(name)
		if !ok {
			return nil, configErrf(profileName, field, name, "unrecognized button name")
		}
		converted := make([]Action, 0, len(actions))
		for _, ra := range actions {
			a, err := actionFromRaw(profileName, field, ra)
			if err != nil {
				return nil, err
			}
			converted = append(converted, a)
		}
		out[bt] = converted
	}
	return out, nil
}

func actionFromRaw(profileName, field string, ra rawAction) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(ra.Type)) {
	case "", "none":
		return Action{Kind: ActionNone}, nil
	case "keyhold":
		key := strings.TrimSpace(ra.Key)
		if key == "" {
			log.Warnf("profile %q: field %q: keyhold with empty key, treating as none", profileName, field)
			return Action{Kind: ActionNone}, nil
		}
		return Action{Kind: ActionKeyHold, Key: backend.NormalizeKeyName(key)}, nil
	case "mousemove":
		return Action{Kind: ActionMouseMove, Dx: ra.Dx, Dy: ra.Dy}, nil
	case "mouseclick":
		btn, err := mouseButtonFromRaw(ra.Button)
		if err != nil {
			return Action{}, configErrf(profileName, field, ra.Button, err.Error())
		}
		return Action{Kind: ActionMouseClick, Button: btn}, nil
	case "cycleprofiles":
		return Action{Kind: ActionCycleProfiles}, nil
	case "cyclesensitivity":
		return Action{Kind: ActionCycleSensitivity}, nil
	case "togglegyromousel":
		return Action{Kind: ActionToggleGyroMouseL}, nil
	case "togglegyromouser":
		return Action{Kind: ActionToggleGyroMouseR}, nil
	default:
		return Action{}, configErrf(profileName, field, ra.Type, "unrecognized action type")
	}
}

func mouseButtonFromRaw(name string) (backend.MouseButton, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "":
		return backend.MouseLeft, nil
	case "right":
		return backend.MouseRight, nil
	case "middle":
		return backend.MouseMiddle, nil
	default:
		return 0, fmt.Errorf("unrecognized mouse button %q", name)
	}
}

func stickMappingFromRaw(profileName, which string, raw rawStickMapping) (StickMapping, error) {
	mode, err := stickModeFromRaw(raw.Mode)
	if err != nil {
		return StickMapping{}, configErrf(profileName, "sticks."+which+".mode", raw.Mode, err.Error())
	}
	sm := StickMapping{Mode: mode, Sensitivity: raw.Sensitivity}
	if raw.Directions != nil {
		sm.Directions = DirectionBindings{
			Up:    backend.NormalizeKeyName(raw.Directions.Up),
			Down:  backend.NormalizeKeyName(raw.Directions.Down),
			Left:  backend.NormalizeKeyName(raw.Directions.Left),
			Right: backend.NormalizeKeyName(raw.Directions.Right),
		}
	}
	return sm, nil
}

func stickModeFromRaw(mode string) (StickMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "mouse":
		return StickMouse, nil
	case "directional":
		return StickDirectional, nil
	case "disabled", "":
		return StickDisabled, nil
	default:
		return 0, fmt.Errorf("unrecognized stick mode %q", mode)
	}
}

func gyroMappingFromRaw(raw rawGyroMapping) GyroMapping {
	return GyroMapping{InvertX: raw.InvertX, InvertY: raw.InvertY, SensX: raw.SensX, SensY: raw.SensY}
}

func configErrf(profile, field, value, reason string) error {
	return fmt.Errorf("%w: profile %q, field %q, value %q: %s", joyerr.ErrConfigInvalid, profile, field, value, reason)
}
