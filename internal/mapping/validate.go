package mapping

import (
	"fmt"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
)

// Validate checks the global invariants spec.md lays out for a config:
// deadzones in range, positive sensitivity factors, a resolvable default
// profile, only recognized keys in bindings, and meta actions bound
// identically across every profile. Profiles are checked in order and the
// first problem found is returned as a single error; profiles after the
// failing one are not checked.
func Validate(c *Config) error {
	if err := validateDeadzones(c.Settings); err != nil {
		return err
	}
	if err := validateSensitivity(c.Settings); err != nil {
		return err
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("%w: config has no profiles", joyerr.ErrConfigInvalid)
	}

	seen := make(map[string]bool, len(c.Profiles))
	var foundDefault bool
	for _, p := range c.Profiles {
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate profile name %q", joyerr.ErrConfigInvalid, p.Name)
		}
		seen[p.Name] = true
		if p.Name == c.Settings.DefaultProfile {
			foundDefault = true
		}
		if err := validateProfileKeys(p); err != nil {
			return err
		}
	}
	if !foundDefault {
		return fmt.Errorf("%w: default_profile %q does not match any profile name", joyerr.ErrConfigInvalid, c.Settings.DefaultProfile)
	}

	return validateMetaBindingConsistency(c.Profiles)
}

func validateDeadzones(s Settings) error {
	if s.LeftStickDeadzone < 0 || s.LeftStickDeadzone > 1 {
		return fmt.Errorf("%w: left_stick_deadzone %v out of range [0,1]", joyerr.ErrConfigInvalid, s.LeftStickDeadzone)
	}
	if s.RightStickDeadzone < 0 || s.RightStickDeadzone > 1 {
		return fmt.Errorf("%w: right_stick_deadzone %v out of range [0,1]", joyerr.ErrConfigInvalid, s.RightStickDeadzone)
	}
	return nil
}

func validateSensitivity(s Settings) error {
	if len(s.SensitivityFactor) == 0 {
		return fmt.Errorf("%w: sensitivity_factor must list at least one value", joyerr.ErrConfigInvalid)
	}
	for i, f := range s.SensitivityFactor {
		if f <= 0 {
			return fmt.Errorf("%w: sensitivity_factor[%d] = %v must be > 0", joyerr.ErrConfigInvalid, i, f)
		}
	}
	return nil
}

func validateProfileKeys(p Profile) error {
	for bt, actions := range p.Buttons {
		for _, a := range actions {
			if err := validateAction(p.Name, bt.String(), a); err != nil {
				return err
			}
		}
	}
	for bt, actions := range p.GyroMouseOverridesLeft {
		for _, a := range actions {
			if err := validateAction(p.Name, "gyro_mouse_overrides_left."+bt.String(), a); err != nil {
				return err
			}
		}
	}
	for bt, actions := range p.GyroMouseOverridesRight {
		for _, a := range actions {
			if err := validateAction(p.Name, "gyro_mouse_overrides_right."+bt.String(), a); err != nil {
				return err
			}
		}
	}
	if sm := p.SticksLeft; sm != nil {
		if err := validateStickMapping(p.Name, "sticks.left", *sm); err != nil {
			return err
		}
	}
	if sm := p.SticksRight; sm != nil {
		if err := validateStickMapping(p.Name, "sticks.right", *sm); err != nil {
			return err
		}
	}
	return nil
}

func validateAction(profileName, field string, a Action) error {
	if a.Kind != ActionKeyHold {
		return nil
	}
	return validateKeyCombo(profileName, field, a.Key)
}

func validateStickMapping(profileName, field string, sm StickMapping) error {
	if sm.Mode != StickDirectional {
		return nil
	}
	dirs := []struct {
		name string
		key  string
	}{
		{"up", sm.Directions.Up},
		{"down", sm.Directions.Down},
		{"left", sm.Directions.Left},
		{"right", sm.Directions.Right},
	}
	for _, d := range dirs {
		if d.key == "" {
			continue
		}
		if err := validateKeyCombo(profileName, field+"."+d.name, d.key); err != nil {
			return err
		}
	}
	return nil
}

func validateKeyCombo(profileName, field, combo string) error {
	for _, key := range backend.SplitCombo(combo) {
		if !backend.IsRecognizedKey(key) {
			return fmt.Errorf("%w: profile %q, field %q: unrecognized key %q in combo %q",
				joyerr.ErrConfigInvalid, profileName, field, key, combo)
		}
	}
	return nil
}

// validateMetaBindingConsistency enforces spec.md's rule that a meta
// action's set of bound buttons is identical across every profile — a
// profile switch must never change which button triggers the switch
// itself.
func validateMetaBindingConsistency(profiles []Profile) error {
	kinds := []ActionKind{ActionCycleProfiles, ActionToggleGyroMouseL, ActionToggleGyroMouseR}
	for _, kind := range kinds {
		var reference []string
		var referenceProfile string
		for _, p := range profiles {
			bound := buttonsBoundTo(p, kind)
			if reference == nil {
				reference = bound
				referenceProfile = p.Name
				continue
			}
			if !sameStringSet(reference, bound) {
				return fmt.Errorf("%w: meta action %v bound to %v in profile %q but %v in profile %q",
					joyerr.ErrConfigInvalid, kind, reference, referenceProfile, bound, p.Name)
			}
		}
	}
	return nil
}

func buttonsBoundTo(p Profile, kind ActionKind) []string {
	var names []string
	for bt, actions := range p.Buttons {
		for _, a := range actions {
			if a.Kind == kind {
				names = append(names, bt.String())
				break
			}
		}
	}
	return sortedStrings(names)
}

func sortedStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
