package mapping

import (
	"errors"
	"testing"

	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
)

func baseConfig() *Config {
	return &Config{
		Settings: Settings{
			LeftStickDeadzone:  0.15,
			RightStickDeadzone: 0.15,
			DefaultProfile:     "default",
			SensitivityFactor:  []float32{1.0, 2.0},
		},
		Profiles: []Profile{
			{
				Name: "default",
				Buttons: map[joycon2.ButtonType][]Action{
					joycon2.BtnA:   {{Kind: ActionKeyHold, Key: "w"}},
					joycon2.BtnSLR: {{Kind: ActionCycleProfiles}},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := Validate(baseConfig()); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestValidateRejectsOutOfRangeDeadzone(t *testing.T) {
	c := baseConfig()
	c.Settings.LeftStickDeadzone = 1.5
	err := Validate(c)
	if !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsNonPositiveSensitivity(t *testing.T) {
	c := baseConfig()
	c.Settings.SensitivityFactor = []float32{1.0, 0, 2.0}
	err := Validate(c)
	if !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsUnresolvableDefaultProfile(t *testing.T) {
	c := baseConfig()
	c.Settings.DefaultProfile = "nope"
	err := Validate(c)
	if !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsUnrecognizedKey(t *testing.T) {
	c := baseConfig()
	c.Profiles[0].Buttons[joycon2.BtnB] = []Action{{Kind: ActionKeyHold, Key: "notakey"}}
	err := Validate(c)
	if !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestValidateRejectsUnrecognizedComboAtom(t *testing.T) {
	c := baseConfig()
	c.Profiles[0].Buttons[joycon2.BtnB] = []Action{{Kind: ActionKeyHold, Key: "shift+notakey"}}
	err := Validate(c)
	if !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

// TestValidateMetaBindingMustMatchAcrossProfiles covers the config
// validator scenario: a config with two profiles where only one binds
// SLR to CycleProfiles must be rejected, while one that binds it in both
// must pass.
func TestValidateMetaBindingMustMatchAcrossProfiles(t *testing.T) {
	mismatched := &Config{
		Settings: Settings{DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{Name: "p0", Buttons: map[joycon2.ButtonType][]Action{joycon2.BtnSLR: {{Kind: ActionCycleProfiles}}}},
			{Name: "p1", Buttons: map[joycon2.ButtonType][]Action{}},
		},
	}
	if err := Validate(mismatched); !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected mismatched meta bindings to be rejected, got %v", err)
	}

	matched := &Config{
		Settings: Settings{DefaultProfile: "p0", SensitivityFactor: []float32{1.0}},
		Profiles: []Profile{
			{Name: "p0", Buttons: map[joycon2.ButtonType][]Action{joycon2.BtnSLR: {{Kind: ActionCycleProfiles}}}},
			{Name: "p1", Buttons: map[joycon2.ButtonType][]Action{joycon2.BtnSLR: {{Kind: ActionCycleProfiles}}}},
		},
	}
	if err := Validate(matched); err != nil {
		t.Fatalf("expected matched meta bindings to pass, got %v", err)
	}
}

func TestValidateRejectsEmptyProfileList(t *testing.T) {
	c := &Config{Settings: DefaultSettings()}
	if err := Validate(c); !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected empty profile list to be rejected, got %v", err)
	}
}

func TestValidateRejectsDuplicateProfileNames(t *testing.T) {
	c := baseConfig()
	dup := c.Profiles[0]
	c.Profiles = append(c.Profiles, dup)
	if err := Validate(c); !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected duplicate profile names to be rejected, got %v", err)
	}
}

func TestValidateDirectionalBindingsCheckedToo(t *testing.T) {
	c := baseConfig()
	c.Profiles[0].SticksLeft = &StickMapping{
		Mode:       StickDirectional,
		Directions: DirectionBindings{Up: "notakey", Down: "s", Left: "a", Right: "d"},
	}
	if err := Validate(c); !errors.Is(err, joyerr.ErrConfigInvalid) {
		t.Fatalf("expected bad directional key to be rejected, got %v", err)
	}
}
