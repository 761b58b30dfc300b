package backend

import (
	"strings"

	"github.com/bendahl/uinput"
)

// extendedKey marks names that must be flagged as extended-scancode keys
// at the OS boundary (arrows, right-alt/ctrl, numpad divide/enter, and the
// editing-block keys). On Linux uinput this distinction is implicit in the
// keycode itself (KEY_RIGHTALT vs KEY_LEFTALT are already different
// integers), so the table below exists purely to satisfy lookups that ask
// "is this an extended key" without needing a second bit.
var extendedKey = map[string]bool{
	"up": true, "down": true, "left": true, "right": true,
	"rightalt": true, "rightctrl": true,
	"numpaddivide": true, "numpadenter": true,
	"insert": true, "delete": true, "home": true, "end": true,
	"pageup": true, "pagedown": true,
}

// keyCodes maps a normalized (lowercased, trimmed) atomic key name to its
// Linux uinput keycode. Combos are split on "+" by the caller before this
// table is consulted.
var keyCodes = map[string]int{
	// letters
	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,

	// digits
	"0": uinput.Key0, "1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3,
	"4": uinput.Key4, "5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7,
	"8": uinput.Key8, "9": uinput.Key9,

	// function row
	"f1": uinput.KeyF1, "f2": uinput.KeyF2, "f3": uinput.KeyF3, "f4": uinput.KeyF4,
	"f5": uinput.KeyF5, "f6": uinput.KeyF6, "f7": uinput.KeyF7, "f8": uinput.KeyF8,
	"f9": uinput.KeyF9, "f10": uinput.KeyF10, "f11": uinput.KeyF11, "f12": uinput.KeyF12,

	// modifiers
	"shift": uinput.KeyLeftshift, "leftshift": uinput.KeyLeftshift, "rightshift": uinput.KeyRightshift,
	"ctrl": uinput.KeyLeftctrl, "leftctrl": uinput.KeyLeftctrl, "rightctrl": uinput.KeyRightctrl,
	"alt": uinput.KeyLeftalt, "leftalt": uinput.KeyLeftalt, "rightalt": uinput.KeyRightalt,

	// arrows
	"up": uinput.KeyUp, "down": uinput.KeyDown, "left": uinput.KeyLeft, "right": uinput.KeyRight,

	// numpad
	"numpad0": uinput.KeyKp0, "numpad1": uinput.KeyKp1, "numpad2": uinput.KeyKp2,
	"numpad3": uinput.KeyKp3, "numpad4": uinput.KeyKp4, "numpad5": uinput.KeyKp5,
	"numpad6": uinput.KeyKp6, "numpad7": uinput.KeyKp7, "numpad8": uinput.KeyKp8,
	"numpad9": uinput.KeyKp9, "numpaddot": uinput.KeyKpdot,
	"numpadplus": uinput.KeyKpplus, "numpadminus": uinput.KeyKpminus,
	"numpadasterisk": uinput.KeyKpasterisk,
	"numpaddivide":   uinput.KeyKpslash,
	"numpadenter":    uinput.KeyKpenter,

	// editing block
	"insert": uinput.KeyInsert, "delete": uinput.KeyDelete,
	"home": uinput.KeyHome, "end": uinput.KeyEnd,
	"pageup": uinput.KeyPageup, "pagedown": uinput.KeyPagedown,

	// punctuation
	"-": uinput.KeyMinus, "=": uinput.KeyEqual,
	"[": uinput.KeyLeftbrace, "]": uinput.KeyRightbrace,
	";": uinput.KeySemicolon, "'": uinput.KeyApostrophe,
	"`": uinput.KeyGrave, "\\": uinput.KeyBackslash,
	",": uinput.KeyComma, ".": uinput.KeyDot, "/": uinput.KeySlash,

	// whitespace / control
	"space": uinput.KeySpace, "enter": uinput.KeyEnter, "tab": uinput.KeyTab,
	"backspace": uinput.KeyBackspace, "escape": uinput.KeyEsc, "esc": uinput.KeyEsc,
	"capslock": uinput.KeyCapslock,
}

// NormalizeKeyName lower-cases and trims a single atomic key name (the
// caller is responsible for splitting combo strings on "+" first).
func NormalizeKeyName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// SplitCombo splits a combo string like "shift+w" into its ordered, already
// normalized atomic names.
func SplitCombo(combo string) []string {
	parts := strings.Split(combo, "+")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, NormalizeKeyName(p))
	}
	return out
}

// IsRecognizedKey reports whether a single normalized atomic key name is
// supported by this backend's key set.
func IsRecognizedKey(name string) bool {
	_, ok := keyCodes[NormalizeKeyName(name)]
	return ok
}

// IsExtendedKey reports whether a normalized atomic key name must be
// flagged as an extended key at the OS boundary.
func IsExtendedKey(name string) bool {
	return extendedKey[NormalizeKeyName(name)]
}

func keyCodeFor(name string) (int, bool) {
	code, ok := keyCodes[NormalizeKeyName(name)]
	return code, ok
}
