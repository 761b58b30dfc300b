package joycon2

import "strings"

// ButtonType is the unified logical button identity used by the event
// extractor, config, and mapping executor — independent of which physical
// report (left/right) a raw bit came from.
type ButtonType int

const (
	BtnA ButtonType = iota
	BtnB
	BtnX
	BtnY
	BtnL
	BtnR
	BtnZL
	BtnZR
	BtnPlus
	BtnMinus
	BtnHome
	BtnCapture
	BtnChat
	BtnLeftStickClick
	BtnRightStickClick
	BtnDpadUp
	BtnDpadDown
	BtnDpadLeft
	BtnDpadRight
	BtnSLL
	BtnSRL
	BtnSLR
	BtnSRR
)

var buttonNames = map[ButtonType]string{
	BtnA: "a", BtnB: "b", BtnX: "x", BtnY: "y",
	BtnL: "l", BtnR: "r", BtnZL: "zl", BtnZR: "zr",
	BtnPlus: "plus", BtnMinus: "minus", BtnHome: "home", BtnCapture: "capture", BtnChat: "chat",
	BtnLeftStickClick: "leftstickclick", BtnRightStickClick: "rightstickclick",
	BtnDpadUp: "dpadup", BtnDpadDown: "dpaddown", BtnDpadLeft: "dpadleft", BtnDpadRight: "dpadright",
	BtnSLL: "sll", BtnSRL: "srl", BtnSLR: "slr", BtnSRR: "srr",
}

var buttonsByName = func() map[string]ButtonType {
	m := make(map[string]ButtonType, len(buttonNames))
	for bt, name := range buttonNames {
		m[name] = bt
	}
	return m
}()

func (b ButtonType) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return "unknown"
}

// ParseButtonType looks up a button type by its config-file name
// (case-insensitive).
func ParseButtonType(name string) (ButtonType, bool) {
	bt, ok := buttonsByName[strings.ToLower(strings.TrimSpace(name))]
	return bt, ok
}

// IsRightSideButton implements the partition in spec.md §4.6, used to
// resolve which profile-side gyro-mouse override map (if any) applies.
func (b ButtonType) IsRightSideButton() bool {
	switch b {
	case BtnA, BtnB, BtnX, BtnY, BtnR, BtnZR, BtnPlus, BtnHome, BtnRightStickClick, BtnSLR, BtnSRR, BtnChat:
		return true
	default:
		return false
	}
}

// leftButtonBits and rightButtonBits map the raw per-report bit for each
// physical controller to the unified ButtonType, used by the parser to
// decode a side's button bitfield.
var leftButtonBits = map[ButtonType]uint16{
	BtnSLL: btnBitSLL, BtnSRL: btnBitSRL, BtnMinus: btnBitMinus, BtnL: btnBitL, BtnZL: btnBitZL,
	BtnDpadLeft: btnBitDpadLeft, BtnDpadDown: btnBitDpadDown, BtnDpadUp: btnBitDpadUp, BtnDpadRight: btnBitDpadRight,
	BtnLeftStickClick: btnBitLeftStickClick, BtnCapture: btnBitCapture,
}

var rightButtonBits = map[ButtonType]uint16{
	BtnZR: btnBitZR, BtnR: btnBitR, BtnPlus: btnBitPlus, BtnSLR: btnBitSLR, BtnSRR: btnBitSRR,
	BtnY: btnBitY, BtnB: btnBitB, BtnX: btnBitX, BtnA: btnBitA,
	BtnRightStickClick: btnBitRightStickClick, BtnHome: btnBitHome, BtnChat: btnBitChat,
}

// DecodeButtons returns every ButtonType currently pressed in raw, given
// which physical side produced the report.
func DecodeButtons(side Side, raw uint16) []ButtonType {
	bits := leftButtonBits
	if side == SideRight {
		bits = rightButtonBits
	}
	out := make([]ButtonType, 0, len(bits))
	for bt, mask := range bits {
		if raw&mask != 0 {
			out = append(out, bt)
		}
	}
	return out
}

// buttonBitsForSide returns the ButtonType-to-bit table for side, for the
// event extractor's per-bit diff (it needs every known button for the
// side, not just the ones currently set).
func buttonBitsForSide(side Side) map[ButtonType]uint16 {
	if side == SideRight {
		return rightButtonBits
	}
	return leftButtonBits
}

// ButtonsForSide lists every ButtonType that can appear in a given side's
// report, in a stable order (ascending ButtonType value) for deterministic
// iteration in the event extractor.
func ButtonsForSide(side Side) []ButtonType {
	bits := buttonBitsForSide(side)
	out := make([]ButtonType, 0, len(bits))
	for bt := range bits {
		out = append(out, bt)
	}
	// simple insertion sort by int value: the set is tiny (<=12) and this
	// keeps the dependency footprint down versus pulling in sort for one
	// call site.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// IsPressed reports whether bt is set in raw for the given side.
func IsPressed(side Side, raw uint16, bt ButtonType) bool {
	bits := buttonBitsForSide(side)
	mask, ok := bits[bt]
	if !ok {
		return false
	}
	return raw&mask != 0
}
