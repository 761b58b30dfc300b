// Package joyerr defines the error taxonomy shared across the bridge.
//
// Each kind is a distinct sentinel (or wraps one via fmt.Errorf("%w", ...))
// so callers can use errors.Is/errors.As instead of matching strings, the
// way the rest of the pipeline prefers typed values over ad-hoc messages.
package joyerr

import "errors"

var (
	// ErrNoAdapter means no usable BLE adapter was found. Fatal for the scan loop.
	ErrNoAdapter = errors.New("joyerr: no bluetooth adapter available")

	// ErrScan wraps a transient scan failure; the scanner retries after 5s.
	ErrScan = errors.New("joyerr: scan failed")

	// ErrConnect wraps a transient GATT connect failure for one peripheral.
	ErrConnect = errors.New("joyerr: connect failed")

	// ErrHandshake wraps a transient handshake failure; caller disconnects and retries.
	ErrHandshake = errors.New("joyerr: handshake failed")

	// ErrMissingCharacteristic means tx/cmd/cmd_response wasn't found. Fatal for that connection.
	ErrMissingCharacteristic = errors.New("joyerr: required characteristic missing")

	// ErrParseTooShort means the report was shorter than 0x3C bytes. Callers discard silently.
	ErrParseTooShort = errors.New("joyerr: report too short")

	// ErrBackendOp wraps an OS injection failure. Logged at warn, never fatal.
	ErrBackendOp = errors.New("joyerr: backend operation failed")

	// ErrUnsupportedKey means a key name isn't in the backend's recognized set.
	// Rejected at config-load time, so it should never surface at runtime.
	ErrUnsupportedKey = errors.New("joyerr: unsupported key name")

	// ErrConfigInvalid is fatal at startup; wraps a human-readable reason.
	ErrConfigInvalid = errors.New("joyerr: invalid configuration")
)
