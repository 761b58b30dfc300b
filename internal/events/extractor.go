package events

import (
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
)

const (
	stickMoveThreshold = 0.05
	gyroMoveThreshold  = 0.5
)

// Extractor diffs successive snapshots per side into edge events. Each
// controller thread owns one Extractor for its side; no locking is needed
// since nothing else touches it.
type Extractor struct {
	side       joycon2.Side
	prev       joycon2.Snapshot
	hasPrev    bool
	sawReady   bool
}

func NewExtractor(side joycon2.Side) *Extractor {
	return &Extractor{side: side}
}

// Diff compares snap against the last snapshot seen (if any) and sends the
// resulting events to ch. Call this once per fresh snapshot from the
// notification stream.
func (e *Extractor) Diff(ch chan<- Event, snap joycon2.Snapshot) {
	if !e.sawReady && snap.IsConnected {
		Send(ch, Event{Kind: Connected, Side: e.side})
		e.sawReady = true
	}

	if e.hasPrev {
		e.diffButtons(ch, snap)
		e.diffStick(ch, snap)
		e.diffGyro(ch, snap)
	}

	e.prev = snap
	e.hasPrev = true
}

// DiffDisconnected emits Disconnected{side} and resets internal state so a
// later reconnect re-emits Connected on its first snapshot.
func (e *Extractor) DiffDisconnected(ch chan<- Event) {
	Send(ch, Event{Kind: Disconnected, Side: e.side})
	e.hasPrev = false
	e.sawReady = false
}

func (e *Extractor) diffButtons(ch chan<- Event, snap joycon2.Snapshot) {
	for _, bt := range joycon2.ButtonsForSide(e.side) {
		was := joycon2.IsPressed(e.side, e.prev.Buttons, bt)
		is := joycon2.IsPressed(e.side, snap.Buttons, bt)
		if !was && is {
			Send(ch, Event{Kind: ButtonPressed, Side: e.side, Button: bt})
		} else if was && !is {
			Send(ch, Event{Kind: ButtonReleased, Side: e.side, Button: bt})
		}
	}
}

func (e *Extractor) diffStick(ch chan<- Event, snap joycon2.Snapshot) {
	dx := absf(snap.Stick.X - e.prev.Stick.X)
	dy := absf(snap.Stick.Y - e.prev.Stick.Y)
	if dx > stickMoveThreshold || dy > stickMoveThreshold {
		Send(ch, Event{Kind: StickMoved, Side: e.side, StickX: snap.Stick.X, StickY: snap.Stick.Y})
	}
}

func (e *Extractor) diffGyro(ch chan<- Event, snap joycon2.Snapshot) {
	dx := absf(snap.Gyro.X - e.prev.Gyro.X)
	dy := absf(snap.Gyro.Y - e.prev.Gyro.Y)
	dz := absf(snap.Gyro.Z - e.prev.Gyro.Z)
	if dx > gyroMoveThreshold || dy > gyroMoveThreshold || dz > gyroMoveThreshold {
		Send(ch, Event{Kind: GyroUpdate, Side: e.side, GyroX: snap.Gyro.X, GyroY: snap.Gyro.Y, GyroZ: snap.Gyro.Z})
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
