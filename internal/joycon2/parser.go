package joycon2

import (
	"encoding/binary"

	"github.com/loov/hrtime"
	log "github.com/sirupsen/logrus"
)

// Orientation affects stick axis decoding only.
type Orientation int

const (
	OrientationVertical Orientation = iota
	OrientationHorizontal
)

// parseCallCount is used only to throttle the debug latency log below;
// it is not part of any correctness path.
var parseCallCount uint64

// Parse decodes one raw BLE notification payload into snap, mutating it in
// place. Reports shorter than MinReportLength are dropped silently (the
// stream is self-synchronizing on the next notification), matching
// ErrParseTooShort in the error taxonomy — the caller doesn't need to act
// on it, so Parse simply returns false rather than an error.
func Parse(side Side, data []byte, calib Calibration, orientation Orientation, snap *Snapshot) bool {
	start := hrtime.Now()
	defer func() {
		parseCallCount++
		if parseCallCount%256 == 0 {
			log.Debugf("joycon2: parse latency %s (side=%s)", hrtime.Since(start), side)
		}
	}()

	if len(data) < MinReportLength {
		return false
	}

	snap.Timestamp = binary.LittleEndian.Uint32(data[offTimestamp : offTimestamp+lenTimestamp])

	buttonOff := offButtonsLeft
	stickOff := offStickLeft
	if side == SideRight {
		buttonOff = offButtonsRight
		stickOff = offStickRight
	}
	hi := data[buttonOff]
	lo := data[buttonOff+1]
	snap.Buttons = uint16(hi)<<8 | uint16(lo)

	x, y := decodeStick(data[stickOff:stickOff+lenStickRaw], calib)
	if orientation == OrientationHorizontal {
		x, y = y, x
		if side == SideRight {
			x = -x
		}
	}
	snap.Stick = Stick{X: x, Y: y}

	mouseX := int16(binary.LittleEndian.Uint16(data[offMouseXY : offMouseXY+2]))
	mouseY := int16(binary.LittleEndian.Uint16(data[offMouseXY+2 : offMouseXY+4]))
	snap.Mouse = MouseSensor{X: mouseX, Y: mouseY, Distance: data[offMouseDistance]}

	batteryRaw := binary.LittleEndian.Uint16(data[offBatteryRaw : offBatteryRaw+2])
	batteryPercent := float32(batteryRaw) * 100.0 / 4095.0
	batteryPercent = roundFloat32(batteryPercent)
	if snap.UpdateBattery(batteryPercent) {
		log.Warnf("joycon2: %s controller battery below 10%% (%.0f%%)", side, snap.BatteryPercent)
		snap.AlertSent = true
	}

	snap.MotionTimestamp = int32(binary.LittleEndian.Uint32(data[offMotionTimestamp : offMotionTimestamp+4]))

	rawAccelX := int16(binary.LittleEndian.Uint16(data[offAccelX : offAccelX+2]))
	rawAccelY := int16(binary.LittleEndian.Uint16(data[offAccelY : offAccelY+2]))
	rawAccelZ := int16(binary.LittleEndian.Uint16(data[offAccelZ : offAccelZ+2]))
	snap.Accel = Vector3{
		X: -float32(rawAccelX) * accelGPerLSB,
		Y: -float32(rawAccelZ) * accelGPerLSB,
		Z: float32(rawAccelY) * accelGPerLSB,
	}

	rawGyroX := int16(binary.LittleEndian.Uint16(data[offGyroX : offGyroX+2]))
	rawGyroY := int16(binary.LittleEndian.Uint16(data[offGyroY : offGyroY+2]))
	rawGyroZ := int16(binary.LittleEndian.Uint16(data[offGyroZ : offGyroZ+2]))
	snap.Gyro = Vector3{
		X: float32(rawGyroX) * gyroDegPerLSB,
		Y: -float32(rawGyroZ) * gyroDegPerLSB,
		Z: float32(rawGyroY) * gyroDegPerLSB,
	}

	snap.IsConnected = true
	return true
}

// decodeStick turns the 3 packed raw bytes into normalized x/y in [-1, 1].
func decodeStick(b []byte, calib Calibration) (x, y float32) {
	b0, b1, b2 := b[0], b[1], b[2]
	xRaw := (uint16(b1&0x0F) << 8) | uint16(b0)
	yRaw := (uint16(b2) << 4) | (uint16(b1&0xF0) >> 4)

	xNorm := clamp01(ratio(xRaw, calib.XMin, calib.XMax))
	yNorm := 1 - clamp01(ratio(yRaw, calib.YMin, calib.YMax))

	return 2*xNorm - 1, 2*yNorm - 1
}

// DecodeScroll computes the scroll-wheel-style values described in
// spec.md §4.2: the same raw stick samples, centered on the calibration
// midpoint, normalized to [-32767, 32767], with a deadzone of ±3000
// snapped to zero.
func DecodeScroll(b []byte, calib Calibration) (scrollX, scrollY int16) {
	b0, b1, b2 := b[0], b[1], b[2]
	xRaw := (uint16(b1&0x0F) << 8) | uint16(b0)
	yRaw := (uint16(b2) << 4) | (uint16(b1&0xF0) >> 4)

	xCenter := float32(calib.XMax+calib.XMin) / 2
	yCenter := float32(calib.YMax+calib.YMin) / 2
	xRange := float32(calib.XMax-calib.XMin) / 2
	yRange := float32(calib.YMax-calib.YMin) / 2

	xScroll := int16(clampf((float32(xRaw)-xCenter)/xRange, -1, 1) * 32767)
	yScroll := int16(clampf((float32(yRaw)-yCenter)/yRange, -1, 1) * 32767)

	if abs16(xScroll) < stickDeadzoneRawCenter {
		xScroll = 0
	}
	if abs16(yScroll) < stickDeadzoneRawCenter {
		yScroll = 0
	}
	return xScroll, yScroll
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func ratio(raw, min, max uint16) float32 {
	if raw < min {
		return 0
	}
	return float32(raw-min) / float32(max-min)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundFloat32(v float32) float32 {
	if v >= 0 {
		return float32(int64(v + 0.5))
	}
	return float32(int64(v - 0.5))
}
