package joycon2

import (
	"encoding/binary"
	"math"
	"testing"
)

func newReport() []byte {
	return make([]byte, MinReportLength)
}

func floatsClose(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}

func TestParseTooShort(t *testing.T) {
	var snap Snapshot
	ok := Parse(SideLeft, make([]byte, 10), DefaultCalibration(), OrientationVertical, &snap)
	if ok {
		t.Fatalf("expected Parse to reject a report shorter than %d bytes", MinReportLength)
	}
	if snap.IsConnected {
		t.Fatalf("short report must not mutate snapshot")
	}
}

func TestParseStickCenter(t *testing.T) {
	report := newReport()
	calib := DefaultCalibration()
	xMid := (calib.XMin + calib.XMax) / 2
	yMid := (calib.YMin + calib.YMax) / 2
	packStick(report[offStickLeft:offStickLeft+3], xMid, yMid)

	var snap Snapshot
	if !Parse(SideLeft, report, calib, OrientationVertical, &snap) {
		t.Fatalf("Parse rejected a full-length report")
	}
	if !floatsClose(snap.Stick.X, 0, 1e-2) || !floatsClose(snap.Stick.Y, 0, 1e-2) {
		t.Fatalf("expected centered stick ~ (0,0), got (%v, %v)", snap.Stick.X, snap.Stick.Y)
	}
}

func TestParseStickExtremes(t *testing.T) {
	calib := DefaultCalibration()
	cases := []struct {
		name       string
		xRaw, yRaw uint16
		wantX      float32
		wantY      float32
	}{
		{"x min", calib.XMin, (calib.YMin + calib.YMax) / 2, -1, 0},
		{"x max", calib.XMax, (calib.YMin + calib.YMax) / 2, 1, 0},
		{"y min maps to +1", (calib.XMin + calib.XMax) / 2, calib.YMin, 0, 1},
		{"y max maps to -1", (calib.XMin + calib.XMax) / 2, calib.YMax, 0, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := newReport()
			packStick(report[offStickLeft:offStickLeft+3], tc.xRaw, tc.yRaw)
			var snap Snapshot
			if !Parse(SideLeft, report, calib, OrientationVertical, &snap) {
				t.Fatalf("Parse rejected a full-length report")
			}
			if !floatsClose(snap.Stick.X, tc.wantX, 1e-2) || !floatsClose(snap.Stick.Y, tc.wantY, 1e-2) {
				t.Fatalf("got (%v, %v), want (%v, %v)", snap.Stick.X, snap.Stick.Y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestParseButtonsLeft(t *testing.T) {
	report := newReport()
	// raw big-endian u16 at offset 5: hi=data[5], lo=data[6].
	raw := btnBitL | btnBitDpadUp
	report[offButtonsLeft] = byte(raw >> 8)
	report[offButtonsLeft+1] = byte(raw)

	var snap Snapshot
	if !Parse(SideLeft, report, DefaultCalibration(), OrientationVertical, &snap) {
		t.Fatalf("Parse rejected a full-length report")
	}
	pressed := DecodeButtons(SideLeft, snap.Buttons)
	want := map[ButtonType]bool{BtnL: true, BtnDpadUp: true}
	if len(pressed) != len(want) {
		t.Fatalf("got %v pressed buttons, want %v", pressed, want)
	}
	for _, bt := range pressed {
		if !want[bt] {
			t.Fatalf("unexpected button pressed: %v", bt)
		}
	}
}

func TestParseButtonsRight(t *testing.T) {
	report := newReport()
	raw := btnBitA | btnBitPlus
	report[offButtonsRight] = byte(raw >> 8)
	report[offButtonsRight+1] = byte(raw)

	var snap Snapshot
	if !Parse(SideRight, report, DefaultCalibration(), OrientationVertical, &snap) {
		t.Fatalf("Parse rejected a full-length report")
	}
	if !IsPressed(SideRight, snap.Buttons, BtnA) || !IsPressed(SideRight, snap.Buttons, BtnPlus) {
		t.Fatalf("expected A and Plus pressed, got buttons=0x%04x", snap.Buttons)
	}
	if IsPressed(SideRight, snap.Buttons, BtnB) {
		t.Fatalf("B should not be pressed")
	}
}

func TestParseAccelGyroRemap(t *testing.T) {
	report := newReport()
	binary.LittleEndian.PutUint16(report[offAccelX:], uint16(int16(4096)))  // raw_x = 1G
	binary.LittleEndian.PutUint16(report[offAccelY:], uint16(int16(8192)))  // raw_y = 2G
	binary.LittleEndian.PutUint16(report[offAccelZ:], uint16(int16(12288))) // raw_z = 3G

	binary.LittleEndian.PutUint16(report[offGyroX:], uint16(int16(6048))) // raw_x = 360 deg/s
	binary.LittleEndian.PutUint16(report[offGyroY:], uint16(int16(3024))) // raw_y = 180 deg/s
	binary.LittleEndian.PutUint16(report[offGyroZ:], uint16(int16(1512))) // raw_z = 90 deg/s

	var snap Snapshot
	if !Parse(SideLeft, report, DefaultCalibration(), OrientationVertical, &snap) {
		t.Fatalf("Parse rejected a full-length report")
	}

	if !floatsClose(snap.Accel.X, -1.0, 1e-6) {
		t.Fatalf("accel.x = %v, want -1.0 (= -raw_x * f)", snap.Accel.X)
	}
	if !floatsClose(snap.Accel.Y, -3.0, 1e-6) {
		t.Fatalf("accel.y = %v, want -3.0 (= -raw_z * f)", snap.Accel.Y)
	}
	if !floatsClose(snap.Accel.Z, 2.0, 1e-6) {
		t.Fatalf("accel.z = %v, want 2.0 (= +raw_y * f)", snap.Accel.Z)
	}

	if !floatsClose(snap.Gyro.X, 360.0, 1e-3) {
		t.Fatalf("gyro.x = %v, want 360.0 (= +raw_x * g)", snap.Gyro.X)
	}
	if !floatsClose(snap.Gyro.Y, -90.0, 1e-3) {
		t.Fatalf("gyro.y = %v, want -90.0 (= -raw_z * g)", snap.Gyro.Y)
	}
	if !floatsClose(snap.Gyro.Z, 180.0, 1e-3) {
		t.Fatalf("gyro.z = %v, want 180.0 (= +raw_y * g)", snap.Gyro.Z)
	}
}

func TestParseBatterySequence(t *testing.T) {
	var snap Snapshot
	readings := []struct {
		raw         uint16
		wantPercent float32
		wantAlert   bool
	}{
		{4095, 100, false},
		{2048, 50, false},
		{2048, 50, false},
		{200, 5, true},
	}

	for i, r := range readings {
		report := newReport()
		binary.LittleEndian.PutUint16(report[offBatteryRaw:], r.raw)
		if !Parse(SideLeft, report, DefaultCalibration(), OrientationVertical, &snap) {
			t.Fatalf("reading %d: Parse rejected a full-length report", i)
		}
		if !floatsClose(snap.BatteryPercent, r.wantPercent, 0.6) {
			t.Fatalf("reading %d: battery = %v, want %v", i, snap.BatteryPercent, r.wantPercent)
		}
	}
	if !snap.AlertSent {
		t.Fatalf("expected the low-battery alert flag to be set after the drop below 10%%")
	}
}

func TestParseHorizontalOrientationSwapsAxes(t *testing.T) {
	calib := DefaultCalibration()
	report := newReport()
	packStick(report[offStickRight:offStickRight+3], calib.XMax, (calib.YMin+calib.YMax)/2)

	var vertical, horizontal Snapshot
	Parse(SideRight, report, calib, OrientationVertical, &vertical)
	Parse(SideRight, report, calib, OrientationHorizontal, &horizontal)

	if !floatsClose(vertical.Stick.X, 1, 1e-2) {
		t.Fatalf("vertical stick.x = %v, want ~1", vertical.Stick.X)
	}
	// horizontal orientation swaps x/y and negates x on the right side.
	if !floatsClose(horizontal.Stick.Y, 1, 1e-2) {
		t.Fatalf("horizontal stick.y = %v, want ~1 (swapped from x)", horizontal.Stick.Y)
	}
	if !floatsClose(horizontal.Stick.X, 0, 1e-2) {
		t.Fatalf("horizontal stick.x = %v, want ~0", horizontal.Stick.X)
	}
}

// packStick writes xRaw/yRaw (12-bit each) into the 3-byte packed stick
// field using the same bit layout the parser decodes.
func packStick(b []byte, xRaw, yRaw uint16) {
	b[0] = byte(xRaw)
	b[1] = byte((xRaw>>8)&0x0F) | byte((yRaw&0x0F)<<4)
	b[2] = byte(yRaw >> 4)
}
