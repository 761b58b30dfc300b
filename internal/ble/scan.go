package ble

import (
	"context"
	"fmt"

	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/bluez/profile/adapter"
	"github.com/muka/go-bluetooth/bluez/profile/device"
	log "github.com/sirupsen/logrus"

	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
)

// ScanForSide blocks until it observes an advertisement matching the
// Nintendo Joy-Con 2 manufacturer-data prefix for side, then returns the
// discovered device's D-Bus path and advertised MAC. Advertisements for
// the other side (or the unsupported GameCube-style controller) are
// logged at debug and skipped, never returned.
func ScanForSide(ctx context.Context, adapterID string, side joycon2.Side) (devicePath, mac string, err error) {
	a, err := adapter.GetAdapter(adapterID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", joyerr.ErrNoAdapter, err)
	}

	discovery, cancel, err := api.Discover(ctx, a, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: starting discovery: %v", joyerr.ErrScan, err)
	}
	defer cancel()

	wantSideByte := byte(joycon2.SideByteLeft)
	if side == joycon2.SideRight {
		wantSideByte = joycon2.SideByteRight
	}

	for {
		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("%w: %v", joyerr.ErrScan, ctx.Err())
		case ev, ok := <-discovery:
			if !ok {
				return "", "", fmt.Errorf("%w: discovery channel closed", joyerr.ErrScan)
			}
			if ev.Device == nil {
				continue
			}
			manuf := ev.Device.ManufacturerData
			payload, ok := manuf[joycon2.ManufacturerID]
			if !ok {
				continue
			}
			data, ok := payload.([]byte)
			if !ok || len(data) < 6 {
				continue
			}
			if !hasAdvPrefix(data) {
				continue
			}
			switch data[5] {
			case wantSideByte:
				dev, err := device.NewDevice1(ev.Path)
				if err != nil || dev == nil {
					log.Debugf("ble: could not resolve discovered device at %s: %v", ev.Path, err)
					continue
				}
				return ev.Path, dev.Properties.Address, nil
			case joycon2.SideByteLeft, joycon2.SideByteRight, joycon2.SideByteGameCube:
				log.Debugf("ble: skipping advertisement for side byte 0x%02x (want 0x%02x)", data[5], wantSideByte)
			default:
				log.Debugf("ble: skipping advertisement with unrecognized side byte 0x%02x", data[5])
			}
		}
	}
}

func hasAdvPrefix(data []byte) bool {
	for i, want := range joycon2.AdvPrefix {
		if data[i] != want {
			return false
		}
	}
	return true
}
