package manager

import (
	"context"

	udev "github.com/jochenvg/go-udev"
	log "github.com/sirupsen/logrus"
)

// runUdevWatcher subscribes to bluetooth-subsystem udev events the way the
// teacher's main() does for its own disconnect handling. BlueZ's own D-Bus
// PropertiesChanged signal is the source of truth, but a raw adapter reset
// can lag behind an `hci0`-level udev event, so on add/remove this goroutine
// asks every Ready connection to re-confirm itself against the adapter and
// forces a teardown if BlueZ hasn't reported the drop yet.
func (m *Manager) runUdevWatcher(ctx context.Context) {
	u := udev.Udev{}
	monitor := u.NewMonitorFromNetlink("udev")
	if err := monitor.FilterAddMatchSubsystem("bluetooth"); err != nil {
		log.Warnf("manager: udev watcher disabled, filter setup failed: %v", err)
		return
	}

	deviceCh, err := monitor.DeviceChan(ctx)
	if err != nil {
		log.Warnf("manager: udev watcher disabled, monitor start failed: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deviceCh:
			if !ok {
				return
			}
			if d == nil {
				continue
			}
			switch d.Action() {
			case "add", "remove":
				log.Debugf("manager: udev bluetooth event %q on %s", d.Action(), d.Syspath())
				m.recheckConnections()
			}
		}
	}
}
