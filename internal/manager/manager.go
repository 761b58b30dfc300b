// Package manager owns the long-lived goroutines that turn a running
// config into a live bridge: the scanner, the two per-side controller
// loops, the mapping executor, and the udev disconnect watcher.
package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2vincentLin/joycon2bridge/internal/backend"
	"github.com/2vincentLin/joycon2bridge/internal/ble"
	"github.com/2vincentLin/joycon2bridge/internal/cache"
	"github.com/2vincentLin/joycon2bridge/internal/events"
	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
	"github.com/2vincentLin/joycon2bridge/internal/mapping"
)

const (
	scanRetryDelay   = 5 * time.Second
	shutdownGrace    = 500 * time.Millisecond
	peripheralBuffer = 10
)

type peripheralHandoff struct {
	devicePath string
	side       joycon2.Side
	mac        string
}

// Manager owns every shared resource spec.md §5 lists: the running flag,
// the MAC-dedup set, the MAC cache, and the bounded event/peripheral
// channels. It does not own the config or backends beyond holding
// references to them — those are constructed by the caller.
type Manager struct {
	adapterID string
	cfg       *mapping.Config
	cache     *cache.Cache

	keyboard backend.Keyboard
	mouse    backend.Mouse

	running      int32
	eventCh      chan events.Event
	peripheralCh chan peripheralHandoff

	dedupMu sync.Mutex
	dedup   map[string]bool

	connMu sync.Mutex
	conns  map[joycon2.Side]*ble.Connection

	wg sync.WaitGroup
}

// New builds a Manager ready to Run. The cache is loaded by the caller
// (typically the CLI bootstrap) and handed in so tests can substitute an
// in-memory one.
func New(adapterID string, cfg *mapping.Config, c *cache.Cache, kb backend.Keyboard, mouse backend.Mouse) *Manager {
	return &Manager{
		adapterID:    adapterID,
		cfg:          cfg,
		cache:        c,
		keyboard:     kb,
		mouse:        mouse,
		eventCh:      events.NewChannel(),
		peripheralCh: make(chan peripheralHandoff, peripheralBuffer),
		dedup:        make(map[string]bool),
		conns:        make(map[joycon2.Side]*ble.Connection),
	}
}

// Run starts every goroutine and blocks until ctx is cancelled. On return,
// it clears the MAC-dedup set and waits a short grace period for the
// controller goroutines to drop their BLE connections.
func (m *Manager) Run(ctx context.Context) {
	atomic.StoreInt32(&m.running, 1)

	executor := mapping.NewExecutor(m.cfg, m.keyboard, m.mouse)

	// The executor is not part of wg: it only exits once eventCh is closed,
	// which happens after every producer goroutine has finished.
	executorDone := make(chan struct{})
	go func() {
		defer close(executorDone)
		executor.Run(m.eventCh)
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runScanner(ctx)
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runController(ctx, joycon2.SideLeft)
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runController(ctx, joycon2.SideRight)
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runUdevWatcher(ctx)
	}()

	<-ctx.Done()
	atomic.StoreInt32(&m.running, 0)

	m.dedupMu.Lock()
	m.dedup = make(map[string]bool)
	m.dedupMu.Unlock()

	time.Sleep(shutdownGrace)
	m.wg.Wait()
	close(m.eventCh)
	<-executorDone
}

func (m *Manager) isRunning() bool {
	return atomic.LoadInt32(&m.running) == 1
}

// runScanner discovers side-tagged peripherals for both sides and hands
// each to the peripheral channel, skipping MACs already claimed.
func (m *Manager) runScanner(ctx context.Context) {
	for m.isRunning() {
		for _, side := range []joycon2.Side{joycon2.SideLeft, joycon2.SideRight} {
			if ctx.Err() != nil {
				return
			}
			scanCtx, cancel := context.WithTimeout(ctx, scanRetryDelay)
			devicePath, mac, err := ble.ScanForSide(scanCtx, m.adapterID, side)
			timedOut := scanCtx.Err() == context.DeadlineExceeded
			cancel()
			if err != nil {
				if errors.Is(err, joyerr.ErrNoAdapter) {
					log.Errorf("manager: %v; scanner stopping", err)
					return
				}
				log.Debugf("manager: scan for %s failed or timed out: %v", side, err)
				if !timedOut {
					select {
					case <-time.After(scanRetryDelay):
					case <-ctx.Done():
						return
					}
				}
				continue
			}
			if m.isDuplicate(mac) {
				continue
			}
			select {
			case m.peripheralCh <- peripheralHandoff{devicePath: devicePath, side: side, mac: mac}:
			case <-ctx.Done():
				return
			default:
				log.Warnf("manager: peripheral channel full, dropping discovery for %s", mac)
			}
		}
	}
}

func (m *Manager) isDuplicate(mac string) bool {
	m.dedupMu.Lock()
	defer m.dedupMu.Unlock()
	return m.dedup[mac]
}

func (m *Manager) claim(mac string) bool {
	m.dedupMu.Lock()
	defer m.dedupMu.Unlock()
	if m.dedup[mac] {
		return false
	}
	m.dedup[mac] = true
	return true
}

func (m *Manager) release(mac string) {
	m.dedupMu.Lock()
	defer m.dedupMu.Unlock()
	delete(m.dedup, mac)
}

func (m *Manager) setConn(side joycon2.Side, conn *ble.Connection) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	m.conns[side] = conn
}

func (m *Manager) clearConn(side joycon2.Side) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	delete(m.conns, side)
}

// recheckConnections is the udev watcher's hook: for every Ready connection,
// re-read the adapter's own Connected property and force a teardown if
// BlueZ's GATT-level notification stream hasn't reported the drop yet.
func (m *Manager) recheckConnections() {
	m.connMu.Lock()
	stale := make([]*ble.Connection, 0, len(m.conns))
	for _, conn := range m.conns {
		if conn.State == ble.Ready && !conn.IsStillConnected() {
			stale = append(stale, conn)
		}
	}
	m.connMu.Unlock()

	for _, conn := range stale {
		log.Infof("manager: udev watcher forcing disconnect for %s, adapter reports it gone", conn.Side)
		conn.Disconnect()
	}
}

// runController waits on the peripheral channel for handoffs matching
// side, connects, streams, and returns to waiting on any error.
func (m *Manager) runController(ctx context.Context, side joycon2.Side) {
	extractor := events.NewExtractor(side)
	calib := joycon2.DefaultCalibration()

	for m.isRunning() {
		var h peripheralHandoff
		select {
		case <-ctx.Done():
			return
		case candidate := <-m.peripheralCh:
			if candidate.side != side {
				// not ours: hand it back for the other controller loop
				select {
				case m.peripheralCh <- candidate:
				default:
					log.Warnf("manager: dropped mismatched-side peripheral %s", candidate.mac)
				}
				continue
			}
			h = candidate
		}

		if !m.claim(h.mac) {
			continue
		}

		conn, err := ble.Connect(h.devicePath, side)
		if err != nil {
			log.Warnf("manager: connect failed for %s (%s): %v", h.mac, side, err)
			m.release(h.mac)
			continue
		}
		if err := conn.Handshake(nil, joycon2.DefaultLEDMask); err != nil {
			log.Warnf("manager: handshake failed for %s (%s): %v", h.mac, side, err)
			conn.Disconnect()
			m.release(h.mac)
			continue
		}

		m.cache.Upsert(cache.Record{MAC: h.mac, Side: side.String(), LastSeen: time.Now().Unix()})

		notifications, err := conn.Notifications()
		if err != nil {
			log.Warnf("manager: subscribing notifications failed for %s (%s): %v", h.mac, side, err)
			conn.Disconnect()
			m.release(h.mac)
			continue
		}

		m.setConn(side, conn)
		m.streamLoop(ctx, side, conn, notifications, extractor, calib)
		m.clearConn(side)

		conn.Disconnect()
		m.release(h.mac)
		extractor.DiffDisconnected(m.eventCh)
	}
}

func (m *Manager) streamLoop(ctx context.Context, side joycon2.Side, conn *ble.Connection, notifications <-chan []byte, extractor *events.Extractor, calib joycon2.Calibration) {
	var snap joycon2.Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case data, ok := <-notifications:
			if !ok {
				return
			}
			if !joycon2.Parse(side, data, calib, joycon2.OrientationVertical, &snap) {
				continue
			}
			extractor.Diff(m.eventCh, snap)
		}
		if conn.State != ble.Ready {
			return
		}
	}
}
