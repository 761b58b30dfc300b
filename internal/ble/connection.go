package ble

import (
	"fmt"
	"sync"
	"time"

	"github.com/muka/go-bluetooth/bluez/profile/device"
	"github.com/muka/go-bluetooth/bluez/profile/gatt"
	log "github.com/sirupsen/logrus"

	"github.com/2vincentLin/joycon2bridge/internal/joycon2"
	"github.com/2vincentLin/joycon2bridge/internal/joyerr"
)

// Connection is one physical controller's BLE session: its device handle,
// side, lifecycle state, and the three characteristics the handshake and
// notification stream depend on.
type Connection struct {
	Side  joycon2.Side
	State State

	dev *device.Device1

	tx          *gatt.GattCharacteristic1
	cmd         *gatt.GattCharacteristic1
	cmdResponse *gatt.GattCharacteristic1

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Connect establishes the GATT link at devicePath and discovers the three
// characteristics the protocol needs. Missing any of them is fatal for
// this session and tears the connection back down.
func Connect(devicePath string, side joycon2.Side) (*Connection, error) {
	dev, err := device.NewDevice1(devicePath)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving device: %v", joyerr.ErrConnect, err)
	}

	c := &Connection{Side: side, dev: dev, State: Connecting, stopCh: make(chan struct{})}

	if err := dev.Connect(); err != nil {
		c.State = Disconnected
		return nil, fmt.Errorf("%w: %v", joyerr.ErrConnect, err)
	}

	c.State = Initializing

	chars, err := dev.GetCharacteristics()
	if err != nil {
		c.teardown()
		return nil, fmt.Errorf("%w: listing characteristics: %v", joyerr.ErrConnect, err)
	}

	for _, ch := range chars {
		switch ch.Properties.UUID {
		case joycon2.CharacteristicTxUUID:
			c.tx = ch
		case joycon2.CharacteristicCmdUUID:
			c.cmd = ch
		case joycon2.CharacteristicRespUUID:
			c.cmdResponse = ch
		}
	}
	if c.tx == nil || c.cmd == nil || c.cmdResponse == nil {
		c.teardown()
		return nil, fmt.Errorf("%w: tx=%v cmd=%v cmd_response=%v",
			joyerr.ErrMissingCharacteristic, c.tx != nil, c.cmd != nil, c.cmdResponse != nil)
	}

	return c, nil
}

// Handshake subscribes to cmd_response, writes the required command
// sequence with the protocol's 50ms inter-write delay, optionally pairs
// with the supplied MAC, then subscribes to tx. Order is load-bearing and
// must not be reordered.
func (c *Connection) Handshake(pairMAC *[6]byte, ledMask byte) error {
	if err := c.cmdResponse.StartNotify(); err != nil {
		return fmt.Errorf("%w: subscribing cmd_response: %v", joyerr.ErrHandshake, err)
	}

	writes := make([][]byte, 0, 8)
	if pairMAC != nil {
		writes = append(writes, joycon2.SaveMACStep1(*pairMAC), joycon2.SaveMACStep2, joycon2.SaveMACStep3, joycon2.SaveMACStep4)
	}
	writes = append(writes,
		joycon2.CmdConnectionRumble,
		joycon2.SetPlayerLEDCommand(ledMask),
		joycon2.CmdIMUInit,
		joycon2.CmdIMUFinalize,
		joycon2.CmdIMUStart,
	)

	for _, frame := range writes {
		if err := c.cmd.WriteValue(frame, map[string]interface{}{"type": "command"}); err != nil {
			return fmt.Errorf("%w: writing command frame: %v", joyerr.ErrHandshake, err)
		}
		time.Sleep(handshakeDelay)
	}

	if err := c.tx.StartNotify(); err != nil {
		return fmt.Errorf("%w: subscribing tx: %v", joyerr.ErrHandshake, err)
	}

	c.State = Ready
	return nil
}

const handshakeDelay = joycon2DelayMS * time.Millisecond
const joycon2DelayMS = 50

// Notifications returns a channel of raw input-report payloads delivered
// by the tx characteristic's property-change notifications.
func (c *Connection) Notifications() (<-chan []byte, error) {
	propCh, err := c.tx.WatchProperties()
	if err != nil {
		return nil, fmt.Errorf("%w: watching tx properties: %v", joyerr.ErrHandshake, err)
	}

	out := make(chan []byte, 1)
	go func() {
		defer close(out)
		for change := range propCh {
			if change == nil || change.Name != "Value" {
				continue
			}
			data, ok := change.Value.([]byte)
			if !ok {
				continue
			}
			select {
			case out <- data:
			default:
				log.Debugf("ble: dropping notification, consumer not keeping up (side=%s)", c.Side)
			}
		}
	}()
	return out, nil
}

// Disconnect unsubscribes from tx and cmd_response (ignoring failures),
// closes the GATT link, and unconditionally moves the connection back to
// Disconnected.
func (c *Connection) Disconnect() {
	c.teardown()
}

// IsStillConnected re-reads the adapter's own Connected property for this
// device, the same call the teacher's GetDisconnectedDevices uses to
// classify devices. It lets a caller notice a drop the GATT-level
// notification stream hasn't reported yet.
func (c *Connection) IsStillConnected() bool {
	if c.dev == nil {
		return false
	}
	connected, err := c.dev.GetConnected()
	if err != nil {
		log.Debugf("ble: GetConnected failed (treating as disconnected): %v", err)
		return false
	}
	return connected
}

func (c *Connection) teardown() {
	if c.tx != nil {
		if err := c.tx.StopNotify(); err != nil {
			log.Debugf("ble: stop notify tx failed (ignored): %v", err)
		}
	}
	if c.cmdResponse != nil {
		if err := c.cmdResponse.StopNotify(); err != nil {
			log.Debugf("ble: stop notify cmd_response failed (ignored): %v", err)
		}
	}
	if c.dev != nil {
		if err := c.dev.Disconnect(); err != nil {
			log.Debugf("ble: disconnect failed (ignored): %v", err)
		}
	}
	c.State = Disconnected
	if c.stopCh != nil {
		c.stopOnce.Do(func() { close(c.stopCh) })
	}
}

// Done returns a channel closed once this connection has torn down, so a
// stream loop blocked waiting on notifications can also wake up when
// something else (e.g. a forced disconnect) moves the state away from Ready.
func (c *Connection) Done() <-chan struct{} {
	return c.stopCh
}
