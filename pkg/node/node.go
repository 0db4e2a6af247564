// Package node runs one wake cycle of the sensor node: restore settings, measure,
// connect, upload, offer the console, sleep.
package node

import (
	"context"
	"time"

	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/editor"
	"github.com/itohio/envnode/pkg/measure"
	"github.com/itohio/envnode/pkg/settings"
	"github.com/itohio/envnode/pkg/sleep"
	"github.com/itohio/envnode/pkg/uplink"
)

const (
	// ConnectWindow is how long to wait for the link before reporting a failure and
	// trying again.
	ConnectWindow = 20 * time.Second
	// ConnectStep is the poll interval while connecting.
	ConnectStep = 500 * time.Millisecond
	// GraceWindow is how long the console stays open before sleeping.
	GraceWindow = 2 * time.Second
	// GraceStep is the poll interval of the grace window.
	GraceStep = 250 * time.Millisecond

	blink      = time.Millisecond
	quietStart = 2 * time.Second // no blinking during the first part of a connect window
)

// Console is the operator console. *console.Console satisfies it.
type Console interface {
	editor.Input
	Pending() bool
}

// Store persists settings. *store.Store satisfies it.
type Store interface {
	editor.Saver
	Restore(out *settings.Config) bool
}

// Publisher uploads a record. *uplink.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, target uplink.Target, r uplink.Record) error
}

// Deps are the collaborators of a Node. LED may be nil.
type Deps struct {
	Console   Console
	Log       editor.Log
	Store     Store
	Sensor    device.Sensor
	Network   device.Network
	Clock     device.Clock
	Sleeper   device.Sleeper
	LED       device.LED
	Publisher Publisher
}

// Node is the state of one wake cycle. Settings live only for the cycle; whatever must
// survive a sleep is in the store.
type Node struct {
	Deps

	cfg    *settings.Config
	editor *editor.Editor
	acq    *measure.Acquirer
	sched  *sleep.Scheduler
}

// New wires a Node.
func New(d Deps) *Node {
	n := &Node{
		Deps: d,
		cfg:  settings.Default(),
	}
	n.editor = editor.New(n.cfg, d.Console, d.Log, d.Store, d.Network)
	n.acq = measure.New(d.Sensor, n.cfg, d.Clock, d.Log, n)
	n.sched = sleep.New(d.Clock, d.Sleeper, d.Log)
	return n
}

// Settings returns the settings of the cycle.
func (n *Node) Settings() *settings.Config {
	return n.cfg
}

// Run executes the cycle. It measures before connecting so the reading is taken before
// the radio warms the board. On hardware it ends in deep sleep and never returns;
// elsewhere it returns once sleep was requested. It fails only when ctx is done or
// the console is gone.
func (n *Node) Run(ctx context.Context) error {
	if err := n.restore(ctx); err != nil {
		return err
	}
	if err := n.acq.Setup(ctx); err != nil {
		return err
	}

	m, err := n.acq.Acquire(ctx)
	if err != nil {
		return err
	}
	if err := n.awaitConnected(ctx); err != nil {
		return err
	}
	n.publish(ctx, m)

	// last chance before sleep
	if err := n.ServiceInput(ctx); err != nil {
		return err
	}
	if err := n.grace(ctx); err != nil {
		return err
	}

	n.sched.SleepUntil(n.cfg.Period())
	return nil
}

// restore loads the settings, or runs the editor when there are none. A radio that
// kept an association across the reset seeds the Wi-Fi credentials.
func (n *Node) restore(ctx context.Context) error {
	if n.Store.Restore(n.cfg) {
		n.editor.EnsureNetwork()
		return nil
	}

	if ssid := n.Network.SSID(); ssid != "" {
		_ = n.cfg.Apply("ssid", ssid)
		_ = n.cfg.Apply("psk", n.Network.PSK())
	}
	return n.editor.Edit(ctx)
}

// ServiceInput handles pending console commands. After an edit it waits for the link
// again and pushes a changed calibration to the sensor.
func (n *Node) ServiceInput(ctx context.Context) error {
	for {
		edited, err := n.editor.HandleInput(ctx)
		if err != nil || !edited {
			return err
		}

		if err := n.awaitConnected(ctx); err != nil {
			return err
		}
		n.acq.Recalibrate()
		n.Log.Printf("Continuing...")
	}
}

// awaitConnected blocks until the network is up. Pending input opens the editor.
func (n *Node) awaitConnected(ctx context.Context) error {
	if !n.cfg.MinimallyConfigured() {
		if err := n.editor.Edit(ctx); err != nil {
			return err
		}
	}

	for !n.Network.Connected() {
		n.Log.Printf("Connecting to %q...", n.Network.SSID())
		n.Log.Userf("Hit a key to reconfigure")

		for wait := time.Duration(0); wait < ConnectWindow && !n.Network.Connected(); wait += ConnectStep {
			if err := n.poll(ctx); err != nil {
				return err
			}
			on := time.Duration(0)
			if wait > quietStart {
				on = blink
			}
			n.flash(on, ConnectStep)
		}

		if !n.Network.Connected() {
			n.Log.Userf("Connection to %s failed", n.cfg.SSID)
			n.Network.Diag(n.Log.Raw())
		}
	}

	n.Log.Printf("Connection established!")
	n.Log.Printf("IP address:\t%s", n.Network.LocalIP())
	return nil
}

// grace keeps the console open for a moment before sleeping.
func (n *Node) grace(ctx context.Context) error {
	for wait := time.Duration(0); wait < GraceWindow; wait += GraceStep {
		if err := n.poll(ctx); err != nil {
			return err
		}
		n.flash(blink, GraceStep)
	}
	return nil
}

// poll opens the editor if the operator typed something.
func (n *Node) poll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Console.Pending() {
		return n.editor.Interrupt(ctx)
	}
	return nil
}

// flash lights the LED for on, then idles until total has passed.
func (n *Node) flash(on, total time.Duration) {
	if on > 0 {
		n.led(true)
		n.Clock.Sleep(on)
		n.led(false)
	}
	if total > on {
		n.Clock.Sleep(total - on)
	}
}

func (n *Node) led(on bool) {
	if n.LED != nil {
		n.LED.Set(on)
	}
}

func (n *Node) publish(ctx context.Context, m measure.Measurement) {
	r := uplink.Record{
		Device:      n.cfg.Hostname,
		SSID:        n.Network.SSID(),
		IP:          n.Network.LocalIP(),
		Location:    n.cfg.Location,
		RSSI:        n.Network.RSSI(),
		Uptime:      m.Uptime,
		Temperature: m.Temperature,
		Humidity:    m.Humidity,
		Pressure:    m.Pressure,
	}
	if err := n.Publisher.Publish(ctx, uplink.TargetOf(n.cfg), r); err != nil {
		n.Log.Userf("Failed to publish to InfluxDB: %v", err)
		return
	}
	n.Log.Printf("Wrote to InfluxDB")
}

var _ measure.InputServicer = (*Node)(nil)
