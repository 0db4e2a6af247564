package editor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/envnode/pkg/config"
	"github.com/itohio/envnode/pkg/console"
	"github.com/itohio/envnode/pkg/console/consoletest"
	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/settings"
	"github.com/itohio/envnode/pkg/store"
)

type rig struct {
	port  *consoletest.Port
	cfg   *settings.Config
	mem   *store.Mem
	net   *device.MockNetwork
	log   *console.Log
	store *store.Store
	ed    *Editor
}

func newRig(script string, cfg *settings.Config) *rig {
	r := &rig{
		port: consoletest.New(script),
		cfg:  cfg,
		mem:  store.NewMem(store.Size),
		net:  device.NewMockNetwork(&config.MockConfig{IP: "10.0.0.2"}),
	}
	r.log = console.NewLog(r.port, func() time.Duration { return 0 })
	r.store = store.New(r.mem, r.log)
	r.ed = New(cfg, console.New(r.port), r.log, r.store, r.net)
	return r
}

func configured() *settings.Config {
	cfg := settings.Default()
	cfg.SSID = "Net"
	cfg.PSK = "secret"
	cfg.Hostname = "dev1"
	cfg.URL = "http://x"
	return cfg
}

func TestEdit_FirstBoot(t *testing.T) {
	r := newRig("ss=Net\np=secret\nhost=dev1\n!\nurl=http://x\n!\n", settings.Default())

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Equal(t, "Net", r.cfg.SSID)
	assert.Equal(t, "secret", r.cfg.PSK)
	assert.Equal(t, "dev1", r.cfg.Hostname)
	assert.Equal(t, "http://x", r.cfg.URL)
	assert.True(t, r.cfg.MinimallyConfigured())
	assert.Empty(t, r.port.Remaining())

	// the first "!" arrived before url was set
	assert.Equal(t, 1, r.port.Count("Unrecognized or ambiguous entry:"))
	assert.Equal(t, 1, r.port.Count(`Or enter "!" to quit`))
	assert.Equal(t, 6, r.port.Count("> "))

	var restored settings.Config
	require.True(t, r.store.Restore(&restored))
	assert.Equal(t, *r.cfg, restored)

	assert.Equal(t, "Net", r.net.SSID())
	assert.Equal(t, "secret", r.net.PSK())
	assert.Equal(t, "dev1", r.net.Hostname())
	assert.Equal(t, 1, r.net.Begins())
	assert.Contains(t, r.port.Output(), "Configuring new ssid\r\n")
	assert.Contains(t, r.port.Output(), "Finished editing config\r\n")
	assert.Contains(t, r.port.Output(), "Saved data to EEPROM\r\n")
}

func TestEdit_IgnoresBlankAndComments(t *testing.T) {
	r := newRig("# note\n\n   \n!\n", configured())

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Equal(t, 4, r.port.Count("> "))
	assert.NotContains(t, r.port.Output(), "Unrecognized")
}

func TestEdit_UnknownName(t *testing.T) {
	r := newRig("zz=1\nssidx=Other\n!\n", configured())

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Contains(t, r.port.Output(), `Unrecognized or ambiguous value name "zz".`)
	assert.Contains(t, r.port.Output(), `Unrecognized or ambiguous value name "ssidx".`)
	assert.Equal(t, "Net", r.cfg.SSID)
}

func TestEdit_InvalidValueKeepsPrevious(t *testing.T) {
	cfg := configured()
	cfg.TempOffsetC = 1.5
	r := newRig("te=warm\nup=-5\nte=-0.25\n!\n", cfg)

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Equal(t, 2, r.port.Count("Ignored invalid value"))
	assert.Equal(t, float32(-0.25), r.cfg.TempOffsetC)
	assert.Equal(t, uint32(settings.DefaultUpdatePeriod), r.cfg.UpdatePeriodS)
}

func TestEdit_ValueKeepsEquals(t *testing.T) {
	r := newRig("to=abc==\nb=weather\nf=yes\n!\n", configured())

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Equal(t, "abc==", r.cfg.Token)
	assert.Equal(t, "weather", r.cfg.Bucket)
	assert.True(t, r.cfg.Fahrenheit)
}

func TestEdit_BangWithoutConfigRefused(t *testing.T) {
	r := newRig("!\n", settings.Default())

	err := r.ed.Edit(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, r.port.Count("Unrecognized or ambiguous entry:"))
	assert.Equal(t, 0, r.net.Begins())
	assert.Zero(t, r.mem.Commits)
}

func TestEdit_OnlyBareBangExits(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		unrecognized int
		badName      int
	}{
		{name: "trailing text", line: "!x", unrecognized: 1},
		{name: "trailing assignment", line: "!oops=1", badName: 1},
		{name: "empty name", line: "!=x", badName: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(tt.line+"\n", configured())

			err := r.ed.Edit(context.Background())
			assert.ErrorIs(t, err, io.EOF)
			assert.Zero(t, r.mem.Commits)
			assert.Equal(t, tt.unrecognized, r.port.Count("Unrecognized or ambiguous entry:"))
			assert.Equal(t, tt.badName, r.port.Count("Unrecognized or ambiguous value name"))
		})
	}

	r := newRig("!x\n!\n", configured())
	require.NoError(t, r.ed.Edit(context.Background()))
	assert.Equal(t, 1, r.mem.Commits)
}

func TestEdit_UnchangedNetworkNotRestarted(t *testing.T) {
	r := newRig("lo=attic\n!\n", configured())
	require.NoError(t, r.net.Begin("Net", "secret"))

	require.NoError(t, r.ed.Edit(context.Background()))

	assert.Equal(t, "attic", r.cfg.Location)
	assert.Equal(t, 1, r.net.Begins())
	assert.NotContains(t, r.port.Output(), "Configuring new ssid")
}

func TestEdit_Cancelled(t *testing.T) {
	r := newRig("", settings.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.ed.Edit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleInput(t *testing.T) {
	r := newRig("tx\rc junk\n!\n", configured())

	edited, err := r.ed.HandleInput(context.Background())
	require.NoError(t, err)

	assert.True(t, edited)
	assert.False(t, r.log.Verbose())
	assert.Contains(t, r.port.Output(), "Toggled Logging off.\r\n")
	assert.Equal(t, 1, r.port.Count("'c' to edit config; 't' to toggle logging on."))
	assert.Contains(t, r.port.Output(), "Finished editing config")
	assert.Empty(t, r.port.Remaining())
}

func TestHandleInput_Newline(t *testing.T) {
	r := newRig("\nlo=attic\n!\n", configured())

	edited, err := r.ed.HandleInput(context.Background())
	require.NoError(t, err)
	assert.True(t, edited)
	assert.Equal(t, "attic", r.cfg.Location)
}

func TestHandleInput_Idle(t *testing.T) {
	r := newRig("", configured())

	edited, err := r.ed.HandleInput(context.Background())
	require.NoError(t, err)
	assert.False(t, edited)
	assert.Empty(t, r.port.Output())
}

func TestHandleInput_ToggleTwice(t *testing.T) {
	r := newRig("tt", configured())

	edited, err := r.ed.HandleInput(context.Background())
	require.NoError(t, err)
	assert.False(t, edited)
	assert.True(t, r.log.Verbose())
	assert.Contains(t, r.port.Output(), "Toggled Logging on.\r\n")
}
