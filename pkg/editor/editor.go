// Package editor implements the interactive settings editor that runs on the console.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/settings"
)

// Input is the console the editor reads from. *console.Console satisfies it.
type Input interface {
	ReadLine(ctx context.Context, budget time.Duration) (string, error)
	Next() (byte, bool)
	DiscardLine()
}

// Log is the console output. *console.Log satisfies it.
type Log interface {
	Printf(format string, args ...any)
	Userf(format string, args ...any)
	Prompt(prompt string)
	Raw() io.Writer
	Verbose() bool
	SetVerbose(on bool)
}

// Saver persists settings. *store.Store satisfies it.
type Saver interface {
	Save(cfg *settings.Config) error
}

// Editor edits a settings.Config in place, one "name=value" line at a time.
type Editor struct {
	cfg   *settings.Config
	in    Input
	log   Log
	store Saver
	net   device.Network
}

// New creates an Editor for cfg.
func New(cfg *settings.Config, in Input, log Log, store Saver, net device.Network) *Editor {
	return &Editor{
		cfg:   cfg,
		in:    in,
		log:   log,
		store: store,
		net:   net,
	}
}

// Edit runs the editor until the operator quits with "!", which is only accepted once
// the settings are minimally configured. On exit the settings are saved and the
// network identity updated. It fails only when the console does.
func (e *Editor) Edit(ctx context.Context) error {
	for {
		e.cfg.Dump(e.log.Raw())
		e.log.Userf(`Enter e.g. "ssid=MyWiFi"`)
		e.log.Userf(` - shortest unique name prefix is accepted, e.g. "ss=MyWiFi"`)
		done := e.cfg.MinimallyConfigured()
		if done {
			e.log.Userf(`Or enter "!" to quit`)
		}
		e.log.Prompt("> ")

		line, err := e.in.ReadLine(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to read settings entry: %w", err)
		}
		line = strings.TrimSpace(line)

		if done && line == "!" {
			e.finish()
			return nil
		}
		if line == "" || line[0] == '#' {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			e.unrecognized(line)
			continue
		}
		e.apply(name, value)
	}
}

// Interrupt discards the rest of the pending line that woke the editor, then edits.
func (e *Editor) Interrupt(ctx context.Context) error {
	e.in.DiscardLine()
	return e.Edit(ctx)
}

func (e *Editor) apply(name, value string) {
	err := e.cfg.Apply(name, value)
	switch {
	case err == nil:
	case errors.Is(err, settings.ErrUnknownField), errors.Is(err, settings.ErrAmbiguousField):
		e.log.Userf("Unrecognized or ambiguous value name %q.", name)
	default:
		e.log.Userf("Ignored %v", err)
	}
}

func (e *Editor) unrecognized(line string) {
	e.log.Userf("")
	e.log.Userf("****************************************")
	e.log.Userf("Unrecognized or ambiguous entry:")
	e.log.Userf("%q", line)
	e.log.Userf("****************************************")
}

func (e *Editor) finish() {
	e.log.Userf("Finished editing config")
	if err := e.store.Save(e.cfg); err != nil {
		e.log.Userf("ERROR: %v", err)
	}
	e.EnsureNetwork()
}

// EnsureNetwork hands the Wi-Fi settings to the network, restarting the association
// only when the credentials changed.
func (e *Editor) EnsureNetwork() {
	began, err := device.Ensure(e.net, e.cfg.SSID, e.cfg.PSK, e.cfg.Hostname)
	if err != nil {
		e.log.Userf("ERROR: %v", err)
	}
	if began {
		e.log.Printf("Configuring new ssid")
	}
}

// HandleInput consumes pending single character commands:
//
//	'\n'  edit settings
//	'c'   edit settings, discarding the rest of the line
//	't'   toggle info logging
//
// Anything else prints a hint. It returns as soon as an edit finishes, reporting
// edited, so the caller can re-establish the link before reading more input.
func (e *Editor) HandleInput(ctx context.Context) (edited bool, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		b, ok := e.in.Next()
		if !ok {
			return false, nil
		}

		switch b {
		case '\n':
			return true, e.Edit(ctx)
		case 'c':
			return true, e.Interrupt(ctx)
		case 't':
			on := !e.log.Verbose()
			e.log.SetVerbose(on)
			e.log.Userf("Toggled Logging %s.", onOff(on))
		case '\r':
		default:
			e.log.Userf("'c' to edit config; 't' to toggle logging on.")
		}
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
