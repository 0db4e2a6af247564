package console

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// Log writes timestamped, CRLF terminated lines to the console.
//
// Info lines can be silenced with SetVerbose; user lines (prompts, errors the operator
// must see, settings dumps) always go out.
type Log struct {
	out    io.Writer
	info   *log.Logger
	user   *log.Logger
	uptime func() time.Duration

	mu      sync.Mutex
	verbose bool
}

// NewLog creates a Log on w. uptime supplies the timestamp; nil means time since
// NewLog was called.
func NewLog(w io.Writer, uptime func() time.Duration) *Log {
	if uptime == nil {
		start := time.Now()
		uptime = func() time.Duration { return time.Since(start) }
	}
	return &Log{
		out:     w,
		info:    log.New(w, "", 0),
		user:    log.New(w, "", 0),
		uptime:  uptime,
		verbose: true,
	}
}

func (l *Log) stamp() string {
	ms := l.uptime().Milliseconds()
	return fmt.Sprintf("%6d.%03ds ", ms/1000, ms%1000)
}

func (l *Log) line(format string, args ...any) string {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\r\n")
	return l.stamp() + msg + "\r\n"
}

// Printf logs an info line.
func (l *Log) Printf(format string, args ...any) {
	l.info.Print(l.line(format, args...))
}

// Userf logs a line the operator must see regardless of verbosity.
func (l *Log) Userf(format string, args ...any) {
	l.user.Print(l.line(format, args...))
}

// Prompt writes a timestamped prompt without a line terminator.
func (l *Log) Prompt(prompt string) {
	_, _ = io.WriteString(l.out, l.stamp()+prompt)
}

// Raw returns a writer for untimestamped output that is always shown.
func (l *Log) Raw() io.Writer {
	return l.out
}

// Verbose reports whether info lines are shown.
func (l *Log) Verbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// SetVerbose shows or silences info lines.
func (l *Log) SetVerbose(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.verbose = on
	if on {
		l.info.SetOutput(l.out)
	} else {
		l.info.SetOutput(io.Discard)
	}
}
