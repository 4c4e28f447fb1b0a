// The MIT License (MIT)
//
// Copyright (c) 2024 gocomm contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package logger holds the pluggable log sink used by Connector and
// Listener. The transport core never decides where logs go; it only
// calls Write and Tracef.
package logger

import (
	"fmt"
	"log"
)

// Logger is the log sink used by Connector and Listener. Write carries
// session/accept lifecycle lines; Tracef carries the high-frequency
// per-frame diagnostics (type, content length, direction) that
// Connector's send/recv loops and Listener's handleClient emit for
// every frame. Implementations decide whether Tracef lines are kept or
// dropped; Mute drops both.
type Logger interface {
	Write(s string)
	Tracef(format string, args ...any)
}

// mute discards every message.
type mute struct{}

// Mute is the default Logger: silence.
var Mute Logger = mute{}

func (mute) Write(string)          {}
func (mute) Tracef(string, ...any) {}

// Standard logs through a stdlib *log.Logger, matching the timestamp +
// file:line convention this module's demo binaries use for
// self-built/debug binaries. Tracef is gated on Verbose so per-frame
// diagnostics don't drown out session-level log lines unless asked for.
type Standard struct {
	l       *log.Logger
	Verbose bool
}

// NewStandard returns a Standard logger writing with timestamps and
// source file:line, the convention this module's demo binaries use
// outside of release builds. It writes to the stdlib logger's output as
// it stands when NewStandard is called: os.Stderr unless log.SetOutput
// redirected it beforehand (as the demo binaries' -log flag does).
func NewStandard(verbose bool) *Standard {
	return &Standard{
		l:       log.New(log.Writer(), "", log.LstdFlags|log.Lshortfile),
		Verbose: verbose,
	}
}

func (s *Standard) Write(msg string) {
	s.l.Output(2, msg)
}

// Tracef writes a trace line only when Verbose is enabled. Intended for
// high-frequency per-frame diagnostics that would otherwise drown out
// session-level log lines.
func (s *Standard) Tracef(format string, args ...any) {
	if !s.Verbose {
		return
	}
	s.Write(fmt.Sprintf(format, args...))
}
