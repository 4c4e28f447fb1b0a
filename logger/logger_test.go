package logger

import (
	"strings"
	"testing"
)

func TestMuteDiscardsWriteAndTracef(t *testing.T) {
	// Mute must satisfy Logger without panicking; there's nothing to
	// observe since it discards both kinds of line.
	Mute.Write("ignored")
	Mute.Tracef("ignored %d", 1)
}

func TestStandardTracefGatedOnVerbose(t *testing.T) {
	var buf strings.Builder
	quiet := NewStandard(false)
	quiet.l.SetOutput(&buf)
	quiet.l.SetFlags(0)
	quiet.Tracef("frame %s len=%d", "TEXT", 3)
	if buf.Len() != 0 {
		t.Fatalf("Tracef wrote %q with Verbose=false, want nothing", buf.String())
	}

	verbose := NewStandard(true)
	verbose.l.SetOutput(&buf)
	verbose.l.SetFlags(0)
	verbose.Tracef("frame %s len=%d", "TEXT", 3)
	if got := buf.String(); !strings.Contains(got, "frame TEXT len=3") {
		t.Fatalf("Tracef wrote %q, want it to contain the formatted trace line", got)
	}
}

func TestStandardWriteAlwaysEmits(t *testing.T) {
	var buf strings.Builder
	s := NewStandard(false)
	s.l.SetOutput(&buf)
	s.l.SetFlags(0)
	s.Write("session opened")
	if got := buf.String(); !strings.Contains(got, "session opened") {
		t.Fatalf("Write wrote %q, want it to contain %q", got, "session opened")
	}
}
