package transport

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestCompressConnRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	cs := NewCompressConn(server)
	cc := NewCompressConn(client)

	payload := []byte("hello over a compressed pipe")
	done := make(chan error, 1)
	go func() {
		_, err := cs.Write(payload)
		done <- err
	}()

	buf := make([]byte, len(payload))
	cc.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := io.ReadFull(cc, buf); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(buf) != string(payload) {
		t.Fatalf("got %q, want %q", buf, payload)
	}

	stats := cs.Stats()
	if stats.RawWritten != uint64(len(payload)) {
		t.Fatalf("RawWritten = %d, want %d", stats.RawWritten, len(payload))
	}
	if stats.WireWritten == 0 {
		t.Fatal("WireWritten should be nonzero once snappy has flushed a block")
	}

	rstats := cc.Stats()
	if rstats.RawRead != uint64(len(payload)) {
		t.Fatalf("RawRead = %d, want %d", rstats.RawRead, len(payload))
	}
}
