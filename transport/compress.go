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

// Package transport provides optional net.Conn wrappers that sit
// beneath Connector/Listener's buffered message.Message codec. The
// codec's framing (type byte + big-endian length + content) is
// unaffected by anything in this package: content_size always counts
// uncompressed message content bytes, only the bytes actually placed on
// the kernel socket change.
package transport

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// CompressConn wraps a net.Conn so that everything written through it is
// snappy-compressed and everything read back is transparently
// decompressed. It is selected per-Connector/-Listener via a Compress
// option and is otherwise invisible to message.Send/Recv.
//
// Writes are arbitrary chunks of the frame stream: Connector and
// Listener put a bufio.Writer on top of this conn, so one Write may hold
// several frames or part of one. Each Write is compressed and flushed to
// the socket before it returns, so a CompressConn never holds bytes back
// across calls; the reader side decompresses a continuous stream and
// message.Recv reframes it. Stats
// reports the raw-vs-wire byte counts so callers can judge whether
// compression is worth its CPU cost for a given workload.
type CompressConn struct {
	conn    net.Conn
	w       *snappy.Writer
	r       *snappy.Reader
	counted *countingWriter

	rawWritten atomic.Uint64
	rawRead    atomic.Uint64
}

// countingWriter sits between snappy.Writer and the kernel socket so
// CompressConn can report actual post-compression bytes-on-wire, not
// just what it was asked to write.
type countingWriter struct {
	net.Conn
	n atomic.Uint64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.Conn.Write(p)
	w.n.Add(uint64(n))
	return n, err
}

// Stats is a point-in-time snapshot of a CompressConn's byte counters.
type Stats struct {
	// RawWritten is the sum of len(p) across every Write call, i.e. the
	// uncompressed frame bytes message.Send has handed to this conn.
	RawWritten uint64
	// WireWritten is the bytes snappy actually placed on the socket,
	// including its own block framing and any incompressible overhead.
	WireWritten uint64
	// RawRead is the sum of decompressed bytes returned from Read.
	RawRead uint64
}

// NewCompressConn wraps conn with a snappy writer/reader pair. The
// writer is flushed after every Write so nothing a caller has written
// stays buffered inside the CompressConn.
func NewCompressConn(conn net.Conn) *CompressConn {
	cw := &countingWriter{Conn: conn}
	return &CompressConn{
		conn:    conn,
		w:       snappy.NewBufferedWriter(cw),
		r:       snappy.NewReader(conn),
		counted: cw,
	}
}

// Stats returns the current raw/wire byte counters. Safe to call
// concurrently with Read/Write.
func (c *CompressConn) Stats() Stats {
	return Stats{
		RawWritten:  c.rawWritten.Load(),
		WireWritten: c.counted.n.Load(),
		RawRead:     c.rawRead.Load(),
	}
}

func (c *CompressConn) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.rawRead.Add(uint64(n))
	return n, err
}

func (c *CompressConn) Write(p []byte) (int, error) {
	if _, err := c.w.Write(p); err != nil {
		return 0, errors.WithStack(err)
	}
	if err := c.w.Flush(); err != nil {
		return 0, errors.WithStack(err)
	}
	c.rawWritten.Add(uint64(len(p)))
	return len(p), nil
}

func (c *CompressConn) Close() error                       { return c.conn.Close() }
func (c *CompressConn) LocalAddr() net.Addr                { return c.conn.LocalAddr() }
func (c *CompressConn) RemoteAddr() net.Addr               { return c.conn.RemoteAddr() }
func (c *CompressConn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *CompressConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *CompressConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

var _ net.Conn = (*CompressConn)(nil)
