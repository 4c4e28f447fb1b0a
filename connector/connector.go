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

// Package connector implements the client side of one full-duplex
// gocomm channel: one TCP socket, a send queue drained by a background
// writer, and a receive queue fed by a background reader.
package connector

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/jfawcett/gocomm/logger"
	"github.com/jfawcett/gocomm/message"
	"github.com/jfawcett/gocomm/queue"
	"github.com/jfawcett/gocomm/transport"
)

// Envelope is what the receive queue actually carries. Msg is valid iff
// Err is nil. When the receive worker dies (peer closed, read error) it
// pushes exactly one Envelope carrying Err before returning, so Get
// never blocks forever on a dead connection — this resolves the spec's
// open question about client-side shutdown detection.
type Envelope struct {
	Msg message.Message
	Err error
}

// Config tunes a Connector beyond the bare address.
type Config struct {
	// Compress wraps the socket in a snappy-compressed transport.CompressConn.
	Compress bool
	// MaxContentSize bounds content_size on receive; 0 uses message.DefaultMaxContentSize.
	MaxContentSize uint64
	// Logger receives session lifecycle lines; defaults to logger.Mute.
	Logger logger.Logger
	// DialTimeout bounds the initial TCP handshake; 0 means no timeout.
	DialTimeout time.Duration
}

// Connector owns exactly one TCP socket, one send queue, one receive
// queue, and two background goroutines. While it is live, the send
// goroutine is the only writer of the socket and the receive goroutine
// is the only reader; application code never touches the socket
// directly.
type Connector struct {
	conn      net.Conn
	sendQ     *queue.BlockingQueue[message.Message]
	recvQ     *queue.BlockingQueue[Envelope]
	connected atomic.Bool
	log       logger.Logger
	maxSize   uint64
	sendDone  chan struct{}
}

// New dials addr and spawns the send/receive background goroutines. On
// dial failure it returns a wrapped error and no Connector.
func New(addr string, cfg Config) (*Connector, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Mute
	}

	var conn net.Conn
	var err error
	if cfg.DialTimeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, cfg.DialTimeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		return nil, errors.Wrap(err, "connector: dial")
	}

	var wire net.Conn = conn
	if cfg.Compress {
		wire = transport.NewCompressConn(conn)
	}

	c := &Connector{
		conn:     wire,
		sendQ:    queue.New[message.Message](),
		recvQ:    queue.New[Envelope](),
		log:      cfg.Logger,
		maxSize:  cfg.MaxContentSize,
		sendDone: make(chan struct{}),
	}
	c.connected.Store(true)

	go c.sendLoop()
	go c.recvLoop()

	return c, nil
}

// sendLoop is the send worker: it is the Connector's only writer. It
// closes the socket (and therefore unblocks the receive worker's
// pending read) whenever it stops, whether that is because it
// transmitted a session-ending control message or because a write
// failed outright.
func (c *Connector) sendLoop() {
	defer close(c.sendDone)
	defer c.conn.Close()

	w := bufio.NewWriter(c.conn)
	for {
		m := c.sendQ.Dequeue()
		c.log.Tracef("connector: -> %s len=%d", m.Type, len(m.Content))
		err := message.BufSend(w, m)
		if err != nil {
			c.log.Write("connector: send worker exiting on write error: " + err.Error())
			return
		}
		if m.Type == message.End || m.Type == message.Quit {
			c.log.Write("connector: send worker exiting after " + m.Type.String())
			return
		}
	}
}

// recvLoop is the receive worker: it is the Connector's only reader.
func (c *Connector) recvLoop() {
	r := bufio.NewReader(c.conn)
	for {
		m, err := message.BufRecv(r, c.maxSize)
		if err != nil {
			c.connected.Store(false)
			c.recvQ.Enqueue(Envelope{Err: errors.Wrap(err, "connector: receive worker")})
			return
		}
		c.log.Tracef("connector: <- %s len=%d", m.Type, len(m.Content))
		c.recvQ.Enqueue(Envelope{Msg: m})
	}
}

// Post enqueues msg on the send queue. Non-blocking; there is no
// back-pressure.
func (c *Connector) Post(m message.Message) {
	c.sendQ.Enqueue(m)
}

// Get blocks until a message arrives or the receive worker has died, in
// which case it returns the terminal error instead of blocking forever.
func (c *Connector) Get() (message.Message, error) {
	e := c.recvQ.Dequeue()
	return e.Msg, e.Err
}

// HasMsg is a best-effort, instantaneous probe of the receive queue.
func (c *Connector) HasMsg() bool {
	return c.recvQ.Len() > 0
}

// IsConnected reports whether the receive worker is still believed
// alive. It goes false the moment the receive worker observes EOF or a
// read error; it does not reflect the send side.
func (c *Connector) IsConnected() bool {
	return c.connected.Load()
}

// Close posts an END message so the peer's session handler exits
// cleanly, then waits for the send worker to transmit it and close the
// socket, which in turn unblocks the receive worker. It is safe to call
// Close more than once or after the connection has already failed.
func (c *Connector) Close() error {
	c.Post(message.New(message.End, nil))
	<-c.sendDone
	return nil
}
