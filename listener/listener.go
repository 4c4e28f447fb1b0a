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

// Package listener implements the server side of gocomm: an accept loop
// dispatching each accepted socket to a bounded pool.WorkerPool, and the
// per-connection state machine (READING -> PROCESSING -> WRITING ->
// READING, ending on END/QUIT/I-O error) that calls out to a
// processor.Processor.
package listener

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/jfawcett/gocomm/logger"
	"github.com/jfawcett/gocomm/message"
	"github.com/jfawcett/gocomm/pool"
	"github.com/jfawcett/gocomm/processor"
	"github.com/jfawcett/gocomm/transport"
)

// Config tunes a Listener beyond its worker count.
type Config struct {
	// Processor turns received messages into replies; defaults to processor.Echo.
	Processor processor.Processor
	// Logger receives session/accept lifecycle lines; defaults to logger.Mute.
	Logger logger.Logger
	// Compress wraps each accepted socket in a snappy-compressed transport.CompressConn.
	Compress bool
	// MaxContentSize bounds content_size on receive; 0 uses message.DefaultMaxContentSize.
	MaxContentSize uint64
	// SelfConnectTimeout bounds the throwaway dials Stop/QUIT use to
	// unblock a pending Accept; 0 means no timeout.
	SelfConnectTimeout time.Duration
}

// Listener accepts many concurrent TCP connections and dispatches each
// to a fixed-size pool.WorkerPool. Accepted connections queue for that
// pool without bound, but at any instant no more than nthreads client
// handler loops are active.
type Listener struct {
	nthreads int
	cfg      Config
	run      atomic.Bool

	ln   net.Listener
	addr string

	pool       *pool.WorkerPool[net.Conn]
	acceptDone chan struct{}
}

// New stores the pool size and Config; no socket is bound yet.
func New(nthreads int, cfg Config) *Listener {
	if cfg.Processor == nil {
		cfg.Processor = processor.Echo
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Mute
	}
	l := &Listener{
		nthreads:   nthreads,
		cfg:        cfg,
		acceptDone: make(chan struct{}),
	}
	l.run.Store(true)
	return l
}

// Start binds addr and spawns the accept goroutine. It returns once the
// socket is bound; the accept loop itself runs in the background. Call
// Wait to block until the accept loop (and every in-flight worker) has
// exited.
func (l *Listener) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listener: bind")
	}
	l.ln = ln
	l.addr = ln.Addr().String()
	l.pool = pool.New[net.Conn](l.nthreads, l.handleClient)

	go l.acceptLoop()
	return nil
}

// Addr returns the bound address; only meaningful after Start succeeds.
func (l *Listener) Addr() string {
	return l.addr
}

func (l *Listener) acceptLoop() {
	defer close(l.acceptDone)
	defer l.ln.Close()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			l.cfg.Logger.Write("listener: accept loop exiting: " + err.Error())
			break
		}
		if !l.run.Load() {
			conn.Close()
			break
		}
		l.pool.Post(conn)
	}
	l.pool.Stop()
	l.pool.Wait()
}

// handleClient runs the per-connection state machine: READING ->
// PROCESSING -> WRITING -> READING, until END, QUIT, or an I/O error
// moves it to CLOSED.
func (l *Listener) handleClient(conn net.Conn) {
	defer conn.Close()

	var wire net.Conn = conn
	if l.cfg.Compress {
		wire = transport.NewCompressConn(conn)
	}
	r := bufio.NewReader(wire)
	w := bufio.NewWriter(wire)

	for {
		// READING
		m, err := message.BufRecv(r, l.cfg.MaxContentSize)
		if err != nil {
			l.cfg.Logger.Write("listener: session closed abruptly: " + err.Error())
			return // -> CLOSED
		}
		l.cfg.Logger.Tracef("listener: <- %s len=%d", m.Type, len(m.Content))

		switch m.Type {
		case message.End:
			return // -> CLOSED: this session is done
		case message.Quit:
			l.initiateShutdown()
			return // -> CLOSED
		}

		// PROCESSING
		reply := l.cfg.Processor.Process(m)

		// WRITING
		l.cfg.Logger.Tracef("listener: -> %s len=%d", reply.Type, len(reply.Content))
		if err := message.BufSend(w, reply); err != nil {
			l.cfg.Logger.Write("listener: session closed abruptly: " + err.Error())
			return // -> CLOSED
		}
		// A reply's own type (REPLY) never triggers BufSend's
		// self-flush; it is the request that asked for a tight
		// turnaround, so flush here on the request's behalf when it
		// came in as FLUSH.
		if m.Type == message.Flush {
			if err := w.Flush(); err != nil {
				l.cfg.Logger.Write("listener: session closed abruptly: " + err.Error())
				return // -> CLOSED
			}
		}
		// -> READING (loop)
	}
}

// initiateShutdown sets the run flag false and dials a throwaway
// connection to this Listener's own address carrying a QUIT message, so
// the accept goroutine's blocked Accept() call returns and observes the
// flag. This centralizes the flag-flip-plus-external-wake idiom used
// throughout this module for unblocking a goroutine parked in a syscall.
func (l *Listener) initiateShutdown() {
	l.run.Store(false)
	l.wakeAccept()
}

func (l *Listener) wakeAccept() {
	var conn net.Conn
	var err error
	if l.cfg.SelfConnectTimeout > 0 {
		conn, err = net.DialTimeout("tcp", l.addr, l.cfg.SelfConnectTimeout)
	} else {
		conn, err = net.Dial("tcp", l.addr)
	}
	if err != nil {
		l.cfg.Logger.Write("listener: self-connect to unblock accept failed: " + err.Error())
		return
	}
	defer conn.Close()
	_ = message.Send(conn, message.New(message.Quit, nil))
}

// Stop sets the run flag false and wakes the accept loop the same way a
// client-initiated QUIT does. It does not itself wait for the accept
// loop or the workers to finish; call Wait for that.
func (l *Listener) Stop() {
	l.run.Store(false)
	if l.addr != "" {
		l.wakeAccept()
	}
}

// Wait blocks until the accept loop has exited and every pool worker has
// finished its current client before returning.
func (l *Listener) Wait() {
	<-l.acceptDone
}
