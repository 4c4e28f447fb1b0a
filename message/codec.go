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

package message

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// DefaultMaxContentSize bounds content_size on Recv/BufRecv so a
// corrupted or hostile header can't force an unbounded allocation.
const DefaultMaxContentSize = 64 << 20 // 64 MiB

// ErrMalformedHeader is returned by Recv/BufRecv when content_size
// exceeds the configured maximum.
var ErrMalformedHeader = errors.New("message: content_size exceeds maximum")

// rawHeader is the on-the-wire byte layout of a frame's fixed part.
type rawHeader [HeaderSize]byte

func (h rawHeader) msgType() Type {
	return Type(h[0])
}

func (h rawHeader) contentSize() uint64 {
	return binary.BigEndian.Uint64(h[1:9])
}

func putHeader(h *rawHeader, t Type, size uint64) {
	h[0] = byte(t)
	binary.BigEndian.PutUint64(h[1:9], size)
}

// Send writes m to w: one type byte, the big-endian content length, then
// the content bytes. Exactly HeaderSize+len(m.Content) bytes are written.
func Send(w io.Writer, m Message) error {
	var h rawHeader
	putHeader(&h, m.Type, m.ContentSize())
	if _, err := w.Write(h[:]); err != nil {
		return errors.Wrap(err, "message: write header")
	}
	if len(m.Content) > 0 {
		if _, err := w.Write(m.Content); err != nil {
			return errors.Wrap(err, "message: write content")
		}
	}
	return nil
}

// BufSend writes m to a buffered writer and flushes iff m.Type is one of
// FLUSH, END, or QUIT. This is the operational default: tight
// request/reply loops mark outbound messages FLUSH to force a flush,
// while streaming senders leave bytes to coalesce in the bufio.Writer's
// buffer until it fills or a FLUSH, END or QUIT message flushes it.
func BufSend(w *bufio.Writer, m Message) error {
	if err := Send(w, m); err != nil {
		return err
	}
	switch m.Type {
	case Flush, End, Quit:
		if err := w.Flush(); err != nil {
			return errors.Wrap(err, "message: flush")
		}
	}
	return nil
}

// Recv reads exactly one frame from r: HeaderSize header bytes, then
// content_size content bytes. A maxContentSize of 0 uses
// DefaultMaxContentSize.
func Recv(r io.Reader, maxContentSize uint64) (Message, error) {
	if maxContentSize == 0 {
		maxContentSize = DefaultMaxContentSize
	}
	var h rawHeader
	if _, err := io.ReadFull(r, h[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Message{}, err
		}
		return Message{}, errors.Wrap(err, "message: read header")
	}
	size := h.contentSize()
	if size > maxContentSize {
		return Message{}, ErrMalformedHeader
	}
	content := make([]byte, size)
	if size > 0 {
		if _, err := io.ReadFull(r, content); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Message{}, errors.Wrap(err, "message: read content")
		}
	}
	return Message{Type: h.msgType(), Content: content}, nil
}

// BufRecv reads one frame from a buffered reader. It is the operational
// default pairing of Recv, matching BufSend's buffered writer half.
func BufRecv(r *bufio.Reader, maxContentSize uint64) (Message, error) {
	return Recv(r, maxContentSize)
}
