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

// Package message defines the wire frame shared by Connector and Listener.
package message

import "fmt"

// Type identifies the purpose of a Message on the wire.
type Type byte

const (
	// Default carries application content with no implied reply.
	Default Type = 0
	// Text carries application content and expects a Reply.
	Text Type = 1
	// Reply carries a Processor's response to a Text/Flush message.
	Reply Type = 2
	// End terminates the sender's session; the peer closes its side.
	End Type = 4
	// Quit asks the whole Listener to shut down after this session ends.
	Quit Type = 8
	// Flush behaves like Text but forces a writer flush after transmission.
	Flush Type = 16
)

func (t Type) String() string {
	switch t {
	case Default:
		return "DEFAULT"
	case Text:
		return "TEXT"
	case Reply:
		return "REPLY"
	case End:
		return "END"
	case Quit:
		return "QUIT"
	case Flush:
		return "FLUSH"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(t))
	}
}

// HeaderSize is the number of bytes preceding Content on the wire:
// 1 byte type + 8 bytes big-endian content length.
const HeaderSize = 9

// Message is a value-type framed payload: a type byte, a length, and
// opaque content bytes. It carries no identity beyond its bytes and is
// safe to copy freely; the only sharing between goroutines happens via
// a queue.BlockingQueue.
type Message struct {
	Type    Type
	Content []byte
}

// New builds a Message of the given type carrying content. The slice is
// not copied; callers must not mutate it after handing it to a Connector.
func New(t Type, content []byte) Message {
	return Message{Type: t, Content: content}
}

// NewText builds a TEXT message from a UTF-8 string.
func NewText(s string) Message {
	return Message{Type: Text, Content: []byte(s)}
}

// ContentSize is the number of content bytes this message carries, i.e.
// the content_size field that will be placed on the wire.
func (m Message) ContentSize() uint64 {
	return uint64(len(m.Content))
}

// String renders the type and the content length; the content bytes
// themselves are not printed.
func (m Message) String() string {
	return fmt.Sprintf("{Type: %s, ContentSize: %d}", m.Type, len(m.Content))
}

// IsControl reports whether this message type drives the session/Listener
// state machine (as opposed to carrying application content).
func (m Message) IsControl() bool {
	switch m.Type {
	case End, Quit:
		return true
	default:
		return false
	}
}
