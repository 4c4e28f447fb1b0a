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

// Package processor holds the application-supplied hook that turns a
// received Message into a reply. The transport core knows nothing about
// message content beyond this interface.
package processor

import (
	"bytes"
	"unicode"

	"github.com/jfawcett/gocomm/message"
)

// Processor transforms a received message into a reply. Implementations
// must be safe to call concurrently from every worker in a Listener's
// pool.
type Processor interface {
	Process(in message.Message) message.Message
}

// Func adapts a plain function to the Processor interface.
type Func func(in message.Message) message.Message

func (f Func) Process(in message.Message) message.Message {
	return f(in)
}

// echo is the default Processor: control messages (END/QUIT) pass
// through unchanged, everything else — including FLUSH, the type a
// tight request/reply loop posts — comes back as a REPLY with identical
// content.
type echo struct{}

// Echo is the reference Processor: END/QUIT pass through unchanged,
// everything else becomes a REPLY carrying the same content.
var Echo Processor = echo{}

func (echo) Process(in message.Message) message.Message {
	if in.IsControl() {
		return in
	}
	return message.New(message.Reply, in.Content)
}

// uppercase behaves like Echo but upper-cases TEXT/FLUSH content before
// replying, demonstrating a second, non-trivial Processor.
type uppercase struct{}

// Uppercase is a reference Processor that upper-cases TEXT/FLUSH content
// and otherwise behaves like Echo.
var Uppercase Processor = uppercase{}

func (uppercase) Process(in message.Message) message.Message {
	if in.IsControl() {
		return in
	}
	if in.Type != message.Text && in.Type != message.Flush {
		return message.New(message.Reply, in.Content)
	}
	var out bytes.Buffer
	out.Grow(len(in.Content))
	for _, r := range string(in.Content) {
		out.WriteRune(unicode.ToUpper(r))
	}
	return message.New(message.Reply, out.Bytes())
}
