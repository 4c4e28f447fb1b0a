package message

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := []Message{
		New(Default, nil),
		NewText("ping"),
		New(Reply, []byte{}),
		New(End, nil),
		New(Quit, nil),
		New(Flush, bytes.Repeat([]byte{'x'}, 65536)),
	}
	for _, want := range cases {
		var buf bytes.Buffer
		if err := Send(&buf, want); err != nil {
			t.Fatalf("Send: %v", err)
		}
		got, err := Recv(&buf, 0)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if got.Type != want.Type {
			t.Fatalf("type = %v, want %v", got.Type, want.Type)
		}
		if !bytes.Equal(got.Content, want.Content) {
			t.Fatalf("content = %q, want %q", got.Content, want.Content)
		}
	}
}

func TestZeroBodyReply(t *testing.T) {
	var buf bytes.Buffer
	if err := Send(&buf, New(Reply, nil)); err != nil {
		t.Fatal(err)
	}
	got, err := Recv(&buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != Reply {
		t.Fatalf("type = %v, want REPLY", got.Type)
	}
	if len(got.Content) != 0 {
		t.Fatalf("content length = %d, want 0", len(got.Content))
	}
}

func TestBufSendFlushPolicy(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriterSize(&buf, 4096)

	if err := BufSend(w, NewText("no flush yet")); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("TEXT should not flush, but %d bytes reached the sink", buf.Len())
	}

	if err := BufSend(w, New(Flush, []byte("go"))); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("FLUSH must flush the writer")
	}

	r := bufio.NewReader(&buf)
	first, err := BufRecv(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first.Type != Text || string(first.Content) != "no flush yet" {
		t.Fatalf("unexpected first message: %+v", first)
	}
	second, err := BufRecv(r, 0)
	if err != nil {
		t.Fatal(err)
	}
	if second.Type != Flush || string(second.Content) != "go" {
		t.Fatalf("unexpected second message: %+v", second)
	}
}

func TestMalformedHeaderRejected(t *testing.T) {
	_, err := Recv(bytes.NewReader([]byte{byte(Text), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}), 1024)
	if err != ErrMalformedHeader {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
}

func TestTruncatedFrame(t *testing.T) {
	var buf bytes.Buffer
	putHeaderForTest(&buf, Text, 10)
	buf.WriteString("short")
	_, err := Recv(&buf, 0)
	if err == nil {
		t.Fatal("expected error on truncated frame")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want io.ErrUnexpectedEOF in chain", err)
	}
}

func putHeaderForTest(buf *bytes.Buffer, t Type, size uint64) {
	var h rawHeader
	putHeader(&h, t, size)
	buf.Write(h[:])
}
