package listener

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jfawcett/gocomm/message"
	"github.com/jfawcett/gocomm/processor"
)

func dialRaw(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestEchoScenario(t *testing.T) {
	l := New(4, Config{Processor: processor.Echo})
	if err := l.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		l.Stop()
		l.Wait()
	}()

	conn := dialRaw(t, l.Addr())
	defer conn.Close()

	if err := message.Send(conn, message.New(message.Flush, []byte("ping"))); err != nil {
		t.Fatalf("send: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := message.Recv(conn, 0)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if reply.Type != message.Reply || string(reply.Content) != "ping" {
		t.Fatalf("reply = %+v, want REPLY(ping)", reply)
	}
}

func TestEndSessionThenNewConnectionSucceeds(t *testing.T) {
	l := New(4, Config{Processor: processor.Echo})
	if err := l.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		l.Stop()
		l.Wait()
	}()

	conn := dialRaw(t, l.Addr())
	if err := message.Send(conn, message.New(message.Flush, []byte("ping"))); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := message.Recv(conn, 0); err != nil {
		t.Fatal(err)
	}
	if err := message.Send(conn, message.New(message.End, nil)); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	conn2 := dialRaw(t, l.Addr())
	defer conn2.Close()
	if err := message.Send(conn2, message.New(message.Flush, []byte("again"))); err != nil {
		t.Fatal(err)
	}
	conn2.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := message.Recv(conn2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if string(reply.Content) != "again" {
		t.Fatalf("reply content = %q, want again", reply.Content)
	}
}

func TestQuitShutsDownAcceptLoop(t *testing.T) {
	l := New(4, Config{Processor: processor.Echo})
	if err := l.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := l.Addr()

	conn := dialRaw(t, addr)
	if err := message.Send(conn, message.New(message.Quit, nil)); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("accept loop did not join within 2s of QUIT")
	}

	if _, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		t.Fatal("expected new connections to the stopped listener to fail")
	}
}

func TestConcurrentClients(t *testing.T) {
	l := New(8, Config{Processor: processor.Echo})
	if err := l.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		l.Stop()
		l.Wait()
	}()

	const nclients = 16
	const perClient = 50

	errc := make(chan error, nclients)
	for i := 0; i < nclients; i++ {
		go func() {
			conn, err := net.DialTimeout("tcp", l.Addr(), time.Second)
			if err != nil {
				errc <- err
				return
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(5 * time.Second))

			for j := 0; j < perClient; j++ {
				body := []byte{byte(j)}
				if err := message.Send(conn, message.New(message.Flush, body)); err != nil {
					errc <- err
					return
				}
				reply, err := message.Recv(conn, 0)
				if err != nil {
					errc <- err
					return
				}
				if reply.Type != message.Reply || len(reply.Content) != 1 || reply.Content[0] != byte(j) {
					errc <- fmt.Errorf("reply %d = %+v, want REPLY(%d)", j, reply, j)
					return
				}
			}
			if err := message.Send(conn, message.New(message.End, nil)); err != nil {
				errc <- err
				return
			}
			errc <- nil
		}()
	}

	for i := 0; i < nclients; i++ {
		if err := <-errc; err != nil {
			t.Fatalf("client failed: %v", err)
		}
	}
}
