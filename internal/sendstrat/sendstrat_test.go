package sendstrat

import (
	"errors"
	"io"
	"net"
	"syscall"
	"testing"

	"go.uber.org/zap"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

func TestAdvance(t *testing.T) {
	mk := func() [][]byte {
		return [][]byte{make([]byte, 10), make([]byte, 10), make([]byte, 10)}
	}

	vec := advance(mk(), 0)
	if got := countBytes(vec); got != 30 {
		t.Errorf("advance by 0 left %d bytes, want 30", got)
	}

	vec = advance(mk(), 10)
	if len(vec) != 2 || countBytes(vec) != 20 {
		t.Errorf("advance by 10: %d vecs / %d bytes, want 2 / 20", len(vec), countBytes(vec))
	}

	vec = advance(mk(), 15)
	if len(vec) != 2 || countBytes(vec) != 15 || len(vec[0]) != 5 {
		t.Errorf("advance by 15: %d vecs / %d bytes, want 2 / 15 with 5-byte head", len(vec), countBytes(vec))
	}

	vec = advance(mk(), 30)
	if len(vec) != 0 {
		t.Errorf("advance by 30 left %d vecs, want 0", len(vec))
	}
}

func countBytes(vec [][]byte) int {
	n := 0
	for _, b := range vec {
		n += len(b)
	}
	return n
}

func TestClassify(t *testing.T) {
	for _, err := range []error{io.EOF, syscall.EPIPE, syscall.ECONNRESET, net.ErrClosed} {
		if got := classify(err); !errors.Is(got, api.ErrClosed) {
			t.Errorf("classify(%v) = %v, want ErrClosed", err, got)
		}
	}
	other := errors.New("boom")
	if got := classify(other); got != other {
		t.Errorf("classify passed-through error = %v, want %v", got, other)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
}

// Every strategy must put byte-identical content on the wire.
func TestSendersRoundTrip(t *testing.T) {
	const msgSize = 256
	msg, err := message.New(msgSize, message.DefaultFields)
	if err != nil {
		t.Fatal(err)
	}
	want := message.Expected(msgSize, message.DefaultFields)

	for _, name := range []string{TwoCopy, Vectored} {
		t.Run(name, func(t *testing.T) {
			cl, sv := net.Pipe()
			defer cl.Close()
			defer sv.Close()

			var snd api.Sender
			switch name {
			case TwoCopy:
				snd = newTwoCopy(sv, msg)
			case Vectored:
				snd = newVectored(sv, msg)
			}
			if snd.Name() != name {
				t.Errorf("Name() = %q, want %q", snd.Name(), name)
			}

			got := make([]byte, msgSize)
			done := make(chan error, 1)
			go func() {
				_, err := io.ReadFull(cl, got)
				done <- err
			}()

			n, err := snd.Send()
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if n != msgSize {
				t.Errorf("Send wrote %d bytes, want %d", n, msgSize)
			}
			if err := <-done; err != nil {
				t.Fatalf("receive: %v", err)
			}
			if !msg.Verify(got) {
				t.Error("received content differs from message fields")
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
				}
			}
			if err := snd.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
}

// A send against a hung-up peer reports ErrClosed, not a generic error.
func TestSendReportsPeerClose(t *testing.T) {
	msg, err := message.New(64, message.DefaultFields)
	if err != nil {
		t.Fatal(err)
	}
	cl, sv := net.Pipe()
	cl.Close()
	defer sv.Close()

	snd := newTwoCopy(sv, msg)
	if _, err := snd.Send(); !errors.Is(err, api.ErrClosed) {
		t.Errorf("Send after peer close = %v, want ErrClosed", err)
	}
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	msg, err := message.New(64, message.DefaultFields)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New("warp", nil, msg, zap.NewNop()); err == nil {
		t.Error("New accepted unknown strategy name")
	}
}
