//go:build linux

package sendstrat

import (
	"errors"
	"io"
	"net"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/message"
)

// fakeRaw scripts the kernel side of the zero-copy protocol: it numbers
// sends, refuses them with backpressure past a pinned-buffer limit, and
// acknowledges all outstanding sends as one range per drain read.
type fakeRaw struct {
	limit       int // max outstanding sends before ENOBUFS, 0 = unlimited
	shortFirst  bool
	outstanding []uint32
	next        uint32
	sentBytes   int
	sendCalls   int
	enobufs     int
	zcErr       error
}

func (f *fakeRaw) SendBuffers(bufs [][]byte, flags int) (int, error) {
	f.sendCalls++
	if flags&unix.MSG_ZEROCOPY == 0 {
		return 0, errors.New("fakeRaw: missing MSG_ZEROCOPY flag")
	}
	if f.limit > 0 && len(f.outstanding) >= f.limit {
		f.enobufs++
		return 0, api.ErrBackpressure
	}
	n := 0
	for _, b := range bufs {
		n += len(b)
	}
	if f.shortFirst && f.sendCalls == 1 {
		n /= 2
	}
	f.outstanding = append(f.outstanding, f.next)
	f.next++
	f.sentBytes += n
	return n, nil
}

func (f *fakeRaw) NextCompletion() (uint32, uint32, bool, error) {
	if len(f.outstanding) == 0 {
		return 0, 0, false, nil
	}
	lo := f.outstanding[0]
	hi := f.outstanding[len(f.outstanding)-1]
	f.outstanding = f.outstanding[:0]
	return lo, hi, true, nil
}

func (f *fakeRaw) SetZeroCopy() error { return f.zcErr }

func newTestMessage(t *testing.T) *message.Message {
	t.Helper()
	msg, err := message.New(800, message.DefaultFields)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestZeroCopySendAndDrainCadence(t *testing.T) {
	msg := newTestMessage(t)
	raw := &fakeRaw{}
	snd := newZeroCopyWithRaw(raw, nil, msg, zap.NewNop()).(*zeroCopySender)

	for i := 0; i < drainInterval; i++ {
		n, err := snd.Send()
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if n != msg.Size() {
			t.Fatalf("send %d wrote %d bytes, want %d", i, n, msg.Size())
		}
	}
	// The periodic drain on send 64 must have consumed the backlog.
	if out := snd.comp.outstanding(); out != 0 {
		t.Errorf("outstanding after periodic drain = %d, want 0", out)
	}
	if raw.sentBytes != drainInterval*msg.Size() {
		t.Errorf("fake saw %d bytes, want %d", raw.sentBytes, drainInterval*msg.Size())
	}
}

func TestZeroCopyBackpressureMakesProgress(t *testing.T) {
	msg := newTestMessage(t)
	raw := &fakeRaw{limit: 2}
	snd := newZeroCopyWithRaw(raw, nil, msg, zap.NewNop()).(*zeroCopySender)

	const sends = 20
	for i := 0; i < sends; i++ {
		n, err := snd.Send()
		if err != nil {
			t.Fatalf("send %d under backpressure: %v", i, err)
		}
		if n != msg.Size() {
			t.Fatalf("send %d wrote %d bytes, want %d", i, n, msg.Size())
		}
	}
	if raw.enobufs == 0 {
		t.Error("fake never signalled ENOBUFS; backpressure path untested")
	}
	if raw.sentBytes != sends*msg.Size() {
		t.Errorf("fake saw %d bytes, want %d", raw.sentBytes, sends*msg.Size())
	}
}

func TestZeroCopyResumesShortSend(t *testing.T) {
	msg := newTestMessage(t)
	raw := &fakeRaw{shortFirst: true}
	snd := newZeroCopyWithRaw(raw, nil, msg, zap.NewNop()).(*zeroCopySender)

	n, err := snd.Send()
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != msg.Size() {
		t.Errorf("Send returned %d, want full %d", n, msg.Size())
	}
	if raw.sendCalls < 2 {
		t.Errorf("short first write resumed in %d calls, want >= 2", raw.sendCalls)
	}
	if raw.sentBytes != msg.Size() {
		t.Errorf("fake saw %d bytes, want %d", raw.sentBytes, msg.Size())
	}
}

func TestZeroCopyFinalDrainOnClose(t *testing.T) {
	msg := newTestMessage(t)
	raw := &fakeRaw{}
	snd := newZeroCopyWithRaw(raw, nil, msg, zap.NewNop()).(*zeroCopySender)

	for i := 0; i < 5; i++ {
		if _, err := snd.Send(); err != nil {
			t.Fatal(err)
		}
	}
	if out := snd.comp.outstanding(); out != 5 {
		t.Fatalf("outstanding before close = %d, want 5", out)
	}
	if err := snd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if out := snd.comp.outstanding(); out != 0 {
		t.Errorf("outstanding after close = %d, want 0", out)
	}
}

// failingRaw serves one completion range, then fails every further
// error-queue read.
type failingRaw struct {
	served bool
}

func (f *failingRaw) SendBuffers(bufs [][]byte, flags int) (int, error) { return 0, nil }
func (f *failingRaw) SetZeroCopy() error                                { return nil }

func (f *failingRaw) NextCompletion() (uint32, uint32, bool, error) {
	if f.served {
		return 0, 0, false, errors.New("error queue read failed")
	}
	f.served = true
	return 0, 1, true, nil
}

func TestDrainCountsCompletionsBeforeError(t *testing.T) {
	c := newCompletions(&failingRaw{})
	c.expect()
	c.expect()

	before := completionsTotal.Get()
	acked, err := c.drain()
	if err == nil {
		t.Fatal("drain swallowed the error-queue failure")
	}
	if acked != 2 {
		t.Errorf("acked = %d, want 2", acked)
	}
	if got := completionsTotal.Get() - before; got != 2 {
		t.Errorf("completions counter advanced by %d, want 2", got)
	}
	if out := c.outstanding(); out != 0 {
		t.Errorf("outstanding = %d, want 0", out)
	}
}

func TestZeroCopyDegradesWhenUnsupported(t *testing.T) {
	msg := newTestMessage(t)
	cl, sv := net.Pipe()
	defer cl.Close()
	defer sv.Close()

	raw := &fakeRaw{zcErr: unix.EOPNOTSUPP}
	snd := newZeroCopyWithRaw(raw, sv, msg, zap.NewNop())

	got := make([]byte, msg.Size())
	done := make(chan error, 1)
	go func() {
		_, err := io.ReadFull(cl, got)
		done <- err
	}()

	n, err := snd.Send()
	if err != nil {
		t.Fatalf("degraded Send: %v", err)
	}
	if n != msg.Size() {
		t.Errorf("degraded Send wrote %d, want %d", n, msg.Size())
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !msg.Verify(got) {
		t.Error("degraded path corrupted message content")
	}
	if raw.sendCalls != 0 {
		t.Errorf("degraded path still used the raw socket (%d calls)", raw.sendCalls)
	}
}
