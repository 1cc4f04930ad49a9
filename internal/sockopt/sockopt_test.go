package sockopt_test

import (
	"errors"
	"net"
	"testing"

	"github.com/sendpath/sendpath/api"
	"github.com/sendpath/sendpath/internal/sockopt"
)

func TestTuneClientConnRequiresTCP(t *testing.T) {
	cl, sv := net.Pipe()
	defer cl.Close()
	defer sv.Close()
	if err := sockopt.TuneClientConn(cl); !errors.Is(err, api.ErrNotSupported) {
		t.Errorf("TuneClientConn(pipe) = %v, want ErrNotSupported", err)
	}
}

func TestTuneClientConnTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := sockopt.TuneClientConn(conn); err != nil {
		t.Errorf("TuneClientConn(tcp) = %v", err)
	}
}
