// File: internal/sendstrat/rawsock_linux.go
//go:build linux

// License: Apache-2.0
//
// rawSock implementation over a connected TCP socket's syscall.RawConn.
// Gathering sends go through unix.SendmsgBuffers; completion ranges are
// read from the MSG_ERRQUEUE side channel and parsed out of the
// sock_extended_err control message.

package sendstrat

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sendpath/sendpath/api"
)

type tcpRaw struct {
	rc     syscall.RawConn
	p      [1]byte
	oob    [256]byte
	ranges [][2]uint32 // parsed completion ranges not yet consumed
}

func (r *tcpRaw) SendBuffers(bufs [][]byte, flags int) (int, error) {
	var n int
	var serr error
	err := r.rc.Write(func(fd uintptr) bool {
		n, serr = unix.SendmsgBuffers(int(fd), bufs, nil, nil, flags|unix.MSG_DONTWAIT)
		// EAGAIN means the socket buffer is full: park until writable.
		return !(serr == unix.EAGAIN || serr == unix.EWOULDBLOCK)
	})
	if err != nil {
		return 0, err
	}
	if serr == unix.ENOBUFS {
		// Too many zero-copy buffers still pinned by the kernel.
		return n, api.ErrBackpressure
	}
	return n, serr
}

func (r *tcpRaw) SetZeroCopy() error {
	var serr error
	if err := r.rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_ZEROCOPY, 1)
	}); err != nil {
		return err
	}
	return serr
}

func (r *tcpRaw) NextCompletion() (lo, hi uint32, ok bool, err error) {
	if len(r.ranges) == 0 {
		if err := r.fill(); err != nil {
			return 0, 0, false, err
		}
	}
	if len(r.ranges) == 0 {
		return 0, 0, false, nil
	}
	rg := r.ranges[0]
	r.ranges = r.ranges[1:]
	return rg[0], rg[1], true, nil
}

// fill performs one non-blocking error-queue read and queues any
// zero-copy completion ranges found in it.
func (r *tcpRaw) fill() error {
	var oobn int
	var rerr error
	cerr := r.rc.Control(func(fd uintptr) {
		_, oobn, _, _, rerr = unix.Recvmsg(int(fd), r.p[:], r.oob[:],
			unix.MSG_ERRQUEUE|unix.MSG_DONTWAIT)
	})
	if cerr != nil {
		return cerr
	}
	if rerr != nil {
		if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK {
			return nil // queue empty
		}
		return rerr
	}
	if oobn == 0 {
		return nil
	}
	cmsgs, err := unix.ParseSocketControlMessage(r.oob[:oobn])
	if err != nil {
		return err
	}
	for _, cm := range cmsgs {
		if !isRecvErr(cm.Header) || len(cm.Data) < int(unsafe.Sizeof(unix.SockExtendedErr{})) {
			continue
		}
		ee := (*unix.SockExtendedErr)(unsafe.Pointer(&cm.Data[0]))
		if ee.Origin != unix.SO_EE_ORIGIN_ZEROCOPY {
			continue
		}
		// ee_info..ee_data is the inclusive range of completed sends.
		r.ranges = append(r.ranges, [2]uint32{ee.Info, ee.Data})
	}
	return nil
}

func isRecvErr(h unix.Cmsghdr) bool {
	return (h.Level == unix.SOL_IP && h.Type == unix.IP_RECVERR) ||
		(h.Level == unix.SOL_IPV6 && h.Type == unix.IPV6_RECVERR)
}
