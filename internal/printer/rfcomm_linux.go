//go:build linux

package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// SocketDialer connects with a raw RFCOMM socket
type SocketDialer struct {
	Channel int
}

// pollInterval bounds how long a cancelled dial keeps waiting
const pollInterval = 100 * time.Millisecond

// Dial implements Dialer. The connect runs non-blocking so cancelling ctx
// abandons the handshake.
func (d SocketDialer) Dial(ctx context.Context, dev BluetoothDevice) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr, err := parseBDAddr(dev.MAC)
	if err != nil {
		return nil, err
	}

	channel := d.Channel
	if channel <= 0 {
		channel = DefaultChannel
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("create rfcomm socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: uint8(channel)}
	if err := connectNonblock(ctx, fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rfcomm connect %s channel %d: %w", dev.MAC, channel, err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return os.NewFile(uintptr(fd), "rfcomm:"+dev.MAC), nil
}

func connectNonblock(ctx context.Context, fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.EINPROGRESS) {
		return err
	}
	if err := pollWritable(ctx, fd); err != nil {
		return err
	}
	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return err
	}
	if soErr != 0 {
		return unix.Errno(soErr)
	}
	return nil
}

// pollWritable waits until fd is writable or ctx is done
func pollWritable(ctx context.Context, fd int) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, int(pollInterval/time.Millisecond))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 && fds[0].Revents != 0 {
			return nil
		}
	}
}

// parseBDAddr converts "AA:BB:CC:DD:EE:FF" to the little-endian form the
// kernel expects.
func parseBDAddr(mac string) ([6]uint8, error) {
	var b [6]uint8
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return b, fmt.Errorf("invalid bluetooth address %q: %w", mac, err)
	}
	if len(hw) != 6 {
		return b, fmt.Errorf("invalid bluetooth address %q", mac)
	}
	for i := 0; i < 6; i++ {
		b[i] = hw[5-i]
	}
	return b, nil
}

// probeRFCOMM reports whether this process may open RFCOMM sockets
func probeRFCOMM() error {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return err
	}
	return unix.Close(fd)
}
