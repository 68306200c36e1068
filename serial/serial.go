// Package serial provides raw, line-oriented access to a Linux serial port.
//
// It is built directly on termios and poll(2) rather than a buffered reader,
// so lines from the scanner head are delivered as soon as they arrive. A
// self-pipe lets Close unblock a reader that is waiting in poll.
//
// A Port is meant to have a single reading goroutine; WriteLine and Close may
// be called from any goroutine.
package serial

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrNoData means the poll timeout elapsed with no bytes available.
	// It is not a device fault; callers normally just try again.
	ErrNoData = errors.New("serial: no data available")

	// ErrClosed means the port was closed while a read was pending.
	ErrClosed = errors.New("serial: port closed")
)

// DefaultPollTimeout bounds how long ReadLine waits for bytes before
// reporting ErrNoData.
const DefaultPollTimeout = 500 * time.Millisecond

// Config holds the parameters for opening a serial port.
type Config struct {
	Device      string
	BaudRate    int           // default 115200
	Delimiter   string        // line terminator, default "\n"
	PollTimeout time.Duration // default DefaultPollTimeout
}

// Port is an open serial device.
type Port struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config

	// self-pipe, written by Close to wake a blocked poll
	pipeR int
	pipeW int

	buf     []byte
	pending string // bytes received past the last delimiter
}

// Open opens the device in cfg and configures it for raw, unbuffered
// operation at the requested baud rate.
func Open(cfg Config) (*Port, error) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\n"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8

	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baudToUnix(cfg.BaudRate)

	// VMIN=1, VTIME=0: reads return as soon as a single byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Back to blocking mode now that configuration is done; poll gates reads.
	syscall.SetNonblock(fd, false)

	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &Port{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
		buf:    make([]byte, 4096),
	}, nil
}

// ReadLine returns the next delimiter-terminated line, without the delimiter.
//
// It waits at most Config.PollTimeout for bytes and returns ErrNoData when the
// device stays silent, so a caller can keep re-checking without blocking
// forever on a disconnected head. Partial lines are buffered across calls.
// After Close, ReadLine returns ErrClosed.
func (p *Port) ReadLine() (string, error) {
	for {
		if idx := strings.Index(p.pending, p.config.Delimiter); idx >= 0 {
			line := p.pending[:idx]
			p.pending = p.pending[idx+len(p.config.Delimiter):]
			return line, nil
		}

		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(pfd, int(p.config.PollTimeout/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return "", fmt.Errorf("poll: %w", err)
		}

		select {
		case <-p.done:
			return "", ErrClosed
		default:
		}

		if n == 0 {
			return "", ErrNoData
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			var b [1]byte
			unix.Read(p.pipeR, b[:])
			return "", ErrClosed
		}
		// POLLHUP/POLLERR also fall through to the read so a device fault
		// surfaces as a read error instead of spinning in poll.
		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			rn, err := p.file.Read(p.buf)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", p.config.Device, err)
			}
			p.pending += string(p.buf[:rn])
		}
	}
}

// WriteLine writes line followed by newline to the port.
func (p *Port) WriteLine(line string, newline string) error {
	_, err := p.file.WriteString(line + newline)
	return err
}

// Close closes the port and unblocks any pending ReadLine.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		if p.pipeW > 0 {
			unix.Write(p.pipeW, []byte{1})
		}
		if p.file != nil {
			err = p.file.Close()
		}
		syscall.Close(p.fd)
		if p.pipeR > 0 {
			unix.Close(p.pipeR)
		}
		if p.pipeW > 0 {
			unix.Close(p.pipeW)
		}
	})
	return err
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	case 230400:
		return unix.B230400
	default:
		return unix.B115200 // fallback
	}
}
