// Package seat acquires DRM device file descriptors through the logind
// session, so an unprivileged user in a seat can take DRM master
// without root. This is the same mechanism compositors use via libseat.
package seat

import (
	"fmt"
	"os"

	"github.com/dwlr/dpms/internal/logger"
	"github.com/godbus/dbus/v5"
	"golang.org/x/sys/unix"
)

const (
	login1Service = "org.freedesktop.login1"
	login1Path    = "/org/freedesktop/login1"
	managerIface  = "org.freedesktop.login1.Manager"
	sessionIface  = "org.freedesktop.login1.Session"
)

// Session is a logind session with device control taken.
type Session struct {
	conn    *dbus.Conn
	session dbus.BusObject

	major uint32
	minor uint32
	taken bool
}

// Open connects to the system bus, resolves the caller's logind session
// and takes device control over it.
func Open() (*Session, error) {
	// A private connection: the daemon holds it for its whole lifetime
	// and closing it must not tear down a shared bus handle.
	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("connecting to system bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticating to system bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("system bus hello: %w", err)
	}

	manager := conn.Object(login1Service, login1Path)

	var sessionPath dbus.ObjectPath
	call := manager.Call(managerIface+".GetSessionByPID", 0, uint32(os.Getpid()))
	if err := call.Store(&sessionPath); err != nil {
		return nil, fmt.Errorf("resolving logind session: %w", err)
	}

	s := &Session{
		conn:    conn,
		session: conn.Object(login1Service, sessionPath),
	}

	if err := s.session.Call(sessionIface+".TakeControl", 0, false).Err; err != nil {
		return nil, fmt.Errorf("taking session control: %w", err)
	}

	logger.Debugf("took control of logind session %s", sessionPath)
	return s, nil
}

// TakeDevice asks logind for an open fd on the device node. For DRM
// primary nodes the fd carries master when the session is active.
func (s *Session) TakeDevice(path string) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return -1, fmt.Errorf("stat %s: %w", path, err)
	}
	major := unix.Major(st.Rdev)
	minor := unix.Minor(st.Rdev)

	var fd dbus.UnixFD
	var inactive bool
	call := s.session.Call(sessionIface+".TakeDevice", 0, major, minor)
	if err := call.Store(&fd, &inactive); err != nil {
		return -1, fmt.Errorf("taking device %s: %w", path, err)
	}
	if inactive {
		logger.Warnf("device %s taken while session inactive", path)
	}

	s.major = major
	s.minor = minor
	s.taken = true
	return int(fd), nil
}

// Close releases the taken device and session control. The DRM fd
// itself is owned by the caller and closed separately.
func (s *Session) Close() error {
	if s.session != nil {
		if s.taken {
			if err := s.session.Call(sessionIface+".ReleaseDevice", 0, s.major, s.minor).Err; err != nil {
				logger.Debugf("releasing device: %v", err)
			}
			s.taken = false
		}
		if err := s.session.Call(sessionIface+".ReleaseControl", 0).Err; err != nil {
			logger.Debugf("releasing session control: %v", err)
		}
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
