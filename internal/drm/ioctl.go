package drm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux ioctl request encoding (asm-generic/ioctl.h).
const (
	iocWrite uintptr = 1
	iocRead  uintptr = 2

	iocNrShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	// DRM_IOCTL_BASE
	drmIoctlType uintptr = 'd'
)

func drmIO(nr uintptr) uintptr {
	return drmIoctlType<<iocTypeShift | nr<<iocNrShift
}

func drmIOW(nr, size uintptr) uintptr {
	return iocWrite<<iocDirShift | size<<iocSizeShift | drmIoctlType<<iocTypeShift | nr<<iocNrShift
}

func drmIOWR(nr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift | size<<iocSizeShift | drmIoctlType<<iocTypeShift | nr<<iocNrShift
}

// ioctl retries on EINTR, which the kernel returns freely for DRM calls
// interrupted by signals.
func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		if errno == 0 {
			return nil
		}
		if errno != unix.EINTR {
			return errno
		}
	}
}
