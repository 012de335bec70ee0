//go:build linux && !baremetal

package platform

import (
	"bytes"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"rtcnode-go/drivers/ab1805"
)

var _ ab1805.SystemClock = (*sysClock)(nil)

// sysClock is the kernel wall clock. It counts as valid once NTP has
// synchronised it or once it has been set from the RTC.
type sysClock struct {
	synced func() bool
	set    bool
}

func newSysClock() *sysClock { return &sysClock{synced: ntpSynchronized} }

func (c *sysClock) Now() time.Time { return time.Now() }

func (c *sysClock) Valid() bool { return c.set || c.synced() }

func (c *sysClock) Set(t time.Time) error {
	tv := unix.NsecToTimeval(t.UnixNano())
	if err := unix.Settimeofday(&tv); err != nil {
		return err
	}
	c.set = true
	return nil
}

func ntpSynchronized() bool {
	out, err := exec.Command("timedatectl").CombinedOutput()
	if err != nil {
		log.Debugf("timedatectl: %v", err)
		return false
	}
	return parseSynced(out)
}

// parseSynced understands both the old and the current timedatectl
// wording.
func parseSynced(out []byte) bool {
	return bytes.Contains(out, []byte("NTP synchronized: yes")) ||
		bytes.Contains(out, []byte("System clock synchronized: yes"))
}

// reboot is the last resort after a failed deep power down.
func reboot() {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		log.Errorf("reboot: %v", err)
	}
}
