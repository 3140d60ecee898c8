// Package wakelock keeps the machine awake while a screen-critical view
// is open.
package wakelock

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.WakeLock = (*Inhibitor)(nil)
	_ domain.WakeLock = NoOp{}
)

// DefaultCommand blocks idle and sleep until killed.
const DefaultCommand = "systemd-inhibit --what=idle:sleep --who=ottolift --why=workout sleep infinity"

// Inhibitor holds a lock by running an inhibit command for as long as the
// lock is held.
type Inhibitor struct {
	argv []string
	log  *logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewInhibitor creates an inhibitor for the given command line. An empty
// command uses DefaultCommand.
func NewInhibitor(command string, log *logger.Logger) *Inhibitor {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &Inhibitor{argv: strings.Fields(command), log: log}
}

// Acquire starts the inhibit command. Acquiring a held lock is a no-op.
func (i *Inhibitor) Acquire(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cmd != nil {
		return nil
	}
	if _, err := exec.LookPath(i.argv[0]); err != nil {
		return fmt.Errorf("%s: %w", i.argv[0], domain.ErrCapabilityDenied)
	}

	cmd := exec.Command(i.argv[0], i.argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", i.argv[0], err)
	}
	i.cmd = cmd
	go cmd.Wait()

	i.log.Debug("wake lock acquired (pid %d)", cmd.Process.Pid)
	return nil
}

// Release stops the inhibit command. Releasing a free lock is a no-op.
func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cmd == nil {
		return nil
	}
	err := i.cmd.Process.Kill()
	i.cmd = nil
	i.log.Debug("wake lock released")
	return err
}

// Held reports whether the inhibit command is running.
func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cmd != nil
}

// NoOp is used where no wake lock is available.
type NoOp struct{}

// Acquire reports the capability as unavailable.
func (NoOp) Acquire(context.Context) error { return domain.ErrCapabilityDenied }

// Release does nothing.
func (NoOp) Release() error { return nil }
