// Package notify schedules and delivers timer notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Notifier = (*CLINotifier)(nil)
	_ domain.Notifier = (*ChimeNotifier)(nil)
)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier writes notifications to stdout with ANSI formatting.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLINotifier creates a stdout-based notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{log: log, printFn: printFn}
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s%s%s%s", cyan, bold, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}

// Chimer plays a short sound.
type Chimer interface {
	Chime() error
}

// ChimeNotifier plays a chime for urgent notifications before handing
// them to the wrapped notifier.
type ChimeNotifier struct {
	next  domain.Notifier
	chime Chimer
	log   *logger.Logger
}

// NewChimeNotifier wraps next.
func NewChimeNotifier(next domain.Notifier, chime Chimer, log *logger.Logger) *ChimeNotifier {
	return &ChimeNotifier{next: next, chime: chime, log: log}
}

// Notify passes the message through.
func (n *ChimeNotifier) Notify(ctx context.Context, message string) error {
	return n.next.Notify(ctx, message)
}

// NotifyUrgent chimes, then passes the message through. A failed chime
// does not stop delivery.
func (n *ChimeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.chime.Chime(); err != nil {
		n.log.Warn("chime: %v", err)
	}
	return n.next.NotifyUrgent(ctx, message)
}
