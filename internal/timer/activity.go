package timer

import (
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Activity tells the audio keep-alive driver whether any timer is running.
// The driver is only called on edges.
type Activity struct {
	driver domain.AudioKeepAlive
	log    *logger.Logger
	active bool
}

// NewActivity creates a tracker in the inactive state. driver may be nil.
func NewActivity(driver domain.AudioKeepAlive, log *logger.Logger) *Activity {
	return &Activity{driver: driver, log: log}
}

// Set records whether any timer is running, signalling the driver when
// that changes.
func (a *Activity) Set(running bool) {
	if running == a.active {
		return
	}
	a.active = running
	a.log.Debug("timer activity: %v", running)
	if a.driver != nil {
		a.driver.SetActive(running)
	}
}

// Active reports the last signalled state.
func (a *Activity) Active() bool {
	return a.active
}
