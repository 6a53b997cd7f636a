// Package platform wraps the desktop notification service of each operating
// system.
package platform

import "time"

// AppName identifies labelkit to notification centers.
const AppName = "labelkit"

// DefaultTimeout is how long a notification stays visible when the platform
// lets the sender choose.
const DefaultTimeout = 5 * time.Second

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Timeout overrides DefaultTimeout. Zero keeps the default.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}
