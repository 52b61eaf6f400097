// Package device maps raw user-agent strings to a coarse device category.
package device

import (
	"regexp"

	"github.com/onegateway/site-notify/internal/domain"
)

// Checked in order; the first match wins.
var (
	mobileSignals  = regexp.MustCompile(`(?i)mobile|android|iphone|ipod|blackberry|iemobile|opera mini`)
	tabletSignals  = regexp.MustCompile(`(?i)tablet|ipad`)
	desktopSignals = regexp.MustCompile(`(?i)desktop|windows|macintosh|linux`)
)

// Classify returns the device category for a user agent. It never fails:
// empty or unrecognised input yields domain.DeviceUnknown.
func Classify(userAgent string) domain.DeviceType {
	switch {
	case userAgent == "":
		return domain.DeviceUnknown
	case mobileSignals.MatchString(userAgent):
		return domain.DeviceMobile
	case tabletSignals.MatchString(userAgent):
		return domain.DeviceTablet
	case desktopSignals.MatchString(userAgent):
		return domain.DeviceDesktop
	default:
		return domain.DeviceUnknown
	}
}
