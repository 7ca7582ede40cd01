// Package privacy reduces client metadata to coarse, non-identifying values
// before it reaches logs or the audit trail.
package privacy

import (
	"fmt"
	"net"
	"strings"

	"github.com/mssola/useragent"
)

// AnonymizeIP truncates an IP address to its network prefix: /24 for IPv4
// and /48 for IPv6. Returns "invalid" for unparseable input and "unknown"
// for empty input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// Device classes recorded for validation checkpoints.
const (
	DeviceUnknown = "unknown"
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
)

// DeviceClass collapses a User-Agent header into a device class plus the
// lowercased OS family, e.g. "mobile/android". Browser versions are dropped.
func DeviceClass(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return DeviceUnknown
	}
	ua := useragent.New(userAgent)

	class := DeviceDesktop
	switch {
	case ua.Bot():
		class = DeviceBot
	case ua.Mobile():
		class = DeviceMobile
	}

	osName := strings.ToLower(strings.TrimSpace(ua.OS()))
	if osName == "" {
		return class
	}
	if i := strings.IndexAny(osName, " ;"); i > 0 {
		osName = osName[:i]
	}
	return class + "/" + osName
}
