package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"flicks/internal/domain"
)

// FingerprintInput carries the client environment characteristics the device
// fingerprint is derived from. All fields come from the player client.
type FingerprintInput struct {
	UserAgent      string `json:"user_agent" validate:"required"`
	ScreenWidth    int    `json:"screen_width"`
	ScreenHeight   int    `json:"screen_height"`
	TimezoneOffset int    `json:"timezone_offset"`
	CanvasHash     string `json:"canvas_hash"`
}

// Fingerprint derives the stable device identifier. It is a recognition
// token, not a security boundary: collisions and spoofing are tolerated.
func Fingerprint(in FingerprintInput) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%dx%d|%d|%s",
		in.UserAgent, in.ScreenWidth, in.ScreenHeight, in.TimezoneOffset, in.CanvasHash)
	return hex.EncodeToString(h.Sum(nil))
}

// DeviceInfo is the descriptive classification shown in account settings.
type DeviceInfo struct {
	Name string
	Type domain.DeviceType
}

// DeviceInfoFromUserAgent classifies a device by user-agent pattern matching.
// Order matters: TV and tablet markers appear alongside mobile markers, so
// they are checked first.
func DeviceInfoFromUserAgent(ua string) DeviceInfo {
	lower := strings.ToLower(ua)

	switch {
	case containsAny(lower, "smart-tv", "smarttv", "googletv", "appletv", "hbbtv", "netcast", "roku", "tizen", "webos"):
		return DeviceInfo{Name: tvName(lower), Type: domain.DeviceTV}
	case strings.Contains(lower, "ipad") || (strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")):
		return DeviceInfo{Name: tabletName(lower), Type: domain.DeviceTablet}
	case containsAny(lower, "iphone", "ipod", "android", "windows phone", "blackberry"):
		return DeviceInfo{Name: mobileName(lower), Type: domain.DeviceMobile}
	default:
		return DeviceInfo{Name: computerName(lower), Type: domain.DeviceComputer}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func tvName(ua string) string {
	switch {
	case strings.Contains(ua, "appletv"):
		return "Apple TV"
	case strings.Contains(ua, "roku"):
		return "Roku"
	case strings.Contains(ua, "tizen"):
		return "Samsung TV"
	case strings.Contains(ua, "webos"):
		return "LG TV"
	default:
		return "Smart TV"
	}
}

func tabletName(ua string) string {
	if strings.Contains(ua, "ipad") {
		return "iPad"
	}
	return "Android Tablet"
}

func mobileName(ua string) string {
	switch {
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "android"):
		return "Android Phone"
	default:
		return "Mobile Device"
	}
}

func computerName(ua string) string {
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows PC"
	case strings.Contains(ua, "mac os"):
		return "Mac"
	case strings.Contains(ua, "linux"):
		return "Linux PC"
	default:
		return "Computer"
	}
}
