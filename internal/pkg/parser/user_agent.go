package parser

import "strings"

const Unknown = "Unknown"

// Client is what a user agent string tells us about the visitor.
type Client struct {
	OS      string
	Browser string
	Device  string // desktop, mobile, tablet, bot
}

func ParseClient(ua string) Client {
	os, browser := ParseUserAgent(ua)
	return Client{OS: os, Browser: browser, Device: ParseDeviceType(ua)}
}

func ParseUserAgent(ua string) (os, browser string) {
	uaLower := strings.ToLower(ua)

	// OS Detection; mobile platforms first since their UAs also mention linux/mac os
	switch {
	case strings.Contains(uaLower, "android"):
		os = "Android"
	case strings.Contains(uaLower, "iphone") || strings.Contains(uaLower, "ipad"):
		os = "iOS"
	case strings.Contains(uaLower, "windows"):
		os = "Windows"
	case strings.Contains(uaLower, "mac os"):
		os = "macOS"
	case strings.Contains(uaLower, "linux"):
		os = "Linux"
	default:
		os = Unknown
	}

	// Browser Detection
	switch {
	case strings.Contains(uaLower, "edg"):
		browser = "Edge"
	case strings.Contains(uaLower, "firefox"):
		browser = "Firefox"
	case strings.Contains(uaLower, "chrome"):
		browser = "Chrome"
	case strings.Contains(uaLower, "safari"):
		browser = "Safari"
	case strings.Contains(uaLower, "curl"):
		browser = "curl"
	default:
		browser = Unknown
	}

	return os, browser
}

// Simple device detection logic
func ParseDeviceType(ua string) string {
	ua = strings.ToLower(ua)
	if strings.Contains(ua, "bot") || strings.Contains(ua, "spider") || strings.Contains(ua, "crawl") {
		return "bot"
	}
	if strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") {
		return "tablet"
	}
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		return "mobile"
	}
	return "desktop"
}
