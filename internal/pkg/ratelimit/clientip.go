package ratelimit

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP determines the address a request is counted against.
// Proxy headers are only honoured when trustProxy is set, since clients can forge them.
func ClientIP(c *fiber.Ctx, trustProxy bool) string {
	if trustProxy {
		// 1. Cloudflare provides the original client IP
		if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
			return cfIP
		}

		// 2. X-Forwarded-For: the first entry is the original client
		if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}

		if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	// 3. Connection address; unwrap IPv4-mapped IPv6 (::ffff:192.168.1.1)
	ipAddr := c.IP()
	if strings.HasPrefix(ipAddr, "::ffff:") && strings.Contains(ipAddr, ".") {
		return strings.TrimPrefix(ipAddr, "::ffff:")
	}
	return ipAddr
}
