package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP resolves the client address used for rate-limit keys (context key
// "real_ip"). CF-Connecting-IP wins over the left-most X-Forwarded-For hop;
// both must parse as an IP or the framework's ClientIP is used instead.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := headerIP(c.GetHeader("CF-Connecting-IP"))
		if ip == "" {
			ip = headerIP(firstForwarded(c.GetHeader("X-Forwarded-For")))
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func headerIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	return ip.String()
}

func firstForwarded(xff string) string {
	if xff == "" {
		return ""
	}
	return strings.SplitN(xff, ",", 2)[0]
}
