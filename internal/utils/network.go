package utils

import (
	"fmt"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientIPKey is the gin context key holding the address resolved by ProxyResolver
const ClientIPKey = "client_ip"

// ProxyResolver works out the client address of a request.
// Forwarding headers are honoured only when the connecting peer is a trusted proxy.
type ProxyResolver struct {
	trusted []*net.IPNet
}

// NewProxyResolver accepts single addresses or CIDR ranges
func NewProxyResolver(proxies []string) (*ProxyResolver, error) {
	trusted := make([]*net.IPNet, 0, len(proxies))
	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if !strings.Contains(proxy, "/") {
			ip := net.ParseIP(proxy)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", proxy)
			}
			bits := 8 * net.IPv4len
			if ip.To4() == nil {
				bits = 8 * net.IPv6len
			}
			trusted = append(trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, subnet, err := net.ParseCIDR(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", proxy, err)
		}
		trusted = append(trusted, subnet)
	}
	return &ProxyResolver{trusted: trusted}, nil
}

// Resolve returns the client address of the request.
//
// Priority order when the peer is a trusted proxy:
// 1. The right-most X-Forwarded-For entry that is not itself a trusted proxy
// 2. X-Real-IP (set by reverse proxies like Nginx)
// 3. The peer address
//
// Any other peer is taken as the client, whatever headers it sends.
func (r *ProxyResolver) Resolve(c *gin.Context) string {
	remote := c.RemoteIP()
	if !r.isTrusted(net.ParseIP(remote)) {
		return remote
	}

	// Format: X-Forwarded-For: client, proxy1, proxy2
	if forwarded := c.Request.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip, ok := r.fromForwardedFor(forwarded); ok {
			return ip
		}
		return remote
	}

	if realIP := strings.TrimSpace(c.Request.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}

	return remote
}

// fromForwardedFor walks the chain from the nearest hop outwards.
// A malformed hop means nothing before it can be trusted.
func (r *ProxyResolver) fromForwardedFor(header string) (string, bool) {
	entries := strings.Split(header, ",")
	for i := len(entries) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(entries[i])
		ip := net.ParseIP(candidate)
		if ip == nil {
			return "", false
		}
		if !r.isTrusted(ip) || i == 0 {
			return candidate, true
		}
	}
	return "", false
}

func (r *ProxyResolver) isTrusted(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, subnet := range r.trusted {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}

// GetRealIP returns the address stored by the client IP middleware, or the peer address
func GetRealIP(c *gin.Context) string {
	if ip := c.GetString(ClientIPKey); ip != "" {
		return ip
	}
	return c.RemoteIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if ua == "" {
		return "Unknown"
	}
	return ua
}
