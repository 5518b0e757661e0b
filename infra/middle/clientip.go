package middle

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseNetworks parses a comma separated list of IPs and CIDR ranges. A bare IP is a
// single address range. Blank and invalid entries are skipped.
func ParseNetworks(list string) []netip.Prefix {
	var networks []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			if prefix, err := netip.ParsePrefix(entry); err == nil {
				networks = append(networks, prefix.Masked())
			}
			continue
		}

		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			networks = append(networks, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return networks
}

func containsAddr(networks []netip.Prefix, addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, network := range networks {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}

// GetClientIP returns the client address of r. Forwarding headers are never read here:
// they only count once TrustedProxyMiddleware has accepted them into RemoteAddr.
func GetClientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	if addr.IsLoopback() && addr.Is6() {
		return "127.0.0.1"
	}
	return addr.Unmap().String()
}

// TrustedProxyMiddleware honors X-Forwarded-For and X-Real-IP only on requests that arrive
// from one of trustedProxies. X-Forwarded-For is read right to left and the first hop that
// is not a trusted proxy becomes the client address. Without trusted proxies the middleware
// does nothing.
func TrustedProxyMiddleware(trustedProxies []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(trustedProxies) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			peer, err := netip.ParseAddr(GetClientIP(r))
			if err != nil || !containsAddr(trustedProxies, peer) {
				next.ServeHTTP(w, r)
				return
			}

			if client, ok := forwardedClient(r, trustedProxies); ok {
				r.RemoteAddr = net.JoinHostPort(client.String(), "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trustedProxies []netip.Prefix) (netip.Addr, bool) {
	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(value, ",")...)
	}

	var leftmost netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		addr = addr.Unmap()
		if !containsAddr(trustedProxies, addr) {
			return addr, true
		}
		leftmost = addr
	}
	if leftmost.IsValid() {
		return leftmost, true
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}
