// Package fetcher downloads article pages and extracts their body text.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// ValidateURL rejects URLs that are malformed or not http(s). With
// denyPrivateIPs it also resolves the host and rejects loopback, private,
// link-local and unspecified addresses, IPv4 and IPv6 alike. Article URLs,
// their redirect targets and listing pages all pass through here.
//
// Errors wrap ErrInvalidURL or ErrPrivateIP.
func ValidateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q not allowed (only http/https)", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	// Literal addresses skip DNS.
	if addr, err := netip.ParseAddr(host); err == nil {
		return checkAddr(host, addr)
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", ErrInvalidURL, host, err)
	}
	for _, addr := range addrs {
		if err := checkAddr(host, addr); err != nil {
			return err
		}
	}
	return nil
}

func checkAddr(host string, addr netip.Addr) error {
	if isPrivateAddr(addr) {
		return fmt.Errorf("%w: hostname %q resolves to private IP %s", ErrPrivateIP, host, addr)
	}
	return nil
}

// isPrivateAddr covers RFC 1918, RFC 4193, loopback, link-local and the
// unspecified address. IPv4-mapped IPv6 addresses are unmapped first.
func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}
