// Package ipchecker extracts client IP addresses from HTTP requests and
// validates them against a trusted subnet. It guards the internal stats
// endpoint.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether a request originates from the trusted subnet.
// With no subnet configured every check fails, so the guarded endpoint is
// effectively disabled.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the subnet given in CIDR notation
// (e.g. "192.168.1.0/24"). An empty string disables the checker.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the trusted subnet: %w", err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// Check reports whether the IP belongs to the trusted subnet. It is false
// whenever no subnet is configured.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && checker.trustedSubnet.Contains(clientIP)
}

// IsTrustedSubnetEmpty reports whether the checker was initialized without
// a trusted subnet.
func (checker *IPChecker) IsTrustedSubnetEmpty() bool {
	return checker.trustedSubnet == nil
}

// GetClientIP extracts the client's IP address from the request, consulting
// the X-Real-IP header, the X-Forwarded-For header and finally RemoteAddr.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip, nil
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return net.ParseIP(first), nil
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to split the remote address: %w", err)
	}

	return net.ParseIP(host), nil
}
