package httpx

import (
	"net"
	"strconv"
	"strings"
)

// advertised makes the host:port that clients dial to reach a server bound
// to address and listening on port.
// Wildcard hosts become localhost and the default port of the protocol is
// left out, so :8080 on port 8081 is localhost:8081 and 0.0.0.0:443 with
// HTTPS is localhost.
func advertised(address string, port int, https bool) string {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	switch strings.Trim(host, "[]") {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}

	def := 80
	if https {
		def = 443
	}
	if port <= 0 || port == def {
		if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil && ip.To4() == nil {
			return "[" + ip.String() + "]"
		}
		return host
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}

// URL is the full address of path on the server.
func (s *Server) URL(path string) string {
	return s.GetProtocol() + "://" + s.Addr + s.opts.Prefix + path
}
