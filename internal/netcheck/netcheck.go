// Package netcheck answers one question: can we reach the internet right now?
package netcheck

import (
	"net"
	"time"
)

// Public DNS resolvers, probed on the TCP port to avoid needing any payload.
var probeAddrs = []string{"8.8.8.8:53", "1.1.1.1:53"}

const probeTimeout = 3 * time.Second

var dialTimeout = func(addr string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

// Online reports whether at least one public resolver answers.
func Online() bool {
	for _, addr := range probeAddrs {
		if err := dialTimeout(addr, probeTimeout); err == nil {
			return true
		}
	}
	return false
}
