package broker

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

// SplitAddrs splits a comma separated bootstrap list, dropping blanks
func SplitAddrs(bootstrapServers string) []string {
	var addrs []string
	for _, addr := range strings.Split(bootstrapServers, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// Probe opens and closes a TCP connection to every address, each bounded by
// timeout. It fails on the first address that is malformed or unreachable.
func Probe(ctx context.Context, addrs []string, timeout time.Duration) error {
	if len(addrs) == 0 {
		return &InvalidAddressError{Addr: ""}
	}

	dialer := &net.Dialer{Timeout: timeout}
	for _, addr := range addrs {
		if err := validateAddr(addr); err != nil {
			return err
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return &UnreachableError{Addr: addr, Err: err}
		}
		_ = conn.Close()
	}

	return nil
}

func validateAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return &InvalidAddressError{Addr: addr}
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return &InvalidAddressError{Addr: addr}
	}
	return nil
}
