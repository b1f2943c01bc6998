package broker

import "fmt"

// UnreachableError indicates a bootstrap address that did not accept a TCP connection
type UnreachableError struct {
	Addr string
	Err  error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("broker %s is not reachable: %v", e.Addr, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// InvalidAddressError indicates a bootstrap address that is not host:port
type InvalidAddressError struct {
	Addr string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid broker address %q: expected host:port", e.Addr)
}

// ClientError indicates a fatal condition reported by the Kafka client
type ClientError struct {
	Op  string
	Err error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("kafka %s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
