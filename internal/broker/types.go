package broker

import (
	"errors"
	"time"
)

// ErrWakeup is returned by Poll when the wait was interrupted by a shutdown
// request. It is an expected status, not a fault.
var ErrWakeup = errors.New("broker: poll interrupted by wakeup")

// Record is one entry read from a topic partition
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Tombstone reports whether the record marks its key as deleted
func (r Record) Tombstone() bool {
	return r.Value == nil
}

// Partition identifies a topic partition
type Partition struct {
	Topic     string
	Partition int32
}

// RebalanceListener is notified when the group coordinator changes the
// consumer's assignment. Callbacks run on the polling goroutine.
type RebalanceListener interface {
	PartitionsAssigned(partitions []Partition) error
	PartitionsRevoked(partitions []Partition) error
}
