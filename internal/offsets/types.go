package offsets

import "fmt"

// Topic is the broker's internal log of committed consumer offsets
const Topic = "__consumer_offsets"

// Key schema versions
const (
	VersionOffsetCommitV0  int16 = 0
	VersionOffsetCommitV1  int16 = 1
	VersionGroupMetadataV2 int16 = 2
)

// Key is a decoded offsets topic record key. The concrete type is one of
// OffsetCommitKey, GroupMetadataKey or UnknownKey.
type Key interface {
	// SchemaVersion returns the version tag the key was decoded with
	SchemaVersion() int16
	isKey()
}

// OffsetCommitKey identifies a committed offset: which group committed for
// which topic partition
type OffsetCommitKey struct {
	Version   int16
	Group     string
	Topic     string
	Partition int32
}

// GroupMetadataKey identifies a group membership record. It carries no topic.
type GroupMetadataKey struct {
	Version int16
	Group   string
}

// UnknownKey is returned for version tags this decoder does not handle.
// Newer brokers may add schemas, so it is not treated as an error.
type UnknownKey struct {
	Version int16
}

func (k OffsetCommitKey) SchemaVersion() int16  { return k.Version }
func (k GroupMetadataKey) SchemaVersion() int16 { return k.Version }
func (k UnknownKey) SchemaVersion() int16       { return k.Version }

func (OffsetCommitKey) isKey()  {}
func (GroupMetadataKey) isKey() {}
func (UnknownKey) isKey()       {}

func (k OffsetCommitKey) String() string {
	return fmt.Sprintf("offset-commit v%d group=%q topic=%q partition=%d", k.Version, k.Group, k.Topic, k.Partition)
}

func (k GroupMetadataKey) String() string {
	return fmt.Sprintf("group-metadata v%d group=%q", k.Version, k.Group)
}

func (k UnknownKey) String() string {
	return fmt.Sprintf("unknown v%d", k.Version)
}
