package offsets

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AppendOffsetCommitKey appends the wire form of an offset commit key to dst
func AppendOffsetCommitKey(dst []byte, version int16, group, topic string, partition int32) ([]byte, error) {
	if version != VersionOffsetCommitV0 && version != VersionOffsetCommitV1 {
		return nil, fmt.Errorf("version %d is not an offset commit key version", version)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(version))
	dst, err := appendString(dst, group)
	if err != nil {
		return nil, err
	}
	if dst, err = appendString(dst, topic); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint32(dst, uint32(partition)), nil
}

// AppendGroupMetadataKey appends the wire form of a group metadata key to dst
func AppendGroupMetadataKey(dst []byte, group string) ([]byte, error) {
	dst = binary.BigEndian.AppendUint16(dst, uint16(VersionGroupMetadataV2))
	return appendString(dst, group)
}

func appendString(dst []byte, s string) ([]byte, error) {
	if len(s) > math.MaxInt16 {
		return nil, fmt.Errorf("string of %d bytes exceeds maximum %d", len(s), math.MaxInt16)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}
