package offsets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOffsetCommitKey(t *testing.T, version int16, group, topic string, partition int32) []byte {
	t.Helper()
	key, err := AppendOffsetCommitKey(nil, version, group, topic, partition)
	require.NoError(t, err)
	return key
}

func TestDecodeKey_OffsetCommit(t *testing.T) {
	for _, version := range []int16{VersionOffsetCommitV0, VersionOffsetCommitV1} {
		key := mustOffsetCommitKey(t, version, "billing", "orders", 7)

		decoded, err := DecodeKey(key)
		require.NoError(t, err)

		k, ok := decoded.(OffsetCommitKey)
		require.True(t, ok, "expected OffsetCommitKey, got %T", decoded)
		assert.Equal(t, version, k.Version)
		assert.Equal(t, "billing", k.Group)
		assert.Equal(t, "orders", k.Topic)
		assert.Equal(t, int32(7), k.Partition)
		assert.Equal(t, version, decoded.SchemaVersion())
	}
}

func TestDecodeKey_WireLayout(t *testing.T) {
	// version 1, group "g1", topic "t", partition 258
	key := []byte{
		0x00, 0x01,
		0x00, 0x02, 'g', '1',
		0x00, 0x01, 't',
		0x00, 0x00, 0x01, 0x02,
	}

	decoded, err := DecodeKey(key)
	require.NoError(t, err)
	assert.Equal(t, OffsetCommitKey{Version: 1, Group: "g1", Topic: "t", Partition: 258}, decoded)
}

func TestDecodeKey_GroupMetadata(t *testing.T) {
	key, err := AppendGroupMetadataKey(nil, "billing")
	require.NoError(t, err)

	decoded, err := DecodeKey(key)
	require.NoError(t, err)
	assert.Equal(t, GroupMetadataKey{Version: 2, Group: "billing"}, decoded)
}

func TestDecodeKey_UnknownVersion(t *testing.T) {
	for _, version := range []byte{3, 9, 0xff} {
		decoded, err := DecodeKey([]byte{0x00, version, 0xde, 0xad})
		require.NoError(t, err)
		_, ok := decoded.(UnknownKey)
		assert.True(t, ok, "version %d should decode as UnknownKey", version)
	}
}

func TestDecodeKey_Truncated(t *testing.T) {
	full := mustOffsetCommitKey(t, 1, "billing", "orders", 3)

	// Every strict prefix of a valid offset commit key is malformed
	for n := 0; n < len(full); n++ {
		decoded, err := DecodeKey(full[:n])
		require.Error(t, err, "prefix of %d bytes", n)
		assert.Nil(t, decoded)

		var decodeErr *DecodeError
		assert.ErrorAs(t, err, &decodeErr)
	}
}

func TestDecodeKey_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		key   []byte
		field string
	}{
		{
			name:  "nil key",
			key:   nil,
			field: "version",
		},
		{
			name:  "negative group length",
			key:   []byte{0x00, 0x01, 0xff, 0xff},
			field: "group",
		},
		{
			name:  "group length past end",
			key:   []byte{0x00, 0x00, 0x00, 0x10, 'a'},
			field: "group",
		},
		{
			name:  "invalid utf-8 topic",
			key:   []byte{0x00, 0x01, 0x00, 0x01, 'g', 0x00, 0x02, 0xc3, 0x28, 0x00, 0x00, 0x00, 0x00},
			field: "topic",
		},
		{
			name:  "missing partition",
			key:   []byte{0x00, 0x00, 0x00, 0x01, 'g', 0x00, 0x01, 't', 0x00},
			field: "partition",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeKey(tc.key)
			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, tc.field, decodeErr.Field)
			assert.Contains(t, err.Error(), "decode offsets key")
		})
	}
}

func TestDecodeKey_TrailingBytesIgnored(t *testing.T) {
	key := append(mustOffsetCommitKey(t, 0, "g", "t", 1), 0xca, 0xfe)

	decoded, err := DecodeKey(key)
	require.NoError(t, err)
	assert.Equal(t, OffsetCommitKey{Version: 0, Group: "g", Topic: "t", Partition: 1}, decoded)
}

func TestDecodeKey_FailureDoesNotAffectNextRecord(t *testing.T) {
	bad := []byte{0x00, 0x01, 0x00, 0x09, 'x'}
	good := mustOffsetCommitKey(t, 1, "g1", "orders", 0)

	_, err := DecodeKey(bad)
	require.Error(t, err)

	decoded, err := DecodeKey(good)
	require.NoError(t, err)
	assert.Equal(t, "orders", decoded.(OffsetCommitKey).Topic)
}

func TestAppendOffsetCommitKey_RejectsOtherVersions(t *testing.T) {
	_, err := AppendOffsetCommitKey(nil, VersionGroupMetadataV2, "g", "t", 0)
	assert.Error(t, err)
}

func TestAppendOffsetCommitKey_RejectsLongStrings(t *testing.T) {
	long := make([]byte, 1<<15)
	for i := range long {
		long[i] = 'a'
	}
	_, err := AppendOffsetCommitKey(nil, 1, string(long), "t", 0)
	assert.Error(t, err)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, `offset-commit v1 group="g" topic="t" partition=2`, OffsetCommitKey{Version: 1, Group: "g", Topic: "t", Partition: 2}.String())
	assert.Equal(t, `group-metadata v2 group="g"`, GroupMetadataKey{Version: 2, Group: "g"}.String())
	assert.Equal(t, "unknown v5", UnknownKey{Version: 5}.String())
}
