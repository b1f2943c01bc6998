package offsets

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// DecodeKey decodes an offsets topic record key.
//
// Key structure:
//
//	[2] version, int16 big endian
//	[2] group length, int16 big endian
//	[^] group
//	if version is 0 or 1 {
//	    [2] topic length, int16 big endian
//	    [^] topic
//	    [4] partition, int32 big endian
//	}
//
// Bytes after the last field are ignored. DecodeKey never panics; malformed
// input yields a *DecodeError.
func DecodeKey(key []byte) (Key, error) {
	r := &reader{data: key}

	version, err := r.readInt16("version")
	if err != nil {
		return nil, err
	}

	switch version {
	case VersionOffsetCommitV0, VersionOffsetCommitV1:
		k := OffsetCommitKey{Version: version}
		if k.Group, err = r.readString("group"); err != nil {
			return nil, err
		}
		if k.Topic, err = r.readString("topic"); err != nil {
			return nil, err
		}
		if k.Partition, err = r.readInt32("partition"); err != nil {
			return nil, err
		}
		return k, nil
	case VersionGroupMetadataV2:
		k := GroupMetadataKey{Version: version}
		if k.Group, err = r.readString("group"); err != nil {
			return nil, err
		}
		return k, nil
	default:
		return UnknownKey{Version: version}, nil
	}
}

// reader is a bounds-checked cursor over a key
type reader struct {
	data []byte
	pos  int
}

func (r *reader) need(field string, n int) error {
	if len(r.data)-r.pos < n {
		return &DecodeError{
			Field:  field,
			Offset: r.pos,
			Reason: fmt.Sprintf("need %d bytes, have %d", n, len(r.data)-r.pos),
		}
	}
	return nil
}

func (r *reader) readInt16(field string) (int16, error) {
	if err := r.need(field, 2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(r.data[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *reader) readInt32(field string) (int32, error) {
	if err := r.need(field, 4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *reader) readString(field string) (string, error) {
	start := r.pos
	n, err := r.readInt16(field + " length")
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &DecodeError{Field: field, Offset: start, Reason: fmt.Sprintf("negative length %d", n)}
	}
	if err := r.need(field, int(n)); err != nil {
		return "", err
	}
	b := r.data[r.pos : r.pos+int(n)]
	if !utf8.Valid(b) {
		return "", &DecodeError{Field: field, Offset: r.pos, Reason: "invalid utf-8"}
	}
	r.pos += int(n)
	return string(b), nil
}
