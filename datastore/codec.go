package datastore

import (
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/prefstore/prefstore/value"
)

// On-disk layout is the protobuf wire format, hand-encoded with protowire.
// The snapshot message carries a format version and repeated entry records;
// each entry carries the key, the slot kind, and exactly one typed payload
// field matching the kind. Unknown fields are skipped on decode.
const codecVersion = 1

// snapshot message fields
const (
	fieldVersion = protowire.Number(1) // varint
	fieldEntry   = protowire.Number(2) // bytes, repeated
)

// entry message fields
const (
	fieldKey     = protowire.Number(1) // bytes
	fieldKind    = protowire.Number(2) // varint
	fieldInt64   = protowire.Number(3) // varint, zigzag
	fieldString  = protowire.Number(4) // bytes
	fieldBool    = protowire.Number(5) // varint
	fieldFloat32 = protowire.Number(6) // fixed32
	fieldFloat64 = protowire.Number(7) // fixed64
)

func encodeSnapshot(entries map[slot]value.Value) []byte {
	buf := protowire.AppendTag(nil, fieldVersion, protowire.VarintType)
	buf = protowire.AppendVarint(buf, codecVersion)

	// Deterministic slot order keeps files byte-stable across commits that
	// do not change state.
	slots := make([]slot, 0, len(entries))
	for sl := range entries {
		slots = append(slots, sl)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].key != slots[j].key {
			return slots[i].key < slots[j].key
		}
		return slots[i].kind < slots[j].kind
	})

	for _, sl := range slots {
		rec := appendEntry(nil, sl, entries[sl])
		buf = protowire.AppendTag(buf, fieldEntry, protowire.BytesType)
		buf = protowire.AppendBytes(buf, rec)
	}
	return buf
}

func appendEntry(b []byte, sl slot, v value.Value) []byte {
	b = protowire.AppendTag(b, fieldKey, protowire.BytesType)
	b = protowire.AppendString(b, sl.key)
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(sl.kind))

	switch sl.kind {
	case value.KindInt64:
		b = protowire.AppendTag(b, fieldInt64, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(v.Int64()))
	case value.KindString:
		b = protowire.AppendTag(b, fieldString, protowire.BytesType)
		b = protowire.AppendString(b, v.Str())
	case value.KindBool:
		var n uint64
		if v.Bool() {
			n = 1
		}
		b = protowire.AppendTag(b, fieldBool, protowire.VarintType)
		b = protowire.AppendVarint(b, n)
	case value.KindFloat32:
		b = protowire.AppendTag(b, fieldFloat32, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(v.Float32()))
	case value.KindFloat64:
		b = protowire.AppendTag(b, fieldFloat64, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v.Float64()))
	}
	return b
}

func decodeSnapshot(data []byte) (map[slot]value.Value, error) {
	entries := make(map[slot]value.Value)
	sawVersion := false

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: bad tag", ErrCorrupt)
		}
		data = data[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			ver, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad version", ErrCorrupt)
			}
			data = data[n:]
			if ver != codecVersion {
				return nil, fmt.Errorf("%w: unknown format version %d", ErrCorrupt, ver)
			}
			sawVersion = true
		case num == fieldEntry && typ == protowire.BytesType:
			rec, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad entry record", ErrCorrupt)
			}
			data = data[n:]
			sl, v, err := decodeEntry(rec)
			if err != nil {
				return nil, err
			}
			entries[sl] = v
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: bad field %d", ErrCorrupt, num)
			}
			data = data[n:]
		}
	}

	if !sawVersion {
		return nil, fmt.Errorf("%w: missing format version", ErrCorrupt)
	}
	return entries, nil
}

func decodeEntry(rec []byte) (slot, value.Value, error) {
	var (
		sl      slot
		val     value.Value
		sawKey  bool
		payload protowire.Number
	)

	for len(rec) > 0 {
		num, typ, n := protowire.ConsumeTag(rec)
		if n < 0 {
			return slot{}, value.Value{}, fmt.Errorf("%w: bad entry tag", ErrCorrupt)
		}
		rec = rec[n:]

		switch {
		case num == fieldKey && typ == protowire.BytesType:
			key, n := protowire.ConsumeString(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad key", ErrCorrupt)
			}
			rec = rec[n:]
			sl.key = key
			sawKey = true
		case num == fieldKind && typ == protowire.VarintType:
			kind, n := protowire.ConsumeVarint(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad kind", ErrCorrupt)
			}
			rec = rec[n:]
			sl.kind = value.Kind(kind)
		case num == fieldInt64 && typ == protowire.VarintType:
			raw, n := protowire.ConsumeVarint(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad int64 payload", ErrCorrupt)
			}
			rec = rec[n:]
			val = value.Int64Of(protowire.DecodeZigZag(raw))
			payload = num
		case num == fieldString && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad string payload", ErrCorrupt)
			}
			rec = rec[n:]
			val = value.StringOf(s)
			payload = num
		case num == fieldBool && typ == protowire.VarintType:
			raw, n := protowire.ConsumeVarint(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad bool payload", ErrCorrupt)
			}
			rec = rec[n:]
			val = value.BoolOf(raw != 0)
			payload = num
		case num == fieldFloat32 && typ == protowire.Fixed32Type:
			bits, n := protowire.ConsumeFixed32(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad float32 payload", ErrCorrupt)
			}
			rec = rec[n:]
			val = value.Float32Of(math.Float32frombits(bits))
			payload = num
		case num == fieldFloat64 && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad float64 payload", ErrCorrupt)
			}
			rec = rec[n:]
			val = value.Float64Of(math.Float64frombits(bits))
			payload = num
		default:
			n := protowire.ConsumeFieldValue(num, typ, rec)
			if n < 0 {
				return slot{}, value.Value{}, fmt.Errorf("%w: bad entry field %d", ErrCorrupt, num)
			}
			rec = rec[n:]
		}
	}

	if !sawKey {
		return slot{}, value.Value{}, fmt.Errorf("%w: entry missing key", ErrCorrupt)
	}
	if val.IsZero() {
		return slot{}, value.Value{}, fmt.Errorf("%w: entry %q missing payload", ErrCorrupt, sl.key)
	}
	if expected := payloadField(sl.kind); expected != payload {
		return slot{}, value.Value{}, fmt.Errorf("%w: entry %q kind %s does not match payload", ErrCorrupt, sl.key, sl.kind)
	}
	return sl, val, nil
}

func payloadField(k value.Kind) protowire.Number {
	switch k {
	case value.KindInt64:
		return fieldInt64
	case value.KindString:
		return fieldString
	case value.KindBool:
		return fieldBool
	case value.KindFloat32:
		return fieldFloat32
	case value.KindFloat64:
		return fieldFloat64
	default:
		return 0
	}
}
