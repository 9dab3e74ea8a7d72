package glass

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec turns complex field values (slices, maps, nested structs) into
// payloads and back. Scalar fields never go through a Codec.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// DefaultCodec is used when Options.Codec is nil.
var DefaultCodec Codec = JSON{}

// CodecByName resolves "json", "msgpack", "yaml", "cbor" and any of those
// prefixed with "zstd+".
func CodecByName(name string) (Codec, error) {
	if inner, ok := strings.CutPrefix(name, "zstd+"); ok {
		c, err := CodecByName(inner)
		if err != nil {
			return nil, err
		}
		return Zstd{c}, nil
	}
	switch name {
	case "json":
		return JSON{}, nil
	case "msgpack":
		return MsgPack{}, nil
	case "yaml":
		return YAML{}, nil
	case "cbor":
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("glass: unknown codec %q", name)
	}
}

type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// MsgPack encodes with sorted map keys so equal values give equal payloads.
type MsgPack struct{}

func (MsgPack) Name() string { return "msgpack" }

func (MsgPack) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgPack) Unmarshal(data []byte, v any) error {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(v)
	msgpack.PutDecoder(dec)
	return err
}

type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

type CBOR struct{}

var cborEncMode = sync.OnceValue(func() cbor.EncMode {
	return must(cbor.CanonicalEncOptions().EncMode())
})

func (CBOR) Name() string { return "cbor" }

func (CBOR) Marshal(v any) ([]byte, error) { return cborEncMode().Marshal(v) }

func (CBOR) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

// Zstd compresses the payloads produced by another codec.
type Zstd struct {
	Codec Codec
}

var (
	zstdEncoder = sync.OnceValue(func() *zstd.Encoder {
		return must(zstd.NewWriter(nil))
	})
	zstdDecoder = sync.OnceValue(func() *zstd.Decoder {
		return must(zstd.NewReader(nil))
	})
)

func (z Zstd) Name() string { return "zstd+" + z.Codec.Name() }

func (z Zstd) Marshal(v any) ([]byte, error) {
	raw, err := z.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	return zstdEncoder().EncodeAll(raw, nil), nil
}

func (z Zstd) Unmarshal(data []byte, v any) error {
	raw, err := zstdDecoder().DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	return z.Codec.Unmarshal(raw, v)
}
