package glass

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type part struct {
	ID    ID                `json:"id" yaml:"id" msgpack:"id" cbor:"id"`
	Name  string            `json:"name" yaml:"name" msgpack:"name" cbor:"name"`
	Count int               `json:"count" yaml:"count" msgpack:"count" cbor:"count"`
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty" msgpack:"attrs,omitempty" cbor:"attrs,omitempty"`
}

var allCodecs = []Codec{JSON{}, MsgPack{}, YAML{}, CBOR{}, Zstd{JSON{}}, Zstd{MsgPack{}}}

func TestCodecs(t *testing.T) {
	in := []part{
		{ID: NewID(), Name: "core", Count: 1, Attrs: map[string]string{"b": "2", "a": "1"}},
		{ID: NewID(), Name: "extras"},
	}
	for _, c := range allCodecs {
		t.Run(c.Name(), func(t *testing.T) {
			raw, err := c.Marshal(in)
			require.NoError(t, err)

			var out []part
			require.NoError(t, c.Unmarshal(raw, &out))
			require.Equal(t, in, out)

			again, err := c.Marshal(in)
			require.NoError(t, err)
			require.Equal(t, raw, again, "payload must be deterministic")

			require.Error(t, c.Unmarshal([]byte("\xff\x00garbage{"), &out))
		})
	}
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"json", "msgpack", "yaml", "cbor", "zstd+json", "zstd+cbor", "zstd+zstd+yaml"} {
		c, err := CodecByName(name)
		require.NoError(t, err, name)
		require.Equal(t, name, c.Name())
	}
	for _, name := range []string{"", "xml", "zstd+", "zstd+xml"} {
		_, err := CodecByName(name)
		require.Error(t, err, name)
	}
	require.Equal(t, "json", DefaultCodec.Name())
}

func TestZstd_Compresses(t *testing.T) {
	tags := make([]string, 200)
	for i := range tags {
		tags[i] = "repetitive"
	}
	plain, err := JSON{}.Marshal(tags)
	require.NoError(t, err)
	packed, err := Zstd{JSON{}}.Marshal(tags)
	require.NoError(t, err)
	require.Less(t, len(packed), len(plain))

	// plain JSON is not a valid zstd frame
	var out []string
	require.ErrorContains(t, Zstd{JSON{}}.Unmarshal(plain, &out), "zstd")
}
