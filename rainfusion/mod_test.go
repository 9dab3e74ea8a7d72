package rainfusion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/glass"
)

func ptr(s string) *string { return &s }

func setup(t *testing.T, codec glass.Codec) *glass.Collection[Mod] {
	s := glass.New(glass.NewMemEngine(), glass.Options{Codec: codec})
	t.Cleanup(func() { s.Close() })
	return Mods(s)
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestModType(t *testing.T) {
	require.Equal(t, ModTypeLib, ParseModType("lib"))
	for _, s := range []string{"mod", "", "Lib", "library", "garbage"} {
		require.Equal(t, ModTypeMod, ParseModType(s), s)
	}

	require.Equal(t, "mod", ModTypeMod.String())
	require.Equal(t, "lib", ModTypeLib.String())
	require.Equal(t, "ModType(7)", ModType(7).String())

	text, err := ModTypeLib.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "lib", string(text))
	_, err = ModType(7).MarshalText()
	require.Error(t, err)

	var mt ModType = ModTypeLib
	require.NoError(t, mt.UnmarshalText([]byte("weird")))
	require.Equal(t, ModTypeMod, mt)
}

func TestModFields(t *testing.T) {
	require.Equal(t, []string{
		"name", "author", "img_url", "summary", "description", "version",
		"item_type", "dependencies", "tags",
	}, ModsType.Fields())
	require.Same(t, glass.AnyType(ModsType), Schema.TypeNamed("mods"))
}

func TestDisplay(t *testing.T) {
	m := &Mod{
		Name:        ptr("Starstorm"),
		Author:      ptr("Nk"),
		Summary:     ptr("Adds survivors"),
		Description: ptr(""),
		Version:     ptr("1.2.0"),
		ItemType:    ModTypeMod,
		Dependencies: []Dependency{
			{ID: glass.MustParseID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Name: "Returns API", Version: "0.3"},
			{ID: glass.MustParseID("00112233445566778899aabbccddeeff"), Name: "Glue", Version: "1.0"},
		},
		Tags: []string{"content", "survivors"},
	}
	golden(t).Assert(t, "display_full", []byte(m.Display()))
	golden(t).Assert(t, "display_empty", []byte((&Mod{ItemType: ModTypeLib}).Display()))

	require.Equal(t, NA, OrNA(nil))
	require.Equal(t, NA, OrNA(ptr("")))
	require.Equal(t, "x", OrNA(ptr("x")))
}

func TestMods_Scenario(t *testing.T) {
	ctx := context.Background()
	mods := setup(t, glass.JSON{})

	in := &Mod{
		Name:         ptr("Example Mod"),
		Version:      ptr("0.1.0"),
		ItemType:     ModTypeMod,
		Dependencies: []Dependency{},
		Tags:         []string{"test"},
	}
	id := glass.NewID()
	got, err := mods.InsertWithID(ctx, id, in)
	require.NoError(t, err)
	require.Equal(t, id, got)

	out, err := mods.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, in, out)

	n, err := mods.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, mods.Remove(ctx, id))
	n, err = mods.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	bag, err := mods.Retrieve(ctx, id)
	require.NoError(t, err)
	require.Empty(t, bag)
}

func TestMods_Codecs(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"json", "msgpack", "yaml", "cbor", "zstd+json", "zstd+msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := glass.CodecByName(name)
			require.NoError(t, err)
			mods := setup(t, codec)

			lib := &Mod{Name: ptr("Returns API"), ItemType: ModTypeLib, Version: ptr("0.3")}
			libID, err := mods.Insert(ctx, lib)
			require.NoError(t, err)

			mod := &Mod{
				Name:     ptr("Starstorm"),
				Author:   ptr("Nk"),
				ImgURL:   ptr("https://example.com/ss.png"),
				ItemType: ModTypeMod,
				Dependencies: []Dependency{
					{ID: libID, Name: "Returns API", Summary: "Shared code", Version: "0.3"},
				},
				Tags: []string{"content", "survivors"},
			}
			modID, err := mods.Insert(ctx, mod)
			require.NoError(t, err)

			all, err := mods.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			require.Equal(t, libID, all[0].ID)
			require.Equal(t, lib, all[0].Record)
			require.Equal(t, modID, all[1].ID)
			require.Equal(t, mod, all[1].Record)

			bag, err := mods.Retrieve(ctx, libID)
			require.NoError(t, err)
			require.Equal(t, "lib", bag["item_type"])
			require.Equal(t, "Returns API", bag["name"])
		})
	}
}

func TestMods_LegacyBag(t *testing.T) {
	ctx := context.Background()
	mods := setup(t, glass.JSON{})

	// bags written by other tools may carry unknown types, bad JSON and extra fields
	id, err := mods.Store().Insert(ctx, "mods", glass.NilID, []glass.FieldValue{
		{Name: "name", Value: "Old"},
		{Name: "item_type", Value: "plugin"},
		{Name: "dependencies", Value: "not json"},
		{Name: "tags", Value: `["a"]`},
		{Name: "downloads", Value: "12"},
	})
	require.NoError(t, err)

	m, err := mods.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, &Mod{Name: ptr("Old"), ItemType: ModTypeMod, Tags: []string{"a"}}, m)

	fields := ModsType.Order(glass.Bag{"downloads": "12", "tags": `["a"]`, "name": "Old"})
	require.Equal(t, []glass.FieldValue{{Name: "name", Value: "Old"}, {Name: "tags", Value: `["a"]`}, {Name: "downloads", Value: "12"}}, fields)
}

func TestMod_JSON(t *testing.T) {
	var m Mod
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","item_type":"lib","tags":["t"]}`), &m))
	require.Equal(t, Mod{Name: ptr("X"), ItemType: ModTypeLib, Tags: []string{"t"}}, m)

	raw, err := json.Marshal(&Mod{Name: ptr("Y")})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Y","item_type":"mod"}`, string(raw))
}
