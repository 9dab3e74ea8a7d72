// Package enginetest checks that a glass.Engine behaves like Redis for the
// commands glass uses.
package enginetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreyvit/glass"
)

// Opener returns a fresh, empty engine. Run closes it.
type Opener func(t *testing.T) glass.Engine

func Run(t *testing.T, open Opener) {
	t.Run("sorted set", func(t *testing.T) { testSortedSet(t, open) })
	t.Run("rescore", func(t *testing.T) { testRescore(t, open) })
	t.Run("range", func(t *testing.T) { testRange(t, open) })
	t.Run("hash", func(t *testing.T) { testHash(t, open) })
	t.Run("empty structures", func(t *testing.T) { testEmpty(t, open) })
	t.Run("batch order", func(t *testing.T) { testBatchOrder(t, open) })
	t.Run("wrong type", func(t *testing.T) { testWrongType(t, open) })
}

func start(t *testing.T, open Opener) (context.Context, glass.Engine) {
	eng := open(t)
	t.Cleanup(func() { eng.Close() })
	return context.Background(), eng
}

// Exec runs cmds and fails the test on error.
func Exec(t testing.TB, eng glass.Engine, cmds ...glass.Cmd) []glass.Reply {
	t.Helper()
	replies, err := eng.Exec(context.Background(), cmds)
	require.NoError(t, err)
	require.Len(t, replies, len(cmds))
	return replies
}

func testSortedSet(t *testing.T, open Opener) {
	_, eng := start(t, open)

	r := Exec(t, eng,
		glass.ZAdd("z", 1, "a"),
		glass.ZAdd("z", 2, "b"),
		glass.ZAdd("z", 3, "c"),
		glass.ZAdd("z", 4, "a"),
		glass.ZCard("z"),
	)
	require.Equal(t, int64(1), r[0].Int)
	require.Equal(t, int64(0), r[3].Int, "re-adding a member")
	require.Equal(t, int64(3), r[4].Int)

	r = Exec(t, eng, glass.ZRange("z", 0, -1), glass.ZScore("z", "a"), glass.ZScore("z", "zz"))
	require.Equal(t, []string{"b", "c", "a"}, r[0].Strs)
	require.Equal(t, 4.0, r[1].Score)
	require.False(t, r[1].Nil)
	require.True(t, r[2].Nil)

	r = Exec(t, eng, glass.ZRem("z", "c"), glass.ZRem("z", "c"), glass.ZRange("z", 0, -1))
	require.Equal(t, int64(1), r[0].Int)
	require.Equal(t, int64(0), r[1].Int)
	require.Equal(t, []string{"b", "a"}, r[2].Strs)
}

func testRescore(t *testing.T, open Opener) {
	_, eng := start(t, open)

	r := Exec(t, eng,
		glass.ZIncrBy("z", 5, "a"),
		glass.ZAdd("z", 3, "b"),
		glass.ZIncrBy("z", -4, "a"),
		glass.ZRange("z", 0, -1),
		glass.ZScore("z", "a"),
	)
	require.Equal(t, 5.0, r[0].Score)
	require.Equal(t, 1.0, r[2].Score)
	require.Equal(t, []string{"a", "b"}, r[3].Strs)
	require.Equal(t, 1.0, r[4].Score)

	// equal scores order by member, negative scores sort first
	Exec(t, eng, glass.ZAdd("z", 3, "aa"), glass.ZAdd("z", -2.5, "neg"))
	r = Exec(t, eng, glass.ZRange("z", 0, -1))
	require.Equal(t, []string{"neg", "a", "aa", "b"}, r[0].Strs)
}

func testRange(t *testing.T, open Opener) {
	_, eng := start(t, open)

	var cmds []glass.Cmd
	members := []string{"m0", "m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9"}
	for i, m := range members {
		cmds = append(cmds, glass.ZAdd("z", float64(i+1), m))
	}
	Exec(t, eng, cmds...)

	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, 0, members[:1]},
		{-1, -1, members[9:]},
		{0, 3, members[0:4]},
		{8, 15, members[8:]},
		{2, -3, members[2:8]},
		{-3, -1, members[7:]},
		{-100, 1, members[:2]},
		{10, 20, []string{}},
		{5, 4, []string{}},
		{-1, 0, []string{}},
	}
	for _, tt := range tests {
		r := Exec(t, eng, glass.ZRange("z", tt.start, tt.stop))
		require.Equal(t, tt.want, nonNil(r[0].Strs), "ZRANGE %d %d", tt.start, tt.stop)
	}

	r := Exec(t, eng, glass.ZRange("missing", 0, -1), glass.ZCard("missing"))
	require.Empty(t, r[0].Strs)
	require.Equal(t, int64(0), r[1].Int)
}

func testHash(t *testing.T, open Opener) {
	_, eng := start(t, open)

	r := Exec(t, eng,
		glass.HSet("h", "name", "Foo"),
		glass.HSet("h", "version", "1.0"),
		glass.HSet("h", "name", "Bar"),
		glass.HSet("h", "empty", ""),
	)
	require.Equal(t, int64(1), r[0].Int)
	require.Equal(t, int64(0), r[2].Int, "overwriting a field")

	r = Exec(t, eng,
		glass.HGet("h", "name"),
		glass.HGet("h", "empty"),
		glass.HGet("h", "nope"),
		glass.HGet("missing", "name"),
		glass.HKeys("h"),
		glass.HGetAll("h"),
	)
	require.Equal(t, "Bar", r[0].Str)
	require.False(t, r[1].Nil)
	require.Equal(t, "", r[1].Str)
	require.True(t, r[2].Nil)
	require.True(t, r[3].Nil)
	require.ElementsMatch(t, []string{"name", "version", "empty"}, r[4].Strs)
	require.Equal(t, map[string]string{"name": "Bar", "version": "1.0", "empty": ""}, r[5].Fields)

	r = Exec(t, eng, glass.HDel("h", "version"), glass.HDel("h", "version"), glass.HGetAll("h"))
	require.Equal(t, int64(1), r[0].Int)
	require.Equal(t, int64(0), r[1].Int)
	require.Equal(t, map[string]string{"name": "Bar", "empty": ""}, r[2].Fields)
}

func testEmpty(t *testing.T, open Opener) {
	_, eng := start(t, open)

	Exec(t, eng, glass.HSet("k", "f", "v"), glass.ZAdd("z", 1, "m"))
	Exec(t, eng, glass.HDel("k", "f"), glass.ZRem("z", "m"))

	// once emptied, the keys are gone and can be reused as the other type
	r := Exec(t, eng,
		glass.HGetAll("k"),
		glass.HKeys("k"),
		glass.ZCard("z"),
		glass.ZAdd("k", 1, "m"),
		glass.HSet("z", "f", "v"),
	)
	require.Empty(t, r[0].Fields)
	require.Empty(t, r[1].Strs)
	require.Equal(t, int64(0), r[2].Int)
}

func testBatchOrder(t *testing.T, open Opener) {
	_, eng := start(t, open)

	r := Exec(t, eng,
		glass.ZCard("z"),
		glass.ZAdd("z", 1, "a"),
		glass.ZCard("z"),
		glass.HGet("h", "f"),
		glass.HSet("h", "f", "v"),
		glass.HGet("h", "f"),
	)
	require.Equal(t, int64(0), r[0].Int)
	require.Equal(t, int64(1), r[2].Int)
	require.True(t, r[3].Nil)
	require.Equal(t, "v", r[5].Str)
}

func testWrongType(t *testing.T, open Opener) {
	ctx, eng := start(t, open)

	Exec(t, eng, glass.HSet("k", "f", "v"), glass.ZAdd("z", 1, "m"))

	_, err := eng.Exec(ctx, []glass.Cmd{glass.ZAdd("k", 1, "m")})
	require.ErrorContains(t, err, "WRONGTYPE")

	_, err = eng.Exec(ctx, []glass.Cmd{glass.HGetAll("z")})
	require.ErrorContains(t, err, "WRONGTYPE")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
