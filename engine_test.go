package glass

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		start, stop int64
		n           int
		lo, hi      int
	}{
		{0, -1, 5, 0, 5},
		{0, 0, 5, 0, 1},
		{-1, -1, 5, 4, 5},
		{1, 3, 5, 1, 4},
		{3, 100, 5, 3, 5},
		{-100, 1, 5, 0, 2},
		{4, 2, 5, 0, 0},
		{5, 10, 5, 0, 0},
		{0, -1, 0, 0, 0},
		{-1, -1, 0, 0, 0},
	}
	for _, tt := range tests {
		lo, hi := NormalizeRange(tt.start, tt.stop, tt.n)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("NormalizeRange(%d, %d, %d) = [%d, %d), wanted [%d, %d)", tt.start, tt.stop, tt.n, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestCmdKind(t *testing.T) {
	require.Equal(t, "ZADD", CmdZAdd.String())
	require.Equal(t, "HGETALL", CmdHGetAll.String())
	require.Equal(t, "CmdKind(0)", CmdKind(0).String())
	require.Equal(t, "CmdKind(99)", CmdKind(99).String())

	for _, k := range []CmdKind{CmdZAdd, CmdZRem, CmdZIncrBy, CmdHSet, CmdHDel} {
		require.True(t, k.Writes(), k.String())
	}
	for _, k := range []CmdKind{CmdZCard, CmdZRange, CmdZScore, CmdHGet, CmdHKeys, CmdHGetAll} {
		require.False(t, k.Writes(), k.String())
	}
}

func TestCmd_String(t *testing.T) {
	require.Equal(t, "ZADD mods-index 3 abc", ZAdd("mods-index", 3, "abc").String())
	require.Equal(t, "ZRANGE mods-index 0 -1", ZRange("mods-index", 0, -1).String())
	require.Equal(t, "HSET mods:abc name (6 bytes)", HSet("mods:abc", "name", "secret").String())
	require.Equal(t, "HGETALL mods:abc", HGetAll("mods:abc").String())
}
