package glass

import (
	"context"
	"fmt"
)

// Engine is a key-value engine with sorted sets and hashes.
//
// Exec submits cmds as one unit, in order, and returns one Reply per command.
// No other client observes a partially applied batch. If a command fails, Exec
// returns an error; the embedded engines then discard the whole batch, while
// Redis keeps the effects of the commands that preceded the failed one.
//
// The embedded engines reject hash fields named "" (bbolt has no empty keys);
// Store refuses such names before they reach any engine.
type Engine interface {
	Exec(ctx context.Context, cmds []Cmd) ([]Reply, error)
	Close() error
}

type CmdKind uint8

const (
	CmdZAdd CmdKind = iota + 1
	CmdZRem
	CmdZCard
	CmdZRange
	CmdZScore
	CmdZIncrBy
	CmdHSet
	CmdHGet
	CmdHDel
	CmdHKeys
	CmdHGetAll
)

var cmdNames = [...]string{
	CmdZAdd:    "ZADD",
	CmdZRem:    "ZREM",
	CmdZCard:   "ZCARD",
	CmdZRange:  "ZRANGE",
	CmdZScore:  "ZSCORE",
	CmdZIncrBy: "ZINCRBY",
	CmdHSet:    "HSET",
	CmdHGet:    "HGET",
	CmdHDel:    "HDEL",
	CmdHKeys:   "HKEYS",
	CmdHGetAll: "HGETALL",
}

func (k CmdKind) String() string {
	if int(k) < len(cmdNames) && cmdNames[k] != "" {
		return cmdNames[k]
	}
	return fmt.Sprintf("CmdKind(%d)", uint8(k))
}

// Writes reports whether the command modifies data.
func (k CmdKind) Writes() bool {
	switch k {
	case CmdZAdd, CmdZRem, CmdZIncrBy, CmdHSet, CmdHDel:
		return true
	default:
		return false
	}
}

// Cmd is a single engine command. Member holds the sorted-set member or the
// hash field, depending on Kind.
type Cmd struct {
	Kind   CmdKind
	Key    string
	Member string
	Value  string
	Score  float64
	Start  int64
	Stop   int64
}

func (c Cmd) String() string {
	switch c.Kind {
	case CmdZAdd, CmdZIncrBy:
		return fmt.Sprintf("%v %s %v %s", c.Kind, c.Key, c.Score, c.Member)
	case CmdZRange:
		return fmt.Sprintf("%v %s %d %d", c.Kind, c.Key, c.Start, c.Stop)
	case CmdZRem, CmdZScore, CmdHGet, CmdHDel:
		return fmt.Sprintf("%v %s %s", c.Kind, c.Key, c.Member)
	case CmdHSet:
		return fmt.Sprintf("%v %s %s (%d bytes)", c.Kind, c.Key, c.Member, len(c.Value))
	default:
		return fmt.Sprintf("%v %s", c.Kind, c.Key)
	}
}

// Reply is the result of one Cmd. Which field is meaningful depends on the
// command:
//
//	ZADD, ZREM, ZCARD, HSET, HDEL → Int
//	ZSCORE, ZINCRBY               → Score (Nil if the member is absent)
//	HGET                          → Str (Nil if the field is absent)
//	ZRANGE, HKEYS                 → Strs
//	HGETALL                       → Fields
type Reply struct {
	Int    int64
	Score  float64
	Str    string
	Strs   []string
	Fields map[string]string
	Nil    bool
}

func ZAdd(key string, score float64, member string) Cmd {
	return Cmd{Kind: CmdZAdd, Key: key, Score: score, Member: member}
}

func ZRem(key, member string) Cmd {
	return Cmd{Kind: CmdZRem, Key: key, Member: member}
}

func ZCard(key string) Cmd {
	return Cmd{Kind: CmdZCard, Key: key}
}

func ZRange(key string, start, stop int64) Cmd {
	return Cmd{Kind: CmdZRange, Key: key, Start: start, Stop: stop}
}

func ZScore(key, member string) Cmd {
	return Cmd{Kind: CmdZScore, Key: key, Member: member}
}

func ZIncrBy(key string, delta float64, member string) Cmd {
	return Cmd{Kind: CmdZIncrBy, Key: key, Score: delta, Member: member}
}

func HSet(key, field, value string) Cmd {
	return Cmd{Kind: CmdHSet, Key: key, Member: field, Value: value}
}

func HGet(key, field string) Cmd {
	return Cmd{Kind: CmdHGet, Key: key, Member: field}
}

func HDel(key, field string) Cmd {
	return Cmd{Kind: CmdHDel, Key: key, Member: field}
}

func HKeys(key string) Cmd {
	return Cmd{Kind: CmdHKeys, Key: key}
}

func HGetAll(key string) Cmd {
	return Cmd{Kind: CmdHGetAll, Key: key}
}

// NormalizeRange converts Redis-style inclusive offsets, which may be
// negative, into a half-open [lo, hi) window over n elements.
func NormalizeRange(start, stop int64, n int) (lo, hi int) {
	if start < 0 {
		start += int64(n)
	}
	if stop < 0 {
		stop += int64(n)
	}
	if start < 0 {
		start = 0
	}
	if stop >= int64(n) {
		stop = int64(n) - 1
	}
	if start > stop {
		return 0, 0
	}
	return int(start), int(stop) + 1
}
