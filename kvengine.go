package glass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
)

// Sorted set K lives in root bucket "z:K" with two nested buckets:
// "m" maps member → score (8 bytes) and "s" holds sortableScore+member keys
// in rank order. Hash K is the root bucket "h:K" holding fields directly.
// Like Redis, empty structures are removed.
const (
	zsetPrefix  = "z:"
	hashPrefix  = "h:"
	zsetMembers = "m"
	zsetScores  = "s"
	scoreLen    = 8
)

var errWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// kvEngine implements Engine on top of an ordered bucket storage.
type kvEngine struct {
	st storage
}

func newKVEngine(st storage) *kvEngine {
	return &kvEngine{st: st}
}

func (e *kvEngine) Close() error {
	return e.st.Close()
}

func (e *kvEngine) Exec(ctx context.Context, cmds []Cmd) ([]Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writable := slices.ContainsFunc(cmds, func(c Cmd) bool { return c.Kind.Writes() })

	tx, err := e.st.BeginTx(writable)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	replies := make([]Reply, len(cmds))
	for i, c := range cmds {
		replies[i], err = execKV(tx, c)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", c, err)
		}
	}
	if writable {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return replies, nil
}

func execKV(tx storageTx, c Cmd) (Reply, error) {
	switch c.Kind {
	case CmdZAdd, CmdZRem, CmdZCard, CmdZRange, CmdZScore, CmdZIncrBy:
		if tx.Bucket(hashPrefix+c.Key, "") != nil {
			return Reply{}, errWrongType
		}
	case CmdHSet, CmdHGet, CmdHDel, CmdHKeys, CmdHGetAll:
		if tx.Bucket(zsetPrefix+c.Key, "") != nil {
			return Reply{}, errWrongType
		}
	default:
		return Reply{}, fmt.Errorf("unsupported command %v", c.Kind)
	}

	zname, hname := zsetPrefix+c.Key, hashPrefix+c.Key
	switch c.Kind {
	case CmdZAdd:
		members, scores, err := createZSet(tx, zname)
		if err != nil {
			return Reply{}, err
		}
		added, err := zput(members, scores, []byte(c.Member), c.Score)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Int: boolToInt(added)}, nil

	case CmdZIncrBy:
		members, scores, err := createZSet(tx, zname)
		if err != nil {
			return Reply{}, err
		}
		m := []byte(c.Member)
		score := c.Score
		if old := members.Get(m); old != nil {
			score += decodeFloat(old)
		}
		if _, err := zput(members, scores, m, score); err != nil {
			return Reply{}, err
		}
		return Reply{Score: score}, nil

	case CmdZRem:
		members, scores := tx.Bucket(zname, zsetMembers), tx.Bucket(zname, zsetScores)
		if members == nil {
			return Reply{}, nil
		}
		m := []byte(c.Member)
		old := members.Get(m)
		if old == nil {
			return Reply{}, nil
		}
		if err := scores.Delete(scoreKey(decodeFloat(old), m)); err != nil {
			return Reply{}, err
		}
		if err := members.Delete(m); err != nil {
			return Reply{}, err
		}
		if isEmptyBucket(members) {
			if err := tx.DeleteBucket(zname, ""); err != nil {
				return Reply{}, err
			}
		}
		return Reply{Int: 1}, nil

	case CmdZCard:
		members := tx.Bucket(zname, zsetMembers)
		if members == nil {
			return Reply{}, nil
		}
		return Reply{Int: int64(members.KeyCount())}, nil

	case CmdZRange:
		scores := tx.Bucket(zname, zsetScores)
		if scores == nil {
			return Reply{Strs: []string{}}, nil
		}
		return Reply{Strs: zrange(scores, c.Start, c.Stop)}, nil

	case CmdZScore:
		members := tx.Bucket(zname, zsetMembers)
		if members == nil {
			return Reply{Nil: true}, nil
		}
		v := members.Get([]byte(c.Member))
		if v == nil {
			return Reply{Nil: true}, nil
		}
		return Reply{Score: decodeFloat(v)}, nil

	case CmdHSet:
		b, err := tx.CreateBucket(hname, "")
		if err != nil {
			return Reply{}, err
		}
		f := []byte(c.Member)
		_, exists := lookup(b, f)
		if err := b.Put(f, []byte(c.Value)); err != nil {
			return Reply{}, err
		}
		return Reply{Int: boolToInt(!exists)}, nil

	case CmdHGet:
		b := tx.Bucket(hname, "")
		if b == nil {
			return Reply{Nil: true}, nil
		}
		v, ok := lookup(b, []byte(c.Member))
		if !ok {
			return Reply{Nil: true}, nil
		}
		return Reply{Str: string(v)}, nil

	case CmdHDel:
		b := tx.Bucket(hname, "")
		if b == nil {
			return Reply{}, nil
		}
		f := []byte(c.Member)
		if _, ok := lookup(b, f); !ok {
			return Reply{}, nil
		}
		if err := b.Delete(f); err != nil {
			return Reply{}, err
		}
		if isEmptyBucket(b) {
			if err := tx.DeleteBucket(hname, ""); err != nil {
				return Reply{}, err
			}
		}
		return Reply{Int: 1}, nil

	case CmdHKeys:
		keys := []string{}
		if b := tx.Bucket(hname, ""); b != nil {
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, string(k))
			}
		}
		return Reply{Strs: keys}, nil

	case CmdHGetAll:
		fields := make(map[string]string)
		if b := tx.Bucket(hname, ""); b != nil {
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				fields[string(k)] = string(v)
			}
		}
		return Reply{Fields: fields}, nil
	}
	panic("unreachable")
}

func createZSet(tx storageTx, name string) (members, scores storageBucket, err error) {
	members, err = tx.CreateBucket(name, zsetMembers)
	if err != nil {
		return nil, nil, err
	}
	scores, err = tx.CreateBucket(name, zsetScores)
	if err != nil {
		return nil, nil, err
	}
	return members, scores, nil
}

// zput sets member's score, keeping the rank bucket in sync. Reports whether
// the member is new.
func zput(members, scores storageBucket, m []byte, score float64) (bool, error) {
	old := members.Get(m)
	if old != nil {
		if err := scores.Delete(scoreKey(decodeFloat(old), m)); err != nil {
			return false, err
		}
	}
	if err := members.Put(slices.Clone(m), appendFloat(nil, score)); err != nil {
		return false, err
	}
	if err := scores.Put(scoreKey(score, m), []byte{}); err != nil {
		return false, err
	}
	return old == nil, nil
}

// zrange returns members in [start, stop] rank order, walking from whichever
// end of the bucket is closer to the window.
func zrange(scores storageBucket, start, stop int64) []string {
	n := scores.KeyCount()
	lo, hi := NormalizeRange(start, stop, n)
	out := make([]string, 0, hi-lo)
	if hi == lo {
		return out
	}

	c := scores.Cursor()
	if lo < n-hi {
		k, _ := c.First()
		for i := 0; i < lo; i++ {
			k, _ = c.Next()
		}
		for i := lo; i < hi && k != nil; i++ {
			out = append(out, string(k[scoreLen:]))
			k, _ = c.Next()
		}
		return out
	}

	k, _ := c.Last()
	for i := n - 1; i >= hi; i-- {
		k, _ = c.Prev()
	}
	for i := hi - 1; i >= lo && k != nil; i-- {
		out = append(out, string(k[scoreLen:]))
		k, _ = c.Prev()
	}
	slices.Reverse(out)
	return out
}

func scoreKey(score float64, member []byte) []byte {
	buf := make([]byte, 0, scoreLen+len(member))
	buf = appendSortableFloat(buf, score)
	return append(buf, member...)
}

// lookup distinguishes a missing key from an empty value, which Get cannot
// do on every storage.
func lookup(b storageBucket, key []byte) ([]byte, bool) {
	k, v := b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false
	}
	return v, true
}

func isEmptyBucket(b storageBucket) bool {
	k, _ := b.Cursor().First()
	return k == nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
