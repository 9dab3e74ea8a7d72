package glass

import (
	"context"
	"fmt"
	"math"
)

// Index is the ordering index of one record type: a sorted set of record
// ids scored by rank. New ids are appended with rank = cardinality + 1.
//
// Append reads the cardinality and writes the new entry in two separate
// round trips, so two concurrent appends can be given the same rank. Entries
// with equal ranks are ordered by id.
type Index struct {
	s   *Store
	typ string
	key string
}

func (s *Store) Index(typ string) *Index {
	return &Index{s: s, typ: typ, key: IndexKey(typ)}
}

func (idx *Index) Key() string { return idx.key }

func (idx *Index) Append(ctx context.Context, id ID) (int64, error) {
	card, err := idx.Card(ctx)
	if err != nil {
		return 0, err
	}
	rank := card + 1
	_, err = idx.s.exec(ctx, "append", idx.typ, []Cmd{ZAdd(idx.key, float64(rank), id.String())})
	if err != nil {
		return 0, err
	}
	if idx.s.verbose {
		idx.s.sugar.Debugw("glass: APPEND", "type", idx.typ, "id", id, "rank", rank)
	}
	return rank, nil
}

// Remove is a no-op for ids that are not in the index.
func (idx *Index) Remove(ctx context.Context, id ID) error {
	_, err := idx.s.exec(ctx, "unindex", idx.typ, []Cmd{ZRem(idx.key, id.String())})
	return err
}

func (idx *Index) Card(ctx context.Context) (int64, error) {
	r, err := idx.one(ctx, "count", ZCard(idx.key))
	return r.Int, err
}

// First returns NilID when the index is empty.
func (idx *Index) First(ctx context.Context) (ID, error) {
	return idx.at(ctx, "first", 0)
}

// Last returns NilID when the index is empty.
func (idx *Index) Last(ctx context.Context) (ID, error) {
	return idx.at(ctx, "last", -1)
}

func (idx *Index) at(ctx context.Context, op string, pos int64) (ID, error) {
	ids, err := idx.rangeOp(ctx, op, pos, pos)
	if err != nil || len(ids) == 0 {
		return NilID, err
	}
	return ids[0], nil
}

// Range returns the ids at positions start through stop, inclusive.
// Negative positions count from the end, -1 being the last id.
func (idx *Index) Range(ctx context.Context, start, stop int64) ([]ID, error) {
	return idx.rangeOp(ctx, "range", start, stop)
}

func (idx *Index) rangeOp(ctx context.Context, op string, start, stop int64) ([]ID, error) {
	r, err := idx.one(ctx, op, ZRange(idx.key, start, stop))
	if err != nil {
		return nil, err
	}
	return parseIDs(r.Strs)
}

// Score returns ErrNotFound if id is not indexed.
func (idx *Index) Score(ctx context.Context, id ID) (int64, error) {
	r, err := idx.one(ctx, "score", ZScore(idx.key, id.String()))
	if err != nil {
		return 0, err
	}
	if r.Nil {
		return 0, fmt.Errorf("glass: %s %v: %w", idx.key, id, ErrNotFound)
	}
	return int64(math.Round(r.Score)), nil
}

// AdjustScore adds delta to id's rank and returns the new rank. An id that is
// not indexed yet is added with rank delta.
func (idx *Index) AdjustScore(ctx context.Context, id ID, delta int64) (int64, error) {
	r, err := idx.one(ctx, "rescore", ZIncrBy(idx.key, float64(delta), id.String()))
	if err != nil {
		return 0, err
	}
	if idx.s.verbose {
		idx.s.sugar.Debugw("glass: RESCORE", "type", idx.typ, "id", id, "delta", delta, "rank", r.Score)
	}
	return int64(math.Round(r.Score)), nil
}

// PageBounds returns the inclusive position window of 1-based page n.
func (idx *Index) PageBounds(n int) (start, stop int64) {
	p := int64(idx.s.pageSize)
	return p * int64(n-1), p*int64(n) - 1
}

func (idx *Index) one(ctx context.Context, op string, cmd Cmd) (Reply, error) {
	replies, err := idx.s.exec(ctx, op, idx.typ, []Cmd{cmd})
	if err != nil {
		return Reply{}, err
	}
	return replies[0], nil
}

func parseIDs(members []string) ([]ID, error) {
	ids := make([]ID, len(members))
	for i, m := range members {
		id, err := ParseID(m)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
