package glass

import (
	"context"
	"fmt"
)

// Entry is one record as returned by Page and All. Page marks the end of the
// index with a sentinel Entry whose ID is NilID and whose Bag is nil.
type Entry struct {
	ID  ID
	Bag Bag
}

func (e Entry) IsSentinel() bool {
	return e.ID.IsNil()
}

// Page returns the records of 1-based page n in index order. If the page
// contains the last indexed record, a sentinel entry follows it, so callers
// know there are no further pages without asking again.
func (s *Store) Page(ctx context.Context, typ string, n int) ([]Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("glass: page %d of %s: %w", n, typ, ErrInvalidPage)
	}
	idx := s.Index(typ)
	start, stop := idx.PageBounds(n)
	replies, err := s.exec(ctx, "page", typ, []Cmd{ZRange(idx.key, start, stop), ZRange(idx.key, -1, -1)})
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(replies[0].Strs)
	if err != nil {
		return nil, err
	}
	last := NilID
	if tail := replies[1].Strs; len(tail) > 0 {
		last, err = ParseID(tail[0])
		if err != nil {
			return nil, err
		}
	}

	entries, err := s.fetchBags(ctx, "page", typ, ids)
	if err != nil {
		return nil, err
	}
	result := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		result = append(result, e)
		if e.ID == last {
			result = append(result, Entry{})
		}
	}
	if s.verbose {
		s.sugar.Debugw("glass: PAGE", "type", typ, "page", n, "entries", len(entries), "end", len(result) > len(entries))
	}
	return result, nil
}

// All returns every record of typ in index order.
func (s *Store) All(ctx context.Context, typ string) ([]Entry, error) {
	replies, err := s.exec(ctx, "all", typ, []Cmd{ZRange(IndexKey(typ), 0, -1)})
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(replies[0].Strs)
	if err != nil {
		return nil, err
	}
	return s.fetchBags(ctx, "all", typ, ids)
}

func (s *Store) fetchBags(ctx context.Context, op, typ string, ids []ID) ([]Entry, error) {
	entries := make([]Entry, len(ids))
	if len(ids) == 0 {
		return entries, nil
	}
	cmds := make([]Cmd, len(ids))
	for i, id := range ids {
		cmds[i] = HGetAll(BagKey(typ, id))
	}
	replies, err := s.exec(ctx, op, typ, cmds)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		entries[i] = Entry{ID: id, Bag: toBag(replies[i].Fields)}
	}
	return entries, nil
}
