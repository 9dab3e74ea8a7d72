package glass

import (
	"context"
	"errors"
	"fmt"
)

var errNilID = errors.New("nil id is reserved")

// Collection is the typed view of one record type in a Store.
type Collection[R any] struct {
	s      *Store
	typ    *Type[R]
	mapper *Mapper[R]
}

// TypedEntry is an Entry with its bag decoded. The sentinel entry has a nil
// Record.
type TypedEntry[R any] struct {
	ID     ID
	Record *R
}

func (e TypedEntry[R]) IsSentinel() bool {
	return e.ID.IsNil()
}

func NewCollection[R any](s *Store, typ *Type[R]) *Collection[R] {
	return &Collection[R]{
		s:      s,
		typ:    typ,
		mapper: NewMapper[R](s.codec, s.logger),
	}
}

func (c *Collection[R]) Name() string { return c.typ.name }

func (c *Collection[R]) Store() *Store { return c.s }

func (c *Collection[R]) Type() *Type[R] { return c.typ }

func (c *Collection[R]) Mapper() *Mapper[R] { return c.mapper }

func (c *Collection[R]) Index() *Index { return c.s.Index(c.typ.name) }

// Insert stores rec under a new id.
func (c *Collection[R]) Insert(ctx context.Context, rec *R) (ID, error) {
	return c.insert(ctx, NilID, rec)
}

// InsertWithID stores rec under the given id, which must not be NilID.
func (c *Collection[R]) InsertWithID(ctx context.Context, id ID, rec *R) (ID, error) {
	if id.IsNil() {
		return NilID, &IdentifierError{Raw: id.String(), Err: errNilID}
	}
	return c.insert(ctx, id, rec)
}

func (c *Collection[R]) insert(ctx context.Context, id ID, rec *R) (ID, error) {
	fields, err := c.mapper.Flatten(rec)
	if err != nil {
		return NilID, err
	}
	return c.s.Insert(ctx, c.typ.name, id, fields)
}

// Get returns the record stored under id. A missing record decodes as the
// zero R; use Lookup to tell the two apart.
func (c *Collection[R]) Get(ctx context.Context, id ID) (*R, error) {
	rec, _, err := c.Lookup(ctx, id)
	return rec, err
}

func (c *Collection[R]) Lookup(ctx context.Context, id ID) (*R, bool, error) {
	bag, err := c.s.Retrieve(ctx, c.typ.name, id)
	if err != nil {
		return nil, false, err
	}
	return c.mapper.FromBag(bag), len(bag) > 0, nil
}

func (c *Collection[R]) Retrieve(ctx context.Context, id ID) (Bag, error) {
	return c.s.Retrieve(ctx, c.typ.name, id)
}

func (c *Collection[R]) Edit(ctx context.Context, id ID, changes ...FieldValue) error {
	return c.s.Edit(ctx, c.typ.name, id, changes)
}

// EditRecord writes the named fields of rec to the record stored under id.
// Named fields that are nil in rec are removed from the stored record.
func (c *Collection[R]) EditRecord(ctx context.Context, id ID, rec *R, names ...string) error {
	for _, name := range names {
		if !c.mapper.HasField(name) {
			return fmt.Errorf("glass: %s.%s: %w", c.typ.name, name, ErrUnknownField)
		}
	}
	fields, err := c.mapper.Flatten(rec)
	if err != nil {
		return err
	}
	set, unset := pick(fields, names)
	return c.s.Update(ctx, c.typ.name, id, set, unset)
}

func (c *Collection[R]) Remove(ctx context.Context, id ID) error {
	return c.s.Remove(ctx, c.typ.name, id)
}

func (c *Collection[R]) Count(ctx context.Context) (int64, error) {
	return c.s.Count(ctx, c.typ.name)
}

func (c *Collection[R]) Page(ctx context.Context, n int) ([]TypedEntry[R], error) {
	entries, err := c.s.Page(ctx, c.typ.name, n)
	if err != nil {
		return nil, err
	}
	return c.decode(entries), nil
}

func (c *Collection[R]) All(ctx context.Context) ([]TypedEntry[R], error) {
	entries, err := c.s.All(ctx, c.typ.name)
	if err != nil {
		return nil, err
	}
	return c.decode(entries), nil
}

func (c *Collection[R]) decode(entries []Entry) []TypedEntry[R] {
	out := make([]TypedEntry[R], len(entries))
	for i, e := range entries {
		out[i].ID = e.ID
		if !e.IsSentinel() {
			out[i].Record = c.mapper.FromBag(e.Bag)
		}
	}
	return out
}
