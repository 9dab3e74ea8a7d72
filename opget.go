package glass

import "context"

// Retrieve returns all fields stored for one record. A record that does not
// exist yields an empty bag.
func (s *Store) Retrieve(ctx context.Context, typ string, id ID) (Bag, error) {
	replies, err := s.exec(ctx, "retrieve", typ, []Cmd{HGetAll(BagKey(typ, id))})
	if err != nil {
		return nil, err
	}
	return toBag(replies[0].Fields), nil
}

// RetrieveField returns one field of one record, and whether it is present.
func (s *Store) RetrieveField(ctx context.Context, typ string, id ID, name string) (string, bool, error) {
	replies, err := s.exec(ctx, "retrieve", typ, []Cmd{HGet(BagKey(typ, id), name)})
	if err != nil {
		return "", false, err
	}
	r := replies[0]
	return r.Str, !r.Nil, nil
}

func (s *Store) Count(ctx context.Context, typ string) (int64, error) {
	return s.Index(typ).Card(ctx)
}

func toBag(fields map[string]string) Bag {
	if fields == nil {
		return Bag{}
	}
	return Bag(fields)
}
