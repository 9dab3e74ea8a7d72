package glass

import "context"

// Insert appends id to typ's ordering index and writes fields into its bag.
// A nil id is replaced with a fresh one; the id used is returned.
//
// Inserting under an id that is already indexed moves it to the end of the
// index (rank = cardinality + 1) and overwrites the supplied fields, leaving
// other existing fields in place. With Options.IdempotentInsert the rank is
// kept instead.
func (s *Store) Insert(ctx context.Context, typ string, id ID, fields []FieldValue) (ID, error) {
	if err := checkFieldNames(typ, fields, nil); err != nil {
		return NilID, err
	}
	if id.IsNil() {
		id = NewID()
	}
	idxKey, bagKey, member := IndexKey(typ), BagKey(typ, id), id.String()

	probe := []Cmd{ZCard(idxKey)}
	if s.idempotentInsert {
		probe = append(probe, ZScore(idxKey, member))
	}
	replies, err := s.exec(ctx, "insert", typ, probe)
	if err != nil {
		return NilID, err
	}
	rank := replies[0].Int + 1
	indexed := s.idempotentInsert && !replies[1].Nil
	if indexed {
		rank = int64(replies[1].Score)
	}

	cmds := make([]Cmd, 0, len(fields)+1)
	if !indexed {
		cmds = append(cmds, ZAdd(idxKey, float64(rank), member))
	}
	for _, f := range fields {
		cmds = append(cmds, HSet(bagKey, f.Name, f.Value))
	}
	if len(cmds) > 0 {
		if _, err := s.exec(ctx, "insert", typ, cmds); err != nil {
			return NilID, err
		}
	}
	if s.verbose {
		s.sugar.Debugw("glass: INSERT", "type", typ, "id", id, "rank", rank, "fields", len(fields), "reindexed", !indexed)
	}
	return id, nil
}
