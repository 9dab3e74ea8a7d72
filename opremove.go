package glass

import "context"

// Remove deletes id from typ's ordering index together with every field its
// bag currently holds. Removing an unknown id is not an error.
func (s *Store) Remove(ctx context.Context, typ string, id ID) error {
	bagKey := BagKey(typ, id)
	replies, err := s.exec(ctx, "remove", typ, []Cmd{HKeys(bagKey)})
	if err != nil {
		return err
	}
	keys := replies[0].Strs

	cmds := make([]Cmd, 0, len(keys)+1)
	cmds = append(cmds, ZRem(IndexKey(typ), id.String()))
	for _, k := range keys {
		cmds = append(cmds, HDel(bagKey, k))
	}
	replies, err = s.exec(ctx, "remove", typ, cmds)
	if err != nil {
		return err
	}
	if s.verbose {
		s.sugar.Debugw("glass: REMOVE", "type", typ, "id", id, "unindexed", replies[0].Int, "fields", len(keys))
	}
	return nil
}
