package glass

import "context"

// Edit overwrites the given fields of one record. Other fields and the
// record's rank stay as they are.
func (s *Store) Edit(ctx context.Context, typ string, id ID, changes []FieldValue) error {
	return s.Update(ctx, typ, id, changes, nil)
}

// Unset removes the named fields from one record's bag.
func (s *Store) Unset(ctx context.Context, typ string, id ID, names ...string) error {
	return s.Update(ctx, typ, id, nil, names)
}

// Update writes set and deletes unset in a single batch.
func (s *Store) Update(ctx context.Context, typ string, id ID, set []FieldValue, unset []string) error {
	if len(set) == 0 && len(unset) == 0 {
		return nil
	}
	if err := checkFieldNames(typ, set, unset); err != nil {
		return err
	}
	bagKey := BagKey(typ, id)
	cmds := make([]Cmd, 0, len(set)+len(unset))
	for _, f := range set {
		cmds = append(cmds, HSet(bagKey, f.Name, f.Value))
	}
	for _, name := range unset {
		cmds = append(cmds, HDel(bagKey, name))
	}
	if _, err := s.exec(ctx, "edit", typ, cmds); err != nil {
		return err
	}
	if s.verbose {
		s.sugar.Debugw("glass: EDIT", "type", typ, "id", id, "set", len(set), "unset", len(unset))
	}
	return nil
}
