package schema

// FlattenAllButOne implements spec.md §4.2's "FlattenAllButOne(groups,
// schema) -- among the unflat subset, keep the first; return the rest as
// 'must flatten'." Used by filter, projection, limit/skip: these preserve
// one unflat axis.
func FlattenAllButOne(groups []int, s *FactorizedSchema) []int {
	unflat := s.UnflatGroupsAmong(groups)
	if len(unflat) <= 1 {
		return nil
	}
	return unflat[1:]
}

// FlattenAll implements spec.md §4.2's "FlattenAll(groups, schema) --
// flatten every unflat member." Used by aggregate, order-by, unwind,
// copy-to, merge: these require materialization boundaries.
func FlattenAll(groups []int, s *FactorizedSchema) []int {
	return s.UnflatGroupsAmong(groups)
}
