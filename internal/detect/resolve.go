package detect

import "sort"

// Resolve reduces a candidate list with possible span intersections to a
// non-overlapping subset preferring higher confidence.
//
// Candidates are processed in ascending Start order (stable sort, so ties
// keep their pass order). Each candidate is checked against the accepted
// list and only the FIRST overlapping accepted entity is considered: a
// strictly higher-confidence candidate replaces it in place, anything else
// is discarded. One conflict per candidate is a deliberate simplification;
// the output is non-overlapping by construction but not the global
// confidence-maximizing interval schedule.
func Resolve(candidates []Entity) []Entity {
	sorted := make([]Entity, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	accepted := make([]Entity, 0, len(sorted))
	for _, cand := range sorted {
		conflicted := false
		for i := range accepted {
			if cand.Overlaps(accepted[i]) {
				if cand.Confidence > accepted[i].Confidence {
					accepted[i] = cand
				}
				conflicted = true
				break
			}
		}
		if !conflicted {
			accepted = append(accepted, cand)
		}
	}
	return accepted
}
