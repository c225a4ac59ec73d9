package sync

import "lifeweeks/internal/snapshot"

// Merge combines a local and a remote snapshot additively. Marks are
// unioned keyed by id: a mark present on both sides takes the remote's
// fields (remote precedence) but keeps its local position; remote-only marks
// are appended in remote order. Distinct ids always both survive, so a
// legitimate duplicate entry is never collapsed. Marks with no id (written
// by builds that predate ids) cannot be matched by key, so they dedupe by
// full structural equality instead: an id-less mark is appended unless an
// identical one is already present. Settings scalars take the remote value
// when the remote has one. Merging the same remote snapshot twice yields
// the same result as merging it once.
func Merge(local, remote *snapshot.Snapshot) *snapshot.Snapshot {
	out := &snapshot.Snapshot{
		FormatVersion:       snapshot.FormatVersion,
		BirthDate:           local.BirthDate,
		LifeExpectancyYears: local.LifeExpectancyYears,
	}

	if remote.BirthDate != "" {
		out.BirthDate = remote.BirthDate
	}
	if snapshot.ValidExpectancy(remote.LifeExpectancyYears) {
		out.LifeExpectancyYears = remote.LifeExpectancyYears
	}
	if out.LifeExpectancyYears == 0 {
		out.LifeExpectancyYears = snapshot.DefaultLifeExpectancyYears
	}

	byID := make(map[string]int, len(local.Marks))
	out.Marks = make([]snapshot.Mark, 0, len(local.Marks)+len(remote.Marks))
	for _, m := range local.Marks {
		if m.ID != "" {
			byID[m.ID] = len(out.Marks)
		}
		out.Marks = append(out.Marks, m)
	}
	for _, m := range remote.Marks {
		if m.ID == "" {
			if !containsMark(out.Marks, m) {
				out.Marks = append(out.Marks, m)
			}
			continue
		}
		if i, ok := byID[m.ID]; ok {
			out.Marks[i] = m
			continue
		}
		byID[m.ID] = len(out.Marks)
		out.Marks = append(out.Marks, m)
	}

	return out
}

func containsMark(ms []snapshot.Mark, m snapshot.Mark) bool {
	for i := range ms {
		if ms[i] == m {
			return true
		}
	}
	return false
}
