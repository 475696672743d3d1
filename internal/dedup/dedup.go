// Package dedup collapses payroll records describing the same payroll event.
//
// Two records are duplicates when they share a domain.DuplicateKey: the same
// employee, employer and pay period. Amounts are not part of the key, so a
// corrected re-submission with different totals still collapses onto the
// original. One representative is kept per group, chosen by Prefer.
package dedup

import (
	"sort"
	"strings"

	"nominacli/pkg/contracts/domain"
)

// Result is the outcome of deduplicating one batch.
type Result struct {
	// Records holds one representative per group, ordered by key.
	Records []domain.EmployeeRecord

	// Groups lists every group ordered by key, singletons included.
	Groups []domain.DuplicateGroup

	// Collapsed is the number of records discarded as duplicates.
	Collapsed int

	// Absorptions has one entry per discarded record.
	Absorptions []domain.Absorption
}

// Prefer reports whether a should represent a duplicate group over b:
// a record without a consistency warning beats one with a warning, then the
// lexicographically later document source wins, then the smaller content
// fingerprint. Records equal under all three rules have identical content.
func Prefer(a, b domain.EmployeeRecord) bool {
	if a.ConsistencyWarning != b.ConsistencyWarning {
		return !a.ConsistencyWarning
	}
	if c := strings.Compare(a.DocumentSource, b.DocumentSource); c != 0 {
		return c > 0
	}
	return a.Fingerprint() < b.Fingerprint()
}

// Deduplicate partitions records into duplicate groups. The result is the
// same for every permutation of the input.
func Deduplicate(records []domain.EmployeeRecord) Result {
	buckets := make(map[domain.DuplicateKey][]domain.EmployeeRecord)
	keys := make([]domain.DuplicateKey, 0)
	for _, r := range records {
		k := r.Key()
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	res := Result{
		Records:     make([]domain.EmployeeRecord, 0, len(keys)),
		Groups:      make([]domain.DuplicateGroup, 0, len(keys)),
		Absorptions: make([]domain.Absorption, 0),
	}
	for _, k := range keys {
		members := buckets[k]
		// Stable keeps first-encountered order among identical records.
		sort.SliceStable(members, func(i, j int) bool { return Prefer(members[i], members[j]) })

		rep := members[0]
		group := domain.DuplicateGroup{Key: k, Representative: rep}
		if len(members) > 1 {
			group.Absorbed = append([]domain.EmployeeRecord(nil), members[1:]...)
			repFingerprint := rep.Fingerprint()
			for _, m := range group.Absorbed {
				res.Absorptions = append(res.Absorptions, domain.Absorption{
					Key:                       k,
					DiscardedFingerprint:      m.Fingerprint(),
					DiscardedSource:           m.DocumentSource,
					RepresentativeFingerprint: repFingerprint,
					RepresentativeSource:      rep.DocumentSource,
				})
			}
			res.Collapsed += len(group.Absorbed)
		}

		res.Records = append(res.Records, rep)
		res.Groups = append(res.Groups, group)
	}
	return res
}
