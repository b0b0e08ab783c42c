package analytics

import "sort"

// Orderings a report may request. The engine itself guarantees no
// ordering beyond ascending key; these helpers are the post-hoc sorts.
const (
	SortByRevenue = "revenue"
	SortByAOV     = "aov"
	SortByUnits   = "units"
	SortByKey     = "key"
)

// ValidSortBy reports whether name is a supported report ordering.
func ValidSortBy(name string) bool {
	switch name {
	case SortByRevenue, SortByAOV, SortByUnits, SortByKey:
		return true
	}
	return false
}

// SortGroups orders rows in place: metric descending, with ties broken
// by ascending group key. The tiebreak makes every ordering total and
// stable across runs; groups with a null metric (undefined AOV) sort
// after all defined values. Unknown sortBy falls back to key order.
func SortGroups(rows []GroupRow, sortBy string) {
	less := func(i, j int) bool {
		return rows[i].Key.mapKey() < rows[j].Key.mapKey()
	}

	switch sortBy {
	case SortByRevenue:
		less = func(i, j int) bool {
			cmp := rows[i].Metrics.Revenue.Cmp(rows[j].Metrics.Revenue)
			if cmp != 0 {
				return cmp > 0
			}
			return rows[i].Key.mapKey() < rows[j].Key.mapKey()
		}
	case SortByAOV:
		less = func(i, j int) bool {
			a, b := rows[i].Metrics.AOV, rows[j].Metrics.AOV
			switch {
			case a.Valid && !b.Valid:
				return true
			case !a.Valid && b.Valid:
				return false
			case a.Valid && b.Valid:
				if cmp := a.Decimal.Cmp(b.Decimal); cmp != 0 {
					return cmp > 0
				}
			}
			return rows[i].Key.mapKey() < rows[j].Key.mapKey()
		}
	case SortByUnits:
		less = func(i, j int) bool {
			if rows[i].Metrics.UnitCount != rows[j].Metrics.UnitCount {
				return rows[i].Metrics.UnitCount > rows[j].Metrics.UnitCount
			}
			return rows[i].Key.mapKey() < rows[j].Key.mapKey()
		}
	}

	sort.SliceStable(rows, less)
}

// TopN truncates rows to the first n entries; n <= 0 keeps all rows.
func TopN(rows []GroupRow, n int) []GroupRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
