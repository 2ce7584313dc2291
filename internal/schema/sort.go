package schema

import "sort"

// tableKey identifies a table within a run. Multi-schema runs can contain
// same-named tables in different schemas, so the bare name is not enough.
type tableKey struct {
	schema string
	name   string
}

func (k tableKey) less(other tableKey) bool {
	if k.name != other.name {
		return k.name < other.name
	}
	return k.schema < other.schema
}

// SortByDependency orders tables so that foreign-key targets come before the
// tables referencing them. Tables with no dependency relation between them are
// ordered by case-sensitive name, then schema. Foreign keys pointing at the
// table itself or at tables outside the input contribute no ordering.
//
// Cycles cannot be ordered; the tables involved are appended in name order so
// the result is still deterministic and contains every input table exactly once.
func SortByDependency(tables []Table) []Table {
	byKey := make(map[tableKey]*Table, len(tables))
	for i := range tables {
		byKey[tableKey{tables[i].Schema, tables[i].Name}] = &tables[i]
	}

	// deps[x] = set of tables x references and must come after
	deps := make(map[tableKey]map[tableKey]bool, len(tables))
	for i := range tables {
		t := &tables[i]
		key := tableKey{t.Schema, t.Name}
		deps[key] = make(map[tableKey]bool)
		for _, c := range t.Constraints {
			if c.Kind != ForeignKey || c.ForeignKeyRef == nil {
				continue
			}
			ref := tableKey{c.ForeignKeyRef.RefSchema, c.ForeignKeyRef.RefTable}
			if ref == key {
				continue
			}
			if _, ok := byKey[ref]; !ok {
				continue
			}
			deps[key][ref] = true
		}
	}

	remaining := make([]tableKey, 0, len(tables))
	for i := range tables {
		remaining = append(remaining, tableKey{tables[i].Schema, tables[i].Name})
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].less(remaining[j])
	})

	sorted := make([]Table, 0, len(tables))
	placed := make(map[tableKey]bool, len(tables))

	for len(remaining) > 0 {
		// Take the first table whose dependencies are all placed.
		picked := -1
		for i, key := range remaining {
			ready := true
			for dep := range deps[key] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				picked = i
				break
			}
		}
		if picked == -1 {
			// Cycle: emit the rest in name order.
			for _, key := range remaining {
				sorted = append(sorted, *byKey[key])
			}
			break
		}
		key := remaining[picked]
		remaining = append(remaining[:picked], remaining[picked+1:]...)
		placed[key] = true
		sorted = append(sorted, *byKey[key])
	}

	return sorted
}
