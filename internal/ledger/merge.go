package ledger

// MergeReport summarises what a merge changed.
type MergeReport struct {
	Matched    int // incoming entities folded into an existing one
	Added      int // incoming entities appended under a new id
	LineItems  int // line items carried over into matched entities
	Duplicates int // incoming line items dropped because their id already existed
}

// Merge folds incoming into local and returns the result; neither input is modified.
//
// Each incoming entity, in order, is matched against the collection as updated
// so far. A match receives every incoming line item whose id it does not already
// hold, and fills its empty identity fields from the incoming side. Anything
// unmatched is appended under a fresh id. Local data wins every conflict, so
// Merge is not commutative.
func (en *Engine) Merge(local, incoming Collection) (Collection, MergeReport) {
	out := local.Clone()

	var report MergeReport

	for _, in := range incoming.Entities {
		idx := -1

		for i := range out.Entities {
			if SameEntity(out.Entities[i], in) {
				idx = i
				break
			}
		}

		if idx < 0 {
			added := in.Clone()
			added.ID = en.newID()
			added.LineItems = dedupeItems(added.LineItems)
			out.Entities = append(out.Entities, en.Recompute(added))
			report.Added++

			continue
		}

		merged, carried, dropped := mergeEntity(out.Entities[idx], in)
		out.Entities[idx] = en.Recompute(merged)
		report.Matched++
		report.LineItems += carried
		report.Duplicates += dropped
	}

	return out, report
}

// mergeEntity unions line items by id and resolves scalar fields with
// first-non-empty-wins, local first. local is already a private copy.
func mergeEntity(local, incoming Entity) (Entity, int, int) {
	seen := make(map[string]struct{}, len(local.LineItems)+len(incoming.LineItems))
	for _, li := range local.LineItems {
		seen[li.ID] = struct{}{}
	}

	var carried, dropped int

	for _, li := range incoming.LineItems {
		if _, ok := seen[li.ID]; ok {
			dropped++
			continue
		}

		seen[li.ID] = struct{}{}
		local.LineItems = append(local.LineItems, li.Clone())
		carried++
	}

	local.Email = firstNonEmpty(local.Email, incoming.Email)
	local.Photo = firstNonEmpty(local.Photo, incoming.Photo)
	local.Address.Street = firstNonEmpty(local.Address.Street, incoming.Address.Street)
	local.Address.City = firstNonEmpty(local.Address.City, incoming.Address.City)
	local.Category = EntityCategory(firstNonEmpty(string(local.Category), string(incoming.Category)))

	return local, carried, dropped
}

func dedupeItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return items
	}

	seen := make(map[string]struct{}, len(items))
	out := items[:0]

	for _, li := range items {
		if _, ok := seen[li.ID]; ok {
			continue
		}

		seen[li.ID] = struct{}{}
		out = append(out, li)
	}

	return out
}

func firstNonEmpty(local, incoming string) string {
	if local != "" {
		return local
	}

	return incoming
}
