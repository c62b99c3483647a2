package service

import (
	"sort"
	"strings"

	"po-service/internal/order/model"
)

type RankOptions struct {
	// Candidates must score strictly above Threshold to survive.
	Threshold float64
	// Limit caps the returned list.
	Limit int
}

func (o RankOptions) withDefaults() RankOptions {
	if o.Threshold == 0 {
		o.Threshold = 80
	}
	if o.Limit <= 0 {
		o.Limit = 30
	}
	return o
}

// Rank scores every catalog entry against the product query and returns
// the survivors in descending score order, ties kept in catalog insertion
// order. Each query token found verbatim in an entry's search text
// outweighs any fuzzy score; the fuzzy part is the partial-alignment
// ratio of the whole query against the search text.
//
// The result is deterministic for a given query and catalog, and empty
// when nothing clears the threshold.
func Rank(query string, cat *model.Catalog, opt RankOptions) []model.Candidate {
	opt = opt.withDefaults()

	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	queryTokens := strings.Fields(query)

	scored := make([]model.Candidate, 0, opt.Limit)
	for _, e := range cat.Entries {
		tokenScore := 0
		for _, t := range queryTokens {
			if strings.Contains(e.SearchText, t) {
				tokenScore++
			}
		}
		total := float64(tokenScore)*100 + partialRatio(query, e.SearchText)
		if total > opt.Threshold {
			scored = append(scored, model.Candidate{Entry: e, Score: total})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) > opt.Limit {
		scored = scored[:opt.Limit]
	}
	return scored
}
