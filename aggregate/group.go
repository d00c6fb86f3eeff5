package aggregate

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/nao1215/moviestat/domain/model"
)

// TallyMultivalued counts the tokens of a column. List columns contribute one
// token per element, single-valued columns their whole value. Empty tokens are
// skipped. The result is ordered by count, descending; equal counts keep the
// order in which the tokens first appear.
func TallyMultivalued(movies model.Movies, column string) ([]model.TokenCount, error) {
	c, err := model.ParseColumn(column)
	if err != nil {
		return nil, err
	}

	var out []model.TokenCount
	index := make(map[string]int)
	for _, m := range movies {
		for _, tok := range m.Tokens(c) {
			if i, ok := index[tok]; ok {
				out[i].Count++
				continue
			}
			index[tok] = len(out)
			out = append(out, model.TokenCount{Token: tok, Count: 1})
		}
	}

	slices.SortStableFunc(out, func(a, b model.TokenCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out, nil
}

// Top returns at most n leading entries of a tally. n <= 0 returns the full tally.
func Top(tally []model.TokenCount, n int) []model.TokenCount {
	if n <= 0 || n >= len(tally) {
		return slices.Clone(tally)
	}
	return slices.Clone(tally[:n])
}

// GroupSum sums a numeric column per distinct key of the grouping column.
// List grouping columns contribute the row to every token. Rows with a missing
// value are not counted. Keys are ordered ascending, numerically when every key
// is a number.
func GroupSum(movies model.Movies, by, value string) ([]model.GroupTotal, error) {
	cb, err := model.ParseColumn(by)
	if err != nil {
		return nil, err
	}
	cv, err := model.ParseNumericColumn(value)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*model.GroupTotal)
	for _, m := range movies {
		v, ok := m.NumericValue(cv)
		if !ok {
			continue
		}
		for _, key := range m.Tokens(cb) {
			g, exists := groups[key]
			if !exists {
				g = &model.GroupTotal{Key: key}
				groups[key] = g
			}
			g.Total += v
			g.Count++
		}
	}

	out := make([]model.GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sortByKey(out, func(g model.GroupTotal) string { return g.Key })
	return out, nil
}

// MaxGroup returns the group with the largest total. Ties resolve to the first
// group in key order. An empty input fails with model.ErrEmptyAggregateDomain.
func MaxGroup(groups []model.GroupTotal) (model.GroupTotal, error) {
	if len(groups) == 0 {
		return model.GroupTotal{}, model.ErrEmptyAggregateDomain
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.Total > best.Total {
			best = g
		}
	}
	return best, nil
}

// MostFrequentPerGroup finds, for every key of the grouping column, the category
// token seen most often. Ties resolve to the lexically smallest token, as when
// the (key, token) counts are sorted before the maximum is taken. The result is
// ordered by key as in GroupSum.
func MostFrequentPerGroup(movies model.Movies, by, category string) ([]model.GroupMode, error) {
	cb, err := model.ParseColumn(by)
	if err != nil {
		return nil, err
	}
	cc, err := model.ParseColumn(category)
	if err != nil {
		return nil, err
	}

	// per group, tallies in first-seen order
	type group struct {
		tally []model.TokenCount
		index map[string]int
	}
	groups := make(map[string]*group)
	for _, m := range movies {
		cats := m.Tokens(cc)
		if len(cats) == 0 {
			continue
		}
		for _, key := range m.Tokens(cb) {
			g, ok := groups[key]
			if !ok {
				g = &group{index: make(map[string]int)}
				groups[key] = g
			}
			for _, tok := range cats {
				if i, seen := g.index[tok]; seen {
					g.tally[i].Count++
					continue
				}
				g.index[tok] = len(g.tally)
				g.tally = append(g.tally, model.TokenCount{Token: tok, Count: 1})
			}
		}
	}

	out := make([]model.GroupMode, 0, len(groups))
	for key, g := range groups {
		best := g.tally[0]
		for _, tc := range g.tally[1:] {
			if tc.Count > best.Count || (tc.Count == best.Count && tc.Token < best.Token) {
				best = tc
			}
		}
		out = append(out, model.GroupMode{Key: key, Category: best.Token, Count: best.Count})
	}
	sortByKey(out, func(g model.GroupMode) string { return g.Key })
	return out, nil
}

// sortByKey orders items ascending by key, numerically when every key parses as
// a number and lexically otherwise.
func sortByKey[T any](items []T, key func(T) string) {
	numeric := true
	nums := make(map[string]float64, len(items))
	for _, it := range items {
		k := key(it)
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[k] = f
	}

	slices.SortFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		if numeric {
			if c := cmp.Compare(nums[ka], nums[kb]); c != 0 {
				return c
			}
		}
		return cmp.Compare(ka, kb)
	})
}
