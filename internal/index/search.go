package index

import (
	"sort"
	"strings"

	"github.com/nikbrunner/markdex/internal/model"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 50

// Search field identifiers.
const (
	FieldTitle       = "title"
	FieldURL         = "url"
	FieldTags        = "tags"
	FieldDescription = "description"
)

// Relative weights applied to per-field match scores.
const (
	titleWeight       = 1.5
	urlWeight         = 1.0
	descriptionWeight = 0.5
	tagBonus          = 1.0
)

// SearchOptions controls matching behavior. The zero value searches title
// and url, case-insensitively, with exact substring matching.
type SearchOptions struct {
	CaseSensitive bool
	Fuzzy         bool
	Limit         int
	// Fields restricts which fields are scored. Empty means title + url.
	Fields        []string
	BookmarksOnly bool
	FoldersOnly   bool
}

// SearchResult pairs a matched item with its aggregate score.
type SearchResult struct {
	Item  *model.Item
	Score float64
}

// Search scans all indexed items and scores each requested field against the
// query. An item matches when at least one field scores above zero; its
// aggregate score is the weighted sum averaged over the matched fields.
// Results come back best first, truncated to the limit.
func (ix *Index) Search(query string, opts SearchOptions) []SearchResult {
	if query == "" {
		return nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldURL}
	}

	q := query
	if !opts.CaseSensitive {
		q = strings.ToLower(q)
	}

	var results []SearchResult
	for _, it := range ix.items {
		if opts.BookmarksOnly && !it.IsBookmark() {
			continue
		}
		if opts.FoldersOnly && !it.IsFolder() {
			continue
		}

		var total float64
		matched := 0
		for _, field := range fields {
			score := ix.scoreField(it, field, q, opts)
			if score > 0 {
				total += score
				matched++
			}
		}
		if matched == 0 {
			continue
		}

		results = append(results, SearchResult{Item: it, Score: total / float64(matched)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// scoreField returns the weighted match score for one field, 0 for no match.
func (ix *Index) scoreField(it *model.Item, field, query string, opts SearchOptions) float64 {
	switch field {
	case FieldTitle:
		return titleWeight * matchScore(fold(it.Title, opts), query, opts.Fuzzy)
	case FieldURL:
		return urlWeight * matchScore(fold(it.URL, opts), query, opts.Fuzzy)
	case FieldDescription:
		return descriptionWeight * matchScore(fold(it.Description, opts), query, opts.Fuzzy)
	case FieldTags:
		for _, tag := range it.Tags {
			if strings.Contains(fold(tag, opts), query) {
				return tagBonus
			}
		}
	}
	return 0
}

func fold(text string, opts SearchOptions) string {
	if opts.CaseSensitive {
		return text
	}
	return strings.ToLower(text)
}

// matchScore computes a single-field score. Exact mode: substring presence,
// rewarding prefix position. Fuzzy mode: subsequence match scored on
// completeness, contiguity and length ratio.
func matchScore(text, query string, fuzzy bool) float64 {
	if text == "" || query == "" {
		return 0
	}
	if fuzzy {
		return fuzzyScore(text, query)
	}
	idx := strings.Index(text, query)
	switch {
	case idx == 0:
		return 1.0
	case idx > 0:
		return 0.8
	default:
		return 0
	}
}

// fuzzyScore matches query as a subsequence of text, greedily consuming the
// next identical rune. The score rewards the share of query matched (always
// full on success), the longest consecutive run, and how much of the text
// the query covers. Returns 0 when query is not a subsequence of text.
func fuzzyScore(text, query string) float64 {
	tr := []rune(text)
	qr := []rune(query)

	matched := 0
	run := 0
	maxRun := 0
	ti := 0
	for _, qc := range qr {
		found := false
		for ti < len(tr) {
			if tr[ti] == qc {
				found = true
				ti++
				break
			}
			ti++
			run = 0
		}
		if !found {
			return 0
		}
		matched++
		run++
		if run > maxRun {
			maxRun = run
		}
	}

	qlen := float64(len(qr))
	tlen := float64(len(tr))
	coverage := qlen / tlen
	if coverage > 1 {
		coverage = 1
	}
	return 0.5*(float64(matched)/qlen) + 0.3*(float64(maxRun)/qlen) + 0.2*coverage
}
