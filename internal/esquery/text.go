package esquery

import (
	"strconv"
	"strings"

	"github.com/olivere/elastic/v7"
	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// Free-text matching parameters.
const (
	textOperator           = "and"
	textTypeCrossFields    = "cross_fields"
	textTypeBestFields     = "best_fields"
	exactMatchingFuzziness = "AUTO"
)

// text builds the free-text predicate. Empty text matches everything.
func (fc filterCompiler) text(text string) elastic.Query {
	if text == "" {
		return elastic.NewMatchAllQuery()
	}

	fields := fc.searchableFields
	if len(fields) == 0 {
		fields = DefaultSearchableFields
	}

	if fc.fuzziness.IsPerField() {
		b := elastic.NewBoolQuery()
		for _, field := range fields {
			name, boost := splitBoost(field)
			m := elastic.NewMatchQuery(name, text).Operator(textOperator)
			if fz, ok := fc.fuzziness.For(field); ok {
				m.Fuzziness(fz)
			}
			if boost != 0 {
				m.Boost(boost)
			}
			b.Should(m)
		}
		return b.MinimumNumberShouldMatch(1)
	}

	mm := elastic.NewMultiMatchQuery(text, fields...).Operator(textOperator)
	if fz, ok := fc.fuzziness.Scalar(); ok {
		return mm.Type(textTypeBestFields).Fuzziness(fz)
	}
	return mm.Type(textTypeCrossFields)
}

// splitBoost reads "field^3" into ("field", 3). Zero means no boost.
func splitBoost(field string) (string, float64) {
	name, raw, ok := strings.Cut(field, "^")
	if !ok {
		return field, 0
	}
	boost, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return name, 0
	}
	return name, boost
}

// exactMatching requires every word of every value on the exact-matching
// field, as a phrase or, when allowed, fuzzily.
func (fc filterCompiler) exactMatching(f filter.Filter) elastic.Query {
	b := elastic.NewBoolQuery()
	words := 0
	for _, v := range f.Values() {
		for _, word := range strings.Fields(cast.ToString(v)) {
			if fc.exactFuzzy {
				b.Must(elastic.NewMatchQuery(ExactMatchingField, word).Fuzziness(exactMatchingFuzziness))
			} else {
				b.Must(elastic.NewMatchPhraseQuery(ExactMatchingField, word))
			}
			words++
		}
	}
	if words == 0 {
		return nil
	}
	return b
}
