// Package esresult rebuilds domain results from Elasticsearch responses.
package esresult

import (
	"github.com/olivere/elastic/v7"
	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	"github.com/apisearch-io/search-server-sub000/internal/esquery"
)

// Metadata keys of range aggregations with min/max.
const (
	MetadataMin = "min"
	MetadataMax = "max"
)

// Assemble reconstructs the faceting result of q from the raw aggregation
// payload. Aggregations missing from the payload are left out.
func Assemble(q query.Query, raw elastic.Aggregations) *result.Aggregations {
	all, ok := raw.Global(esquery.GlobalAggregation)
	if !ok {
		return result.NewAggregations(0)
	}
	universe, ok := all.Aggregations.Filter(esquery.UniverseAggregation)
	if !ok {
		return result.NewAggregations(all.DocCount)
	}

	out := result.NewAggregations(universe.DocCount)
	for _, a := range q.Aggregations() {
		scoped, ok := universe.Aggregations.Filter(a.Name())
		if !ok {
			continue
		}
		agg := result.NewAggregation(a.Name(), a.ApplicationType(), scoped.DocCount, activeElements(q, a.Name()))

		if minimum, maximum, ok := minMax(scoped); ok {
			if minimum.Value != nil {
				agg.SetMetadata(MetadataMin, *minimum.Value)
			}
			if maximum.Value != nil {
				agg.SetMetadata(MetadataMax, *maximum.Value)
			}
			out.Add(agg)
			continue
		}

		for i, b := range buckets(universe, scoped, a.Name()) {
			key := bucketKey(b, i)
			if !a.InSubgroup(key) {
				continue
			}
			agg.AddCounter(key, b.DocCount)
		}
		if a.ApplicationType().IsLeveled() {
			agg.CleanByLevel()
		}
		out.Add(agg)
	}
	return out
}

// activeElements returns the values of the result filter named name.
func activeElements(q query.Query, name string) []string {
	f, ok := q.Filter(name)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(f.Values()))
	for _, v := range f.Values() {
		out = append(out, cast.ToString(v))
	}
	return out
}

func minMax(scoped *elastic.AggregationSingleBucket) (*elastic.AggregationValueMetric, *elastic.AggregationValueMetric, bool) {
	minimum, okMin := scoped.Aggregations.Min(esquery.MinAggregation)
	maximum, okMax := scoped.Aggregations.Max(esquery.MaxAggregation)
	return minimum, maximum, okMin && okMax
}

// buckets finds the bucket list either under the aggregation's own name or
// directly on the scoped node.
func buckets(universe, scoped *elastic.AggregationSingleBucket, name string) []*elastic.AggregationBucketKeyItem {
	if inner, ok := scoped.Aggregations.Terms(name); ok {
		return inner.Buckets
	}
	if _, ok := scoped.Aggregations["buckets"]; ok {
		if flat, ok := universe.Aggregations.Terms(name); ok {
			return flat.Buckets
		}
	}
	return nil
}

// bucketKey prefers key_as_string, then key, then the bucket position.
func bucketKey(b *elastic.AggregationBucketKeyItem, i int) string {
	if b.KeyAsString != nil {
		return *b.KeyAsString
	}
	if b.Key != nil {
		return cast.ToString(b.Key)
	}
	return cast.ToString(i)
}
