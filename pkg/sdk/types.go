package apisearch

import (
	"github.com/apisearch-io/search-server-sub000/internal/domain/geo"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/aggregation"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/query"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/result"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/score"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/sortby"
)

// Query model.
type (
	Query           = query.Query
	QueryOption     = query.Option
	QueryOptions    = query.Options
	Filter          = filter.Filter
	ApplicationType = filter.ApplicationType
	FilterType      = filter.Type
	Aggregation     = aggregation.Aggregation
	AggregationSort = aggregation.Sort
	SortBy          = sortby.SortBy
	SortClause      = sortby.Clause
	SortOrder       = sortby.Order
	ScoreStrategy   = score.Strategy
	ScoreStrategies = score.Strategies
	Coordinate      = geo.Coordinate
)

// Result model.
type (
	Result            = result.Result
	Item              = result.Item
	AggregationResult = result.Aggregation
	Counter           = result.Counter
)

// Application types.
const (
	MustAll           = filter.MustAll
	MustAllWithLevels = filter.MustAllWithLevels
	AtLeastOne        = filter.AtLeastOne
	Exclude           = filter.Exclude
)

// Filter types.
const (
	FieldFilter         = filter.Field
	RangeFilter         = filter.Range
	RangeWithMinMax     = filter.RangeWithMinMax
	DateRangeFilter     = filter.DateRange
	DateRangeWithMinMax = filter.DateRangeWithMinMax
	GeoFilter           = filter.Geo
)

// Sort orders.
const (
	Asc  = sortby.Asc
	Desc = sortby.Desc
)

// Query construction.
var (
	NewQuery           = query.New
	NewFilter          = filter.New
	NewAggregation     = aggregation.New
	NewScoreStrategy   = score.New
	NewScoreStrategies = score.NewStrategies
	NewSortBy          = sortby.New
	ParseLocationRange = filter.ParseLocationRange
	ParseItemUUID      = query.ParseItemUUID
	DefaultOptions     = query.DefaultOptions
)

// Query options.
var (
	WithFilter          = query.WithFilter
	WithUniverseFilter  = query.WithUniverseFilter
	WithAggregation     = query.WithAggregation
	WithFields          = query.WithFields
	WithSortBy          = query.WithSortBy
	WithScoreStrategies = query.WithScoreStrategies
	WithFuzziness       = query.WithFuzziness
	WithMinScore        = query.WithMinScore
	WithQueryFields     = query.WithSearchableFields
	WithLikeItems       = query.WithLikeItems
	WithOptions         = query.WithOptions
	WithPage            = query.WithPage
	ScalarFuzziness     = query.ScalarFuzziness
	PerFieldFuzziness   = query.PerFieldFuzziness
)

// Sort clauses.
var (
	SortByScore    = sortby.ByScore
	SortByField    = sortby.ByField
	SortByFunction = sortby.ByFunction
	SortByDistance = sortby.ByDistance
	SortByNested   = sortby.ByNested
	SortByRandom   = sortby.ByRandom
)
