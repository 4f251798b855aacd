// Package score models relevance scoring strategies attached to a query.
package score

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cast"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
)

// Type selects the scoring function of a strategy.
type Type string

// Strategy types.
const (
	Default            Type = "default"
	BoostingFieldValue Type = "boosting_field_value"
	Decay              Type = "decay"
	CustomFunction     Type = "custom_function"
	Weight             Type = "weight"
	WeightMultiFilter  Type = "weight_multi_filter"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case Default, BoostingFieldValue, Decay, CustomFunction, Weight, WeightMultiFilter:
		return true
	}
	return false
}

// Mode combines the functions of the coupled strategies.
type Mode string

// Combination modes.
const (
	Sum      Mode = "sum"
	Multiply Mode = "multiply"
)

// Nested score modes.
const (
	NestedAvg  = "avg"
	NestedSum  = "sum"
	NestedMax  = "max"
	NestedMin  = "min"
	NestedNone = "none"
)

// Decay curves.
const (
	DecayGauss  = "gauss"
	DecayLinear = "linear"
	DecayExp    = "exp"
)

// Configuration keys.
const (
	ConfigField    = "field"
	ConfigFactor   = "factor"
	ConfigModifier = "modifier"
	ConfigMissing  = "missing"
	ConfigType     = "type"
	ConfigOrigin   = "origin"
	ConfigScale    = "scale"
	ConfigOffset   = "offset"
	ConfigDecay    = "decay"
	ConfigFunction = "function"
)

// DefaultWeight is used for non-positive weights.
const DefaultWeight = 1.0

// Strategy is one unit of the scoring pipeline.
type Strategy struct {
	strategyType   Type
	weight         float64
	filters        []filter.Filter
	config         map[string]any
	scoreMode      string
	matchMainQuery bool
}

// New validates and creates a Strategy.
func New(
	t Type, weight float64, filters []filter.Filter,
	config map[string]any, scoreMode string, matchMainQuery bool,
) (Strategy, error) {
	if !t.IsValid() {
		return Strategy{}, fmt.Errorf("invalid score strategy type %q", t)
	}
	if weight <= 0 {
		weight = DefaultWeight
	}
	switch scoreMode {
	case "":
		scoreMode = NestedAvg
	case NestedAvg, NestedSum, NestedMax, NestedMin, NestedNone:
	default:
		return Strategy{}, fmt.Errorf("invalid score mode %q", scoreMode)
	}

	s := Strategy{
		strategyType:   t,
		weight:         weight,
		filters:        append([]filter.Filter(nil), filters...),
		config:         maps.Clone(config),
		scoreMode:      scoreMode,
		matchMainQuery: matchMainQuery,
	}

	switch t {
	case BoostingFieldValue, Decay:
		if s.Field() == "" {
			return Strategy{}, fmt.Errorf("%s strategy: %q is required", t, ConfigField)
		}
	case CustomFunction:
		if s.ConfigString(ConfigFunction, "") == "" {
			return Strategy{}, fmt.Errorf("%s strategy: %q is required", t, ConfigFunction)
		}
	case Weight:
		if len(filters) > 1 {
			return Strategy{}, fmt.Errorf("%s strategy takes a single filter, use %s", t, WeightMultiFilter)
		}
	}
	if t == Decay {
		switch s.DecayType() {
		case DecayGauss, DecayLinear, DecayExp:
		default:
			return Strategy{}, fmt.Errorf("decay strategy: invalid curve %q", s.DecayType())
		}
		if _, ok := s.Config(ConfigScale); !ok {
			return Strategy{}, fmt.Errorf("decay strategy: %q is required", ConfigScale)
		}
	}
	return s, nil
}

// NewDefault creates the no-op strategy.
func NewDefault() Strategy {
	return Strategy{strategyType: Default, weight: DefaultWeight, scoreMode: NestedAvg, matchMainQuery: true}
}

// Type returns the strategy type.
func (s Strategy) Type() Type { return s.strategyType }

// Weight returns the strategy weight.
func (s Strategy) Weight() float64 { return s.weight }

// Filters returns the gating filters.
func (s Strategy) Filters() []filter.Filter { return s.filters }

// ScoreMode returns the nested score mode.
func (s Strategy) ScoreMode() string { return s.scoreMode }

// MatchMainQuery reports whether the strategy only boosts main query matches.
func (s Strategy) MatchMainQuery() bool { return s.matchMainQuery }

// Config returns the raw configuration value for key.
func (s Strategy) Config(key string) (any, bool) {
	v, ok := s.config[key]
	return v, ok
}

// ConfigString returns config[key] as string, or def when absent.
func (s Strategy) ConfigString(key, def string) string {
	v, ok := s.config[key]
	if !ok || v == nil {
		return def
	}
	return cast.ToString(v)
}

// ConfigFloat returns config[key] as float64, or def when absent or not numeric.
func (s Strategy) ConfigFloat(key string, def float64) float64 {
	v, ok := s.config[key]
	if !ok || v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// Field returns the target field.
func (s Strategy) Field() string { return s.ConfigString(ConfigField, "") }

// DecayType returns the decay curve, gauss by default.
func (s Strategy) DecayType() string {
	return strings.ToLower(s.ConfigString(ConfigType, DecayGauss))
}

// NestedPath returns the nested container of the target field: the field
// without its last segment when it has three or more segments.
func (s Strategy) NestedPath() (string, bool) {
	field := s.Field()
	segments := strings.Split(field, ".")
	if len(segments) < 3 {
		return "", false
	}
	return strings.Join(segments[:len(segments)-1], "."), true
}

// Strategies is the ordered scoring pipeline of a query.
type Strategies struct {
	mode       Mode
	strategies []Strategy
}

// NewStrategies validates and creates Strategies. Empty mode defaults to sum.
func NewStrategies(mode Mode, strategies ...Strategy) (Strategies, error) {
	switch mode {
	case "":
		mode = Sum
	case Sum, Multiply:
	default:
		return Strategies{}, fmt.Errorf("invalid score mode %q", mode)
	}
	return Strategies{mode: mode, strategies: append([]Strategy(nil), strategies...)}, nil
}

// Mode returns the combination mode.
func (s Strategies) Mode() Mode { return s.mode }

// All returns every strategy in order.
func (s Strategies) All() []Strategy { return s.strategies }

// IsEmpty reports whether there are no strategies.
func (s Strategies) IsEmpty() bool { return len(s.strategies) == 0 }

// Coupled returns the strategies scoring main query matches.
func (s Strategies) Coupled() []Strategy {
	return s.partition(true)
}

// Independent returns the strategies boosting on their own.
func (s Strategies) Independent() []Strategy {
	return s.partition(false)
}

func (s Strategies) partition(matchMainQuery bool) []Strategy {
	var out []Strategy
	for _, st := range s.strategies {
		if st.matchMainQuery == matchMainQuery {
			out = append(out, st)
		}
	}
	return out
}
