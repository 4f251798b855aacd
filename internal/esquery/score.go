package esquery

import (
	"fmt"

	"github.com/olivere/elastic/v7"

	"github.com/apisearch-io/search-server-sub000/internal/domain/search/filter"
	"github.com/apisearch-io/search-server-sub000/internal/domain/search/score"
)

// Field value factor defaults.
const (
	defaultFactor   = 1.0
	defaultModifier = "none"
	defaultMissing  = 0.0
	defaultDecay    = 0.5
)

// scoreCompiler turns score strategies into function_score pipelines.
type scoreCompiler struct {
	filters filterCompiler
}

// compile wraps base with the coupled strategies. Functions on fields
// inside a nested container are applied within a nested query OR-ed next
// to base, so their score is always added to the base score whatever the
// combination mode. The mode then applies between the flat functions and
// that sum.
func (sc scoreCompiler) compile(strategies score.Strategies, base elastic.Query) (elastic.Query, error) {
	mode := string(strategies.Mode())
	fsq := elastic.NewFunctionScoreQuery().ScoreMode(mode).BoostMode(mode)
	functions := 0
	var nested []elastic.Query

	for _, s := range strategies.Coupled() {
		fn, err := scoreFunction(s)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			continue
		}
		gate, err := sc.gate(s.Filters())
		if err != nil {
			return nil, err
		}

		if path, ok := s.NestedPath(); ok {
			inner := elastic.NewFunctionScoreQuery()
			if gate != nil {
				inner.Query(gate)
			} else {
				inner.Query(elastic.NewMatchAllQuery())
			}
			inner.AddScoreFunc(fn)
			nested = append(nested, elastic.NewNestedQuery(path, inner).ScoreMode(s.ScoreMode()))
			continue
		}

		if gate != nil {
			fsq.Add(gate, fn)
		} else {
			fsq.AddScoreFunc(fn)
		}
		functions++
	}

	if len(nested) > 0 {
		base = elastic.NewBoolQuery().Must(base).Should(nested...)
	}
	if functions == 0 {
		return base, nil
	}
	return fsq.Query(base), nil
}

// independent compiles strategies that boost regardless of the main query
// as constant_score alternatives. Strategies without gating filter would
// boost every document and are left out.
func (sc scoreCompiler) independent(strategies score.Strategies) ([]elastic.Query, error) {
	var out []elastic.Query
	for _, s := range strategies.Independent() {
		if s.Type() == score.Default {
			continue
		}
		gate, err := sc.gate(s.Filters())
		if err != nil {
			return nil, err
		}
		if gate == nil {
			continue
		}
		out = append(out, elastic.NewConstantScoreQuery(gate).Boost(s.Weight()))
	}
	return out, nil
}

// gate ANDs the strategy filters. Nil when no filter constrains anything.
func (sc scoreCompiler) gate(filters []filter.Filter) (elastic.Query, error) {
	b := elastic.NewBoolQuery()
	clauses := 0
	for _, f := range filters {
		p, err := sc.filters.compile(f, !f.HasValues(), false, false)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		b.Must(p)
		clauses++
	}
	if clauses == 0 {
		return nil, nil
	}
	return b, nil
}

// scoreFunction returns nil for the default strategy.
func scoreFunction(s score.Strategy) (elastic.ScoreFunction, error) {
	switch s.Type() {
	case score.Default:
		return nil, nil
	case score.BoostingFieldValue:
		return elastic.NewFieldValueFactorFunction().
			Field(s.Field()).
			Factor(s.ConfigFloat(score.ConfigFactor, defaultFactor)).
			Modifier(s.ConfigString(score.ConfigModifier, defaultModifier)).
			Missing(s.ConfigFloat(score.ConfigMissing, defaultMissing)).
			Weight(s.Weight()), nil
	case score.Decay:
		return decayFunction(s)
	case score.CustomFunction:
		script := elastic.NewScript(s.ConfigString(score.ConfigFunction, ""))
		return elastic.NewScriptFunction(script).Weight(s.Weight()), nil
	case score.Weight, score.WeightMultiFilter:
		return elastic.NewWeightFactorFunction(s.Weight()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScoreStrategy, s.Type())
	}
}

func decayFunction(s score.Strategy) (elastic.ScoreFunction, error) {
	origin, _ := s.Config(score.ConfigOrigin)
	scale, _ := s.Config(score.ConfigScale)
	offset, hasOffset := s.Config(score.ConfigOffset)
	decay := s.ConfigFloat(score.ConfigDecay, defaultDecay)

	switch s.DecayType() {
	case score.DecayGauss:
		fn := elastic.NewGaussDecayFunction().FieldName(s.Field()).Origin(origin).Scale(scale).
			Decay(decay).Weight(s.Weight())
		if hasOffset {
			fn.Offset(offset)
		}
		return fn, nil
	case score.DecayLinear:
		fn := elastic.NewLinearDecayFunction().FieldName(s.Field()).Origin(origin).Scale(scale).
			Decay(decay).Weight(s.Weight())
		if hasOffset {
			fn.Offset(offset)
		}
		return fn, nil
	case score.DecayExp:
		fn := elastic.NewExponentialDecayFunction().FieldName(s.Field()).Origin(origin).Scale(scale).
			Decay(decay).Weight(s.Weight())
		if hasOffset {
			fn.Offset(offset)
		}
		return fn, nil
	default:
		return nil, fmt.Errorf("%w: decay curve %q", ErrUnsupportedScoreStrategy, s.DecayType())
	}
}
