package apisearch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

const tagKey = "apisearch"

// TypedIndex is a generic handle on one index of an app.
// Hit sources are decoded into T using "apisearch" struct tags.
type TypedIndex[T any] struct {
	app    string
	name   string
	client *Client
}

// NewIndex creates a typed index handle. T must be a struct.
func NewIndex[T any](client *Client, app, name string) (*TypedIndex[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("apisearch: new index %q: type %v is not a struct", name, t)
	}
	return &TypedIndex[T]{app: app, name: name, client: client}, nil
}

// Name returns the index name.
func (idx *TypedIndex[T]) Name() string { return idx.name }

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// decode maps a hit source onto T.
func decode[T any](source map[string]any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagKey,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(source); err != nil {
		return out, fmt.Errorf("decode source: %w", err)
	}
	return out, nil
}

func (idx *TypedIndex[T]) search(ctx context.Context, q Query) (*Result, error) {
	return idx.client.SearchOne(ctx, idx.app, idx.name, q)
}
