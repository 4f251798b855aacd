// Package apisearch embeds the search gateway in a Go program.
//
// The client compiles domain queries, fans them out over Elasticsearch
// indices and assembles the responses without going through HTTP.
// A Redis store optionally caches engine responses and meters usage.
//
//	client, _ := apisearch.New(ctx,
//	    apisearch.WithElasticsearch("http://localhost:9200"),
//	    apisearch.WithRedis("localhost:6379", ""),
//	    apisearch.WithCache(time.Minute),
//	)
//	defer client.Close()
//
//	color, _ := apisearch.NewFilter("color", "indexed_metadata.color",
//	    []any{"red"}, apisearch.AtLeastOne, apisearch.FieldFilter)
//	q, _ := apisearch.NewQuery("shoes", apisearch.WithFilter(color), apisearch.WithPage(1, 20))
//	res, _ := client.SearchOne(ctx, "shop", "products", q)
package apisearch
