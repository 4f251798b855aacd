package apisearch

import "github.com/apisearch-io/search-server-sub000/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrIndexNotFound     = domain.ErrIndexNotFound
	ErrEngineUnavailable = domain.ErrEngineUnavailable
	ErrNotImplemented    = domain.ErrNotImplemented
)
