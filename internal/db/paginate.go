package db

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageOptions controls sorting and slicing of a paginated query.
// SortBy is a comma-separated list of "field:asc" / "field:desc" entries;
// a bare field name sorts ascending. Page is 1-based.
type PageOptions struct {
	SortBy string
	Limit  int64
	Page   int64
}

// Page is one page of query results together with the pagination envelope
// returned to API callers.
type Page[T any] struct {
	Results      []T   `json:"results"`
	Page         int64 `json:"page"`
	Limit        int64 `json:"limit"`
	TotalPages   int64 `json:"total_pages"`
	TotalResults int64 `json:"total_results"`
}

// Paginate runs a filtered, sorted, paged query against a collection.
// Used identically across all entity collections.
func Paginate[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts PageOptions) (*Page[T], error) {
	if filter == nil {
		filter = bson.M{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	page := opts.Page
	if page <= 0 {
		page = 1
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents in %s: %w", coll.Name(), err)
	}

	findOpts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(parseSort(opts.SortBy))

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s page: %w", coll.Name(), err)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &Page[T]{
		Results:      results,
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		TotalResults: total,
	}, nil
}

// parseSort converts a "field:desc,other:asc" spec into a BSON sort
// document, defaulting to newest-first.
func parseSort(sortBy string) bson.D {
	if strings.TrimSpace(sortBy) == "" {
		return bson.D{{Key: "created_at", Value: -1}}
	}

	sort := bson.D{}
	for _, part := range strings.Split(sortBy, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field := part
		order := 1
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			field = part[:idx]
			if strings.EqualFold(part[idx+1:], "desc") {
				order = -1
			}
		}
		if field != "" {
			sort = append(sort, bson.E{Key: field, Value: order})
		}
	}
	if len(sort) == 0 {
		return bson.D{{Key: "created_at", Value: -1}}
	}
	return sort
}
