// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain metrics
	RelationToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_relation_toggles_total",
			Help: "Successful favorite, cart and subscription toggles",
		},
		[]string{"relation", "action"}, // action: "activate", "deactivate"
	)

	ShoppingListsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_lists_built_total",
			Help: "Total number of shopping lists rendered",
		},
	)

	IngredientsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_ingredients_imported_total",
			Help: "Ingredients inserted by the catalog loader",
		},
	)

	// Cache metrics
	IngredientCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_ingredient_cache_hits_total",
			Help: "Ingredient search results served from cache",
		},
	)

	IngredientCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_ingredient_cache_misses_total",
			Help: "Ingredient searches that hit the database",
		},
	)

	// Storage metrics
	ImageStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_image_store_operations_total",
			Help: "Image store operations by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"},
	)
)
