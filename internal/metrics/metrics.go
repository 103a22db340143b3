// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	StatusEvaluations = expvar.NewInt("status_evaluations")
	StatusExceptions  = expvar.NewInt("status_exceptions")
	StoreQueries      = expvar.NewInt("store_queries")
	StoreQueryErrors  = expvar.NewInt("store_query_errors")
	CacheHits         = expvar.NewInt("status_cache_hits")
	CacheMisses       = expvar.NewInt("status_cache_misses")
	AlertsDispatched  = expvar.NewInt("alerts_dispatched")
	AlertsFailed      = expvar.NewInt("alerts_failed")
	WatcherPolls      = expvar.NewInt("watcher_polls")
	DelayedFeeds      = expvar.NewInt("delayed_feeds")
)
