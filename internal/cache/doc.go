// Package cache provides a small generic LRU cache.
//
// Entries are weighed by a cost function (one unit per entry by default) and
// evicted least recently used first once the capacity is exceeded. Invalidate
// drops every entry whose key matches a predicate, which is how directory
// listings are discarded after a mutation.
package cache
