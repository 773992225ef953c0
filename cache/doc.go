// Package cache contains concrete implementations of core.CacheStore.
//
// The canonical CacheStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Implementation
// packages like this one (in-memory, ristretto, durable stores) provide
// storage backends that can be swapped without touching calling code.
package cache
