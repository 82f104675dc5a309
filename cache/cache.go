// Package cache provides bundle caching implementations.
package cache

import "github.com/ZaguanLabs/gotlres"

// ResourceCache is an alias to the main package interface for convenience.
type ResourceCache = gotlres.ResourceCache

// Bundle is an alias to the main package type.
type Bundle = gotlres.Bundle

// Entry is a live cache entry, as returned for snapshot export.
type Entry = gotlres.CacheEntry
