// Package cache provides a small thread-safe LRU cache.
//
//	c := cache.New[*refine.Point, render.RGBA](4096)
//	col := c.GetOrCreate(p, func() render.RGBA { return colorOf(p) })
//
// The cache holds at most its capacity entries; inserting past it evicts
// the least recently used entry. A capacity of 0 means unlimited.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
