// Package cache holds small in-process caches for read-mostly data.
package cache

// Cache is the contract callers depend on; LRUCache implements it.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

var _ Cache[int] = (*LRUCache[int])(nil)
