// Package config loads and persists the privacy settings of a controller.
// Settings live in a Store, either a local JSON file or redis.
package config

import "context"

// Store is a flat string key/value store.
type Store interface {
	// Get returns ok false, and no error, for a key that was never set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
