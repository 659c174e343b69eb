// Package cache is the durable local key/value store the client keeps its
// identity and profile data in. It has no logic of its own: get/set/delete
// per key, plus an all-or-nothing multi-key clear used on sign-out.
package cache

import "context"

// Repository is the local cache contract. Get returns (nil, nil) when the
// key is absent. Clear removes the given keys so that a process kill
// mid-call can never leave the identity key deleted while later keys
// survive: callers pass the identity key last, and implementations either
// delete everything in one transaction or delete strictly in the order
// given.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context, keys ...string) error
}
