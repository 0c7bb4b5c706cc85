// Package secrets defines the boundary for sealed credentials such as
// catalog bearer tokens. Concrete backends live under
// internal/providers/secrets.
package secrets

import "context"

type SecretStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}
