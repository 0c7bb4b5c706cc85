package config

import "context"

type ConnectionCatalogWriter interface {
	Create(ctx context.Context, conn Connection) error
	Update(ctx context.Context, conn Connection) error
	Delete(ctx context.Context, name string) error
	SetCurrent(ctx context.Context, name string) error
}

type ConnectionCatalogReader interface {
	List(ctx context.Context) ([]Connection, error)
	GetCurrent(ctx context.Context) (Connection, error)
}

type ConnectionResolver interface {
	ResolveConnection(ctx context.Context, selection ConnectionSelection) (Connection, error)
}

type ConnectionValidator interface {
	Validate(ctx context.Context, conn Connection) error
}

type ConnectionService interface {
	ConnectionCatalogWriter
	ConnectionCatalogReader
	ConnectionResolver
	ConnectionValidator
}
