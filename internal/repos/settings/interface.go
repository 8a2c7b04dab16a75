package settings

import "context"

type Settings interface {
	// All returns every stored key/value override.
	All(ctx context.Context) (map[string]string, error)
}
