package settings

import "context"

// Setting keys.
const KeyKData = "kdata"

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
