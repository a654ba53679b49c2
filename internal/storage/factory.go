package storage

import "fmt"

const DefaultKind = "memory"

func DefaultStoreKind() string {
	return DefaultKind
}

func NewStore(kind string) (Store, error) {
	switch kind {
	case "", DefaultKind:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
