//go:build tinygo || baremetal

package store

// KVBackend is the flash-backed key/value primitive this firmware needs;
// bring-up of the actual flash driver is out of scope (spec §1) and is
// supplied by the embedded target's board support package.
type KVBackend interface {
	GetString(namespace, key, def string) (string, error)
	PutString(namespace, key, value string) error
}

const (
	namespace = "nowde"
	layerKey  = "layer"
)

// FlashStore is the embedded LayerStore, backed by a single namespace with
// one key ("layer"), per spec §6.
type FlashStore struct {
	backend KVBackend
}

// NewFlashStore wraps backend as a LayerStore.
func NewFlashStore(backend KVBackend) *FlashStore {
	return &FlashStore{backend: backend}
}

func (s *FlashStore) Load() (string, error) {
	return s.backend.GetString(namespace, layerKey, defaultLayer)
}

func (s *FlashStore) Save(layer string) error {
	return s.backend.PutString(namespace, layerKey, layer)
}
