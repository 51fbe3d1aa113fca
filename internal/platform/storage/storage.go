package storage

import "context"

// Asset references a file held by the external object store. Key is the
// opaque identifier used for deletion; URL is the externally servable
// location. Assets are never mutated in place: replacing one means
// attaching a new descriptor.
type Asset struct {
	URL string `json:"url" bson:"url"`
	Key string `json:"key" bson:"key"`
}

// AssetStore is the external object store the service uploads files to.
type AssetStore interface {
	// Upload stores data under "<pathPrefix>/<slot>" and returns the
	// descriptor of the stored asset.
	Upload(ctx context.Context, data []byte, pathPrefix, slot string) (*Asset, error)

	// Delete removes the asset identified by key.
	Delete(ctx context.Context, key string) error
}
