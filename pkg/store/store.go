// Package store abstracts where package manifests live. The engine itself
// only deals with manifest bytes; backends cover the local filesystem and
// AWS S3 so packages can be exchanged through object storage.
package store

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Store reads and writes manifest byte-streams by reference. A reference is a
// backend-specific path (filesystem path, object key).
type Store interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
	Write(ctx context.Context, ref string, data []byte) error
}

// FetchAll reads every referenced manifest, concurrently, and returns them in
// input order. Any failed fetch fails the whole call: a downstream stage must
// see all of its upstream packages or none.
func FetchAll(ctx context.Context, store Store, refs []string) ([][]byte, error) {
	manifests := make([][]byte, len(refs))

	errG, ctx := errgroup.WithContext(ctx)

	for i, ref := range refs {
		i, ref := i, ref

		errG.Go(func() error {
			data, err := store.Fetch(ctx, ref)
			if err != nil {
				return err
			}

			manifests[i] = data

			return nil
		})
	}

	if err := errG.Wait(); err != nil {
		return nil, err
	}

	return manifests, nil
}
