package pipeline

import (
	"context"
	"fmt"
	"strings"

	"imagepipeline-api/pkg/store"
)

// Status looks up the persisted record for a client-facing filename. The
// stored key includes the ingestion prefix (e.g. "uploads/") that clients
// omit, so the prefix is reconstructed before the lookup. A missing record
// is a valid negative result reported through the boolean, never an error;
// an error means the record store itself was unreachable.
func (s Service) Status(ctx context.Context, filename string) (store.Item, bool, error) {
	if filename == "" {
		return nil, false, fmt.Errorf("%w: status lookup requires a filename", ErrMissingIdentity)
	}
	key := s.Config.KeyPrefix + strings.TrimPrefix(filename, "/")
	item, found, err := s.Table.GetRecord(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return item, found, nil
}
