package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ctx = context.Background()

func TestMemTableUpsert(t *testing.T) {
	expect := assert.New(t)
	mt := NewMemTable(Table{EntityType: "ImageRecord", TableName: "image-processing-results-test"})
	expect.True(mt.IsValid(), "mem table is valid")

	// First write creates the record
	err := mt.PutRecord(ctx, "uploads/cat.jpg", Item{"updated_at": int64(100)})
	expect.NoError(err, "first put")
	expect.Equal(1, mt.Count(), "one record after first put")

	// Second write for the same key overwrites, not duplicates
	err = mt.PutRecord(ctx, "uploads/cat.jpg", Item{"updated_at": int64(200)})
	expect.NoError(err, "second put")
	expect.Equal(1, mt.Count(), "still one record after re-put")

	item, found, err := mt.GetRecord(ctx, "uploads/cat.jpg")
	expect.NoError(err)
	expect.True(found, "record found")
	expect.Equal(int64(200), item["updated_at"], "last write wins")
	expect.Equal("uploads/cat.jpg", item[KeyAttribute], "key attribute is set on the stored item")
}

func TestMemTableNotFound(t *testing.T) {
	expect := assert.New(t)
	mt := NewMemTable(Table{EntityType: "ImageRecord", TableName: "image-processing-results-test"})

	item, found, err := mt.GetRecord(ctx, "uploads/missing.png")
	expect.NoError(err, "missing record is not an error")
	expect.False(found, "record not found")
	expect.Nil(item)
}
