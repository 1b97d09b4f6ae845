package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MemRecordSet provides an in-memory data structure for storing marshaled
// records, used for lightweight testing purposes.
type MemRecordSet map[string]map[string]types.AttributeValue

// MemTable is an in-memory table implementation. It implements the
// TableReader and TableWriter interfaces, running records through the same
// attribute marshaling as the real table so that tests observe the stored
// (exact-decimal) representation, not the in-process one.
type MemTable struct {
	RecordSet  *MemRecordSet
	EntityType string
	TableName  string
}

// NewMemTable returns a new MemTable with the same configuration as the provided Table.
func NewMemTable(t Table) MemTable {
	return MemTable{
		RecordSet:  &MemRecordSet{},
		EntityType: t.EntityType,
		TableName:  t.TableName,
	}
}

// IsValid returns true if the table is configured properly.
func (mt MemTable) IsValid() bool {
	return mt.RecordSet != nil && mt.EntityType != "" && mt.TableName != ""
}

// PutRecord writes a record to the table, overwriting any existing record for the key.
func (mt MemTable) PutRecord(ctx context.Context, key string, item Item) error {
	item[KeyAttribute] = key
	av, err := MarshalItem(item)
	if err != nil {
		return err
	}
	if *mt.RecordSet == nil {
		*mt.RecordSet = make(MemRecordSet)
	}
	(*mt.RecordSet)[key] = av
	return nil
}

// GetRecord reads a record from the table, reporting whether it was found.
func (mt MemTable) GetRecord(ctx context.Context, key string) (Item, bool, error) {
	if *mt.RecordSet == nil {
		*mt.RecordSet = make(MemRecordSet)
		return nil, false, nil
	}
	av, ok := (*mt.RecordSet)[key]
	if !ok {
		return nil, false, nil
	}
	item, err := UnmarshalItem(av)
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Count returns the number of records in the table.
func (mt MemTable) Count() int {
	if *mt.RecordSet == nil {
		return 0
	}
	return len(*mt.RecordSet)
}
