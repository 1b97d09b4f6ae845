package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyAttribute is the primary key attribute name for pipeline records.
const KeyAttribute = "ImageKey"

// ErrTableNotConfigured is returned when the table is not configured.
var ErrTableNotConfigured = errors.New("table not configured")

// TableWriter is the interface for writing records to a table.
type TableWriter interface {
	PutRecord(ctx context.Context, key string, item Item) error
}

// TableReader is the interface for reading records from a table.
type TableReader interface {
	IsValid() bool
	GetRecord(ctx context.Context, key string) (Item, bool, error)
}

// TableReadWriter is the interface for reading and writing records in a table.
type TableReadWriter interface {
	TableReader
	TableWriter
}

// Table is a DynamoDB table holding one record per processed image,
// keyed by the decoded S3 object key.
type Table struct {
	Client     *dynamodb.Client
	EntityType string // Entity stored in the table (e.g. "ImageRecord").
	TableName  string // Table name, including environment suffix.
}

// IsValid returns true if the table is configured properly.
func (t Table) IsValid() bool {
	return t.Client != nil && t.EntityType != "" && t.TableName != ""
}

// TableExists returns true if the table exists and the client has permission to access it.
func (t Table) TableExists(ctx context.Context) (bool, error) {
	if t.Client == nil || t.TableName == "" {
		return false, ErrTableNotConfigured
	}
	output, err := t.Client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: &t.TableName,
	})
	if err != nil {
		// Not Found is an expected error.
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("table %s exists: %w", t.TableName, err)
	}
	return output != nil, nil
}

// CreateTable creates the table if it does not already exist.
func (t Table) CreateTable(ctx context.Context) error {
	startTime := time.Now()
	if t.Client == nil || t.TableName == "" {
		return ErrTableNotConfigured
	}
	// Check if the table already exists
	exists, err := t.TableExists(ctx)
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.TableName, err)
	}
	if exists {
		log.Println("table", t.TableName, "EXISTS", time.Since(startTime))
		return nil
	}
	// Create the table
	req := dynamodb.CreateTableInput{
		TableName:   &t.TableName,
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(KeyAttribute),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(KeyAttribute),
				KeyType:       types.KeyTypeHash,
			},
		},
	}
	_, err = t.Client.CreateTable(ctx, &req)
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.TableName, err)
	}
	// Wait for the table to be available
	waiter := dynamodb.NewTableExistsWaiter(t.Client, func(options *dynamodb.TableExistsWaiterOptions) {
		options.MinDelay = 3 * time.Second
		options.MaxDelay = 120 * time.Second
	})
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: &t.TableName}, 120*time.Second)
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.TableName, err)
	}
	log.Println("table", t.TableName, "CREATED", time.Since(startTime))
	return nil
}

// PutRecord writes a record to the table, keyed by the provided image key.
// The write is an unconditional upsert: if a record already exists for the
// key, it is overwritten (last write wins).
func (t Table) PutRecord(ctx context.Context, key string, item Item) error {
	if t.Client == nil || t.TableName == "" {
		return ErrTableNotConfigured
	}
	item[KeyAttribute] = key
	av, err := MarshalItem(item)
	if err != nil {
		return fmt.Errorf("put record %s in %s: %w", key, t.TableName, err)
	}
	_, err = t.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &t.TableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put record %s in %s: %w", key, t.TableName, err)
	}
	return nil
}

// GetRecord reads a record from the table. A missing record is not an
// error; the boolean result reports whether the record was found.
func (t Table) GetRecord(ctx context.Context, key string) (Item, bool, error) {
	if t.Client == nil || t.TableName == "" {
		return nil, false, ErrTableNotConfigured
	}
	res, err := t.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &t.TableName,
		Key: map[string]types.AttributeValue{
			KeyAttribute: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get record %s from %s: %w", key, t.TableName, err)
	}
	if len(res.Item) == 0 {
		return nil, false, nil
	}
	item, err := UnmarshalItem(res.Item)
	if err != nil {
		return nil, false, fmt.Errorf("get record %s from %s: %w", key, t.TableName, err)
	}
	return item, true, nil
}
