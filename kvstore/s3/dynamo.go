package s3

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

// DynamoStore implements kvstore.Store backed by a DynamoDB table.
//
// Every key is one item. DynamoDB items are capped at 400KB, well above the
// values the directory engine writes.
//
// Table schema:
//   - Partition key: pk (string) - the partition name passed to NewDynamoStore
//   - Sort key: k (string) - the store key
//   - Attribute v (binary) holds the value
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name fressh-kv \
//	  --attribute-definitions AttributeName=pk,AttributeType=S AttributeName=k,AttributeType=S \
//	  --key-schema AttributeName=pk,KeyType=HASH AttributeName=k,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DynamoStore struct {
	client    DDBClient
	tableName string
	partition string
}

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

const (
	attrPartition = "pk"
	attrKey       = "k"
	attrValue     = "v"
)

// NewDynamoStore creates a new DynamoDB key-value store.
func NewDynamoStore(client DDBClient, tableName, partition string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		partition: partition,
	}
}

func (s *DynamoStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPartition: &types.AttributeValueMemberS{Value: s.partition},
		attrKey:       &types.AttributeValueMemberS{Value: key},
	}
}

// Get reads the item for key with a strongly consistent read.
func (s *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, kvstore.ErrNotFound
	}

	v, ok := resp.Item[attrValue].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("invalid %s attribute for key %q", attrValue, key)
	}
	return v.Value, nil
}

// Set writes the item for key, replacing any previous value.
func (s *DynamoStore) Set(ctx context.Context, key string, value []byte) error {
	item := s.itemKey(key)
	item[attrValue] = &types.AttributeValueMemberB{Value: value}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item to DynamoDB: %w", err)
	}
	return nil
}

// Delete removes the item for key. Absent items are ignored by DynamoDB.
func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

// List queries the partition for keys beginning with prefix.
func (s *DynamoStore) List(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(k, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: s.partition},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
		ProjectionExpression: aws.String(attrKey),
		ConsistentRead:       aws.Bool(true),
	}
	if prefix == "" {
		input.KeyConditionExpression = aws.String("pk = :pk")
		delete(input.ExpressionAttributeValues, ":prefix")
	}

	var keys []string
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			if k, ok := item[attrKey].(*types.AttributeValueMemberS); ok {
				keys = append(keys, k.Value)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}
