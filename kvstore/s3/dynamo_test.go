package s3

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // pk/k -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemID(item map[string]types.AttributeValue) string {
	return item["pk"].(*types.AttributeValueMemberS).Value + "/" + item["k"].(*types.AttributeValueMemberS).Value
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemID(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &dynamodb.GetItemOutput{Item: m.items[itemID(params.Key)]}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemID(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	prefix := ""
	if p, ok := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS); ok {
		prefix = p.Value
	}

	var ids []string
	for id := range m.items {
		if strings.HasPrefix(id, pk+"/"+prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := &dynamodb.QueryOutput{}
	for _, id := range ids {
		out.Items = append(out.Items, m.items[id])
	}
	return out, nil
}

func TestDynamoStore(t *testing.T) {
	ctx := context.Background()
	client := newMockDDBClient()
	store := NewDynamoStore(client, "fressh-kv", "device-1")
	other := NewDynamoStore(client, "fressh-kv", "device-2")

	_, err := store.Get(ctx, "ns-rootManifest")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.NoError(t, store.Set(ctx, "ns-rootManifest", []byte("root")))
	require.NoError(t, store.Set(ctx, "ns-entry-a-chunk-0", []byte("slice")))
	require.NoError(t, store.Set(ctx, "other-key", []byte("x")))
	require.NoError(t, other.Set(ctx, "ns-rootManifest", []byte("foreign")))

	v, err := store.Get(ctx, "ns-rootManifest")
	require.NoError(t, err)
	assert.Equal(t, []byte("root"), v)

	keys, err := store.List(ctx, "ns-")
	require.NoError(t, err)
	assert.Equal(t, []string{"ns-entry-a-chunk-0", "ns-rootManifest"}, keys)

	keys, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	require.NoError(t, store.Delete(ctx, "ns-rootManifest"))
	require.NoError(t, store.Delete(ctx, "ns-rootManifest"))
	_, err = store.Get(ctx, "ns-rootManifest")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Partitions are isolated.
	v, err = other.Get(ctx, "ns-rootManifest")
	require.NoError(t, err)
	assert.Equal(t, []byte("foreign"), v)
}
