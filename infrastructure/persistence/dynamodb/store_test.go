package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// fakeClient implements the calls a test needs; the rest panic through the
// nil embedded interface.
type fakeClient struct {
	Client
	updateItem   func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	batchGetItem func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
	transact     func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
	getItem      func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
}

func (f *fakeClient) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return f.updateItem(in)
}

func (f *fakeClient) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	return f.batchGetItem(in)
}

func (f *fakeClient) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	return f.transact(in)
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(in)
}

func newTestStore(client Client) *Store {
	return NewStore(client, "forum", "", zap.NewNop())
}

func mustEncode(t *testing.T, collection string, doc abstractions.Document) map[string]types.AttributeValue {
	t.Helper()
	item, err := encodeItem(collection, doc)
	require.NoError(t, err)
	return item
}

func TestCodec_EncodeDecode(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 1500, time.FixedZone("CET", 3600))
	doc := abstractions.Document{
		abstractions.FieldID:        "t1",
		abstractions.FieldTitle:     "Goroutines",
		abstractions.FieldCreatedAt: created,
		abstractions.FieldViews:     7,
		abstractions.FieldComments:  []any{"c1", "c2"},
		abstractions.FieldUpdatedAt: nil,
	}

	item := mustEncode(t, abstractions.CollectionTopics, doc)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "topics#t1"}, item[attrPK])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "topics"}, item[attrGSI1PK])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-03-01T11:30:00.000001500Z#t1"}, item[attrGSI1SK])
	assert.NotContains(t, item, abstractions.FieldUpdatedAt)

	decoded, err := decodeItem(item)
	require.NoError(t, err)
	assert.NotContains(t, decoded, attrPK)
	assert.NotContains(t, decoded, attrGSI1SK)
	assert.Equal(t, 7, decoded[abstractions.FieldViews])
	assert.Equal(t, []any{"c1", "c2"}, decoded[abstractions.FieldComments])
	ts, ok := decoded.Time(abstractions.FieldCreatedAt)
	require.True(t, ok)
	assert.True(t, ts.Equal(created))
}

func TestIndexSortKey_OrdersByTime(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := indexSortKey(abstractions.Document{"id": "b", "createdAt": base.Add(900 * time.Millisecond)})
	later := indexSortKey(abstractions.Document{"id": "a", "createdAt": base.Add(time.Second)})

	assert.Less(t, earlier, later)
}

func TestStore_AddToSet(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantAdded bool
		wantErr   func(error) bool
	}{
		{name: "added", wantAdded: true},
		{
			name: "already liked",
			err: &types.ConditionalCheckFailedException{
				Message: aws.String("condition failed"),
				Item:    map[string]types.AttributeValue{attrPK: &types.AttributeValueMemberS{Value: "comments#c1"}},
			},
		},
		{
			name:    "missing document",
			err:     &types.ConditionalCheckFailedException{Message: aws.String("condition failed")},
			wantErr: pkgerrors.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input *dynamodb.UpdateItemInput
			store := newTestStore(&fakeClient{updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				input = in
				return &dynamodb.UpdateItemOutput{}, tt.err
			}})

			added, err := store.AddToSet(context.Background(), abstractions.CollectionComments, "c1", abstractions.FieldLikes, "u1")

			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAdded, added)
			require.NotNil(t, input)
			assert.Contains(t, aws.ToString(input.ConditionExpression), "contains")
			assert.Equal(t, types.ReturnValuesOnConditionCheckFailureAllOld, input.ReturnValuesOnConditionCheckFailure)
		})
	}
}

func TestStore_Find_BatchRetriesUnprocessedKeys(t *testing.T) {
	now := time.Now()
	u1 := mustEncode(t, abstractions.CollectionUsers, abstractions.Document{"id": "u1", "createdAt": now})
	u2 := mustEncode(t, abstractions.CollectionUsers, abstractions.Document{"id": "u2", "createdAt": now.Add(time.Second)})

	calls := 0
	store := newTestStore(&fakeClient{batchGetItem: func(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
		calls++
		if calls == 1 {
			assert.Len(t, in.RequestItems["forum"].Keys, 3, "duplicate ids are requested once")
			return &dynamodb.BatchGetItemOutput{
				Responses: map[string][]map[string]types.AttributeValue{"forum": {u1}},
				UnprocessedKeys: map[string]types.KeysAndAttributes{
					"forum": {Keys: []map[string]types.AttributeValue{documentKey(abstractions.CollectionUsers, "u2")}},
				},
			}, nil
		}
		return &dynamodb.BatchGetItemOutput{
			Responses: map[string][]map[string]types.AttributeValue{"forum": {u2}},
		}, nil
	}})

	docs, err := store.Find(context.Background(), abstractions.CollectionUsers, abstractions.IDsIn([]string{"u1", "u2", "u1", "gone"}))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, docs, 2)
	assert.Equal(t, "u1", docs[0].ID())
	assert.Equal(t, "u2", docs[1].ID())
}

func TestStore_Insert_DuplicateUniqueValueIsConflict(t *testing.T) {
	var writes []types.TransactWriteItem
	store := newTestStore(&fakeClient{transact: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
		writes = in.TransactItems
		return nil, &types.TransactionCanceledException{Message: aws.String("cancelled")}
	}})

	err := store.Insert(context.Background(), abstractions.CollectionUsers, abstractions.Document{
		"id": "u1", "username": "ada", "email": "ada@example.com", "createdAt": time.Now(),
	})

	assert.True(t, pkgerrors.IsConflict(err))
	assert.Len(t, writes, 3, "document plus one marker per unique field")
}

func TestStore_UpdateByID_MovesSlugMarker(t *testing.T) {
	current := mustEncode(t, abstractions.CollectionTopics, abstractions.Document{
		"id": "t1", "title": "Old", "slug": "old", "createdAt": time.Now(),
	})
	var writes []types.TransactWriteItem
	store := newTestStore(&fakeClient{
		getItem: func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: current}, nil
		},
		transact: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			writes = in.TransactItems
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	})

	err := store.UpdateByID(context.Background(), abstractions.CollectionTopics, "t1", abstractions.Document{
		"title": "New", "slug": "new",
	})

	require.NoError(t, err)
	require.Len(t, writes, 3)
	assert.NotNil(t, writes[0].Update)
	assert.Equal(t, uniqueKey(abstractions.CollectionTopics, "slug", "old"), writes[1].Delete.Key)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "UNIQUE#topics#slug#new"}, writes[2].Put.Item[attrPK])
}

func TestStore_Translate(t *testing.T) {
	store := newTestStore(nil)

	assert.True(t, pkgerrors.IsTimeout(store.translate("find", context.DeadlineExceeded)))
	assert.True(t, pkgerrors.IsType(store.translate("find", &types.ProvisionedThroughputExceededException{}), pkgerrors.ErrorTypeUnavailable))
	assert.True(t, pkgerrors.IsType(store.translate("find", assert.AnError), pkgerrors.ErrorTypeDatabase))
	assert.NoError(t, store.translate("find", nil))
}
