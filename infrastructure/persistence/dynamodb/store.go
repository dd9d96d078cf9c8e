// Package dynamodb stores forum documents in a single DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

const (
	batchGetLimit   = 100
	maxBatchRetries = 5
	maxPullAttempts = 3
)

// Client is the subset of the DynamoDB API the store uses. *dynamodb.Client
// satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store implements ports.Store on one table. Documents live under
// PK=<collection>#<id>, SK=DOC; the GSI lists a collection in creation order.
type Store struct {
	client    Client
	tableName string
	indexName string
	logger    *zap.Logger
}

var _ ports.Store = (*Store)(nil)

// NewStore creates a DynamoDB document store
func NewStore(client Client, tableName, indexName string, logger *zap.Logger) *Store {
	if indexName == "" {
		indexName = "GSI1"
	}
	return &Store{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// Insert writes a new document together with its unique-value markers
func (s *Store) Insert(ctx context.Context, collection string, doc abstractions.Document) error {
	item, err := encodeItem(collection, doc)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode document").WithCause(err)
	}
	notExists, err := expression.NewBuilder().
		WithCondition(expression.Name(attrPK).AttributeNotExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}

	unique := uniqueValues(collection, doc)
	if len(unique) == 0 {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(s.tableName),
			Item:                     item,
			ConditionExpression:      notExists.Condition(),
			ExpressionAttributeNames: notExists.Names(),
		})
		if isConditionFailed(err) {
			return pkgerrors.NewConflictError(fmt.Sprintf("%s %s already exists", collection, doc.ID()))
		}
		return s.translate("insert", err)
	}

	writes := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                aws.String(s.tableName),
			Item:                     item,
			ConditionExpression:      notExists.Condition(),
			ExpressionAttributeNames: notExists.Names(),
		},
	}}
	for field, value := range unique {
		writes = append(writes, s.putMarker(collection, field, value, doc.ID(), notExists))
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes})
	if isTransactionCanceled(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("%s with a duplicate unique field already exists", collection)).WithCause(err)
	}
	if err != nil {
		return s.translate("insert", err)
	}

	s.logger.Debug("Document inserted",
		zap.String("collection", collection),
		zap.String("id", doc.ID()),
		zap.Int("markers", len(unique)),
	)
	return nil
}

func (s *Store) putMarker(collection, field, value, owner string, notExists expression.Expression) types.TransactWriteItem {
	marker := uniqueKey(collection, field, value)
	marker[attrOwner] = &types.AttributeValueMemberS{Value: owner}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                aws.String(s.tableName),
			Item:                     marker,
			ConditionExpression:      notExists.Condition(),
			ExpressionAttributeNames: notExists.Names(),
		},
	}
}

// FindByID reads one document
func (s *Store) FindByID(ctx context.Context, collection, id string) (abstractions.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            documentKey(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, s.translate("find by id", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError(collection)
	}
	doc, err := decodeItem(out.Item)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode document").WithCause(err)
	}
	return doc, nil
}

// Find answers id batches with BatchGetItem and everything else by reading
// the collection partition of the index. Equality filters on strings are
// pushed down; the full criteria is always evaluated in process.
func (s *Store) Find(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	var (
		docs []abstractions.Document
		err  error
	)
	if ids, ok := criteria.IsIDBatch(); ok {
		docs, err = s.batchGet(ctx, collection, ids)
	} else {
		docs, err = s.queryCollection(ctx, collection, criteria)
	}
	if err != nil {
		return nil, err
	}

	matched := make([]abstractions.Document, 0, len(docs))
	for _, doc := range docs {
		if abstractions.Matches(doc, criteria) {
			matched = append(matched, doc)
		}
	}
	return abstractions.Window(matched, criteria), nil
}

func (s *Store) queryCollection(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrGSI1PK).Equal(expression.Value(collection)))
	if filter, ok := pushdown(criteria.Filters); ok {
		builder = builder.WithFilter(filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query").WithCause(err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(s.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var docs []abstractions.Document
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.translate("query", err)
		}
		for _, item := range page.Items {
			doc, err := decodeItem(item)
			if err != nil {
				s.logger.Warn("Skipping undecodable item", zap.String("collection", collection), zap.Error(err))
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// pushdown builds a filter expression from the string equality filters
func pushdown(filters []abstractions.Filter) (expression.ConditionBuilder, bool) {
	var conditions []expression.ConditionBuilder
	for _, f := range filters {
		value, ok := f.Value.(string)
		if f.Operator != abstractions.OpEqual || !ok {
			continue
		}
		conditions = append(conditions, expression.Name(f.Field).Equal(expression.Value(value)))
	}
	switch len(conditions) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conditions[0], true
	default:
		return expression.And(conditions[0], conditions[1], conditions[2:]...), true
	}
}

func (s *Store) batchGet(ctx context.Context, collection string, ids []string) ([]abstractions.Document, error) {
	seen := make(map[string]struct{}, len(ids))
	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, documentKey(collection, id))
	}

	docs := make([]abstractions.Document, 0, len(keys))
	for start := 0; start < len(keys); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(keys) {
			end = len(keys)
		}
		request := map[string]types.KeysAndAttributes{
			s.tableName: {Keys: keys[start:end], ConsistentRead: aws.Bool(true)},
		}

		for attempt := 0; len(request) > 0; attempt++ {
			if attempt == maxBatchRetries {
				return nil, pkgerrors.NewUnavailableError("dynamodb").
					WithDetails(map[string]interface{}{"unprocessed": len(request[s.tableName].Keys)})
			}
			if attempt > 0 {
				if err := sleep(ctx, time.Duration(attempt*50)*time.Millisecond); err != nil {
					return nil, s.translate("batch get", err)
				}
			}

			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, s.translate("batch get", err)
			}
			for _, item := range out.Responses[s.tableName] {
				doc, err := decodeItem(item)
				if err != nil {
					s.logger.Warn("Skipping undecodable item", zap.String("collection", collection), zap.Error(err))
					continue
				}
				docs = append(docs, doc)
			}
			request = out.UnprocessedKeys
		}
	}
	return docs, nil
}

// Count evaluates the filters of criteria over the collection
func (s *Store) Count(ctx context.Context, collection string, criteria abstractions.QueryCriteria) (int64, error) {
	docs, err := s.Find(ctx, collection, abstractions.QueryCriteria{Filters: criteria.Filters, AnyOf: criteria.AnyOf})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// UpdateByID sets fields on an existing document. Nil values remove the
// attribute. Changing a unique field moves its marker in the same transaction.
func (s *Store) UpdateByID(ctx context.Context, collection, id string, set abstractions.Document) error {
	var (
		update expression.UpdateBuilder
		ops    int
	)
	for field, value := range set {
		if field == abstractions.FieldID {
			continue
		}
		ops++
		if value == nil {
			update = update.Remove(expression.Name(field))
			continue
		}
		update = update.Set(expression.Name(field), expression.Value(encodeValue(value)))
	}
	if createdAt, ok := set[abstractions.FieldCreatedAt]; ok {
		doc := abstractions.Document{abstractions.FieldID: id, abstractions.FieldCreatedAt: createdAt}
		update = update.Set(expression.Name(attrGSI1SK), expression.Value(indexSortKey(doc)))
	}
	if ops == 0 {
		_, err := s.FindByID(ctx, collection, id)
		return err
	}

	changed := uniqueValues(collection, set)
	if len(changed) == 0 {
		return s.update(ctx, "update", collection, id, update)
	}

	current, err := s.FindByID(ctx, collection, id)
	if err != nil {
		return err
	}
	condition := expression.Name(attrPK).AttributeExists()
	var markers []types.TransactWriteItem
	notExists, err := expression.NewBuilder().
		WithCondition(expression.Name(attrPK).AttributeNotExists()).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
	}
	for field, value := range changed {
		old := current.String(field)
		if old == value {
			continue
		}
		// the document must still hold the old value when the markers move
		if old == "" {
			condition = condition.And(expression.Name(field).AttributeNotExists())
		} else {
			condition = condition.And(expression.Name(field).Equal(expression.Value(old)))
			markers = append(markers, types.TransactWriteItem{
				Delete: &types.Delete{TableName: aws.String(s.tableName), Key: uniqueKey(collection, field, old)},
			})
		}
		markers = append(markers, s.putMarker(collection, field, value, id, notExists))
	}
	if len(markers) == 0 {
		return s.update(ctx, "update", collection, id, update)
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build update").WithCause(err)
	}
	writes := append([]types.TransactWriteItem{{
		Update: &types.Update{
			TableName:                 aws.String(s.tableName),
			Key:                       documentKey(collection, id),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}}, markers...)

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes})
	if isTransactionCanceled(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("%s with this value already exists", collection)).WithCause(err)
	}
	return s.translate("update", err)
}

// Push appends value to a list attribute
func (s *Store) Push(ctx context.Context, collection, id, field string, value interface{}) error {
	update := expression.Set(expression.Name(field), appendTo(field, value))
	return s.update(ctx, "push", collection, id, update)
}

// AddToSet appends value unless the list already contains it. Membership is
// checked by the write condition, so concurrent likes cannot both succeed.
func (s *Store) AddToSet(ctx context.Context, collection, id, field string, value interface{}) (bool, error) {
	member, ok := value.(string)
	if !ok {
		return false, pkgerrors.NewValidationError(fmt.Sprintf("%s only holds string members", field))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name(field), appendTo(field, member))).
		WithCondition(expression.Name(attrPK).AttributeExists().
			And(expression.Not(expression.Name(field).Contains(member)))).
		Build()
	if err != nil {
		return false, pkgerrors.NewInternalError("failed to build update").WithCause(err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.tableName),
		Key:                                 documentKey(collection, id),
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		if len(failed.Item) == 0 {
			return false, pkgerrors.NewNotFoundError(collection)
		}
		return false, nil
	}
	if err != nil {
		return false, s.translate("add to set", err)
	}
	return true, nil
}

// Pull removes every occurrence of value. The removal is conditioned on the
// matched positions still holding value and is retried when the list moved.
func (s *Store) Pull(ctx context.Context, collection, id, field string, value interface{}) error {
	for attempt := 0; attempt < maxPullAttempts; attempt++ {
		doc, err := s.FindByID(ctx, collection, id)
		if err != nil {
			return err
		}

		var (
			update    expression.UpdateBuilder
			condition = expression.Name(attrPK).AttributeExists()
			found     bool
		)
		for i, item := range doc.List(field) {
			if abstractions.Compare(item, value) != 0 {
				continue
			}
			path := fmt.Sprintf("%s[%d]", field, i)
			update = update.Remove(expression.Name(path))
			condition = condition.And(expression.Name(path).Equal(expression.Value(encodeValue(value))))
			found = true
		}
		if !found {
			return nil
		}

		err = s.conditionalUpdate(ctx, collection, id, update, condition)
		if isConditionFailed(err) {
			s.logger.Debug("List changed during pull, retrying",
				zap.String("collection", collection),
				zap.String("id", id),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		return s.translate("pull", err)
	}
	return pkgerrors.NewConflictError(fmt.Sprintf("%s %s changed concurrently", collection, field))
}

// Increment atomically adds delta to a numeric attribute
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) error {
	update := expression.Add(expression.Name(field), expression.Value(delta))
	return s.update(ctx, "increment", collection, id, update)
}

// Ping describes the table
func (s *Store) Ping(ctx context.Context) error {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.tableName)})
	if err != nil {
		return s.translate("ping", err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive {
		return pkgerrors.NewUnavailableError("dynamodb").
			WithDetails(map[string]interface{}{"status": string(out.Table.TableStatus)})
	}
	return nil
}

// update applies an update to an existing document
func (s *Store) update(ctx context.Context, op, collection, id string, update expression.UpdateBuilder) error {
	err := s.conditionalUpdate(ctx, collection, id, update, expression.Name(attrPK).AttributeExists())
	if isConditionFailed(err) {
		return pkgerrors.NewNotFoundError(collection)
	}
	return s.translate(op, err)
}

func (s *Store) conditionalUpdate(ctx context.Context, collection, id string, update expression.UpdateBuilder, condition expression.ConditionBuilder) error {
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build update").WithCause(err)
	}
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       documentKey(collection, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}

// appendTo is list_append(if_not_exists(field, []), [value])
func appendTo(field string, value interface{}) expression.SetValueBuilder {
	return expression.ListAppend(
		expression.IfNotExists(expression.Name(field), expression.Value([]interface{}{})),
		expression.Value([]interface{}{encodeValue(value)}),
	)
}

// translate maps driver errors onto the application error taxonomy
func (s *Store) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pkgerrors.FromContext(op, err)
	}
	var throttled *types.ProvisionedThroughputExceededException
	if errors.As(err, &throttled) {
		return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
	}
	s.logger.Error("DynamoDB operation failed", zap.String("operation", op), zap.Error(err))
	return pkgerrors.NewDatabaseError(op, err)
}

func isConditionFailed(err error) bool {
	var failed *types.ConditionalCheckFailedException
	return errors.As(err, &failed)
}

func isTransactionCanceled(err error) bool {
	var canceled *types.TransactionCanceledException
	return errors.As(err, &canceled)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
