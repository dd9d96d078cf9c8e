package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"forum-api/application/ports"
	pkgerrors "forum-api/pkg/errors"
)

// JobLock holds named locks as items of the document table, so maintenance
// jobs started from different machines do not overlap.
type JobLock struct {
	client    Client
	tableName string
	owner     string
	now       func() time.Time
	logger    *zap.Logger
}

var _ ports.JobLock = (*JobLock)(nil)

// lockRecord is the item stored under LOCK#<name>
type lockRecord struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	LockID    string `dynamodbav:"LockID"`
	Owner     string `dynamodbav:"Owner"`
	ExpiresAt string `dynamodbav:"ExpiresAt"`
	TTL       int64  `dynamodbav:"TTL"`
}

// NewJobLock creates a lock on the given table. owner identifies this process
// in the lock item.
func NewJobLock(client Client, tableName, owner string, logger *zap.Logger) *JobLock {
	return &JobLock{client: client, tableName: tableName, owner: owner, now: time.Now, logger: logger}
}

func lockKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: "LOCK#" + name},
		attrSK: &types.AttributeValueMemberS{Value: "LOCK"},
	}
}

// Acquire takes the lock unless a holder whose lease has not expired exists
func (l *JobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	now := l.now().UTC()
	expiresAt := now.Add(ttl)
	lockID := uuid.NewString()

	item, err := attributevalue.MarshalMap(lockRecord{
		PK:        "LOCK#" + name,
		SK:        "LOCK",
		LockID:    lockID,
		Owner:     l.owner,
		ExpiresAt: expiresAt.Format(sortKeyLayout),
		TTL:       expiresAt.Unix(),
	})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode lock").WithCause(err)
	}

	cond := expression.Name(attrPK).AttributeNotExists().
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.Format(sortKeyLayout))))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build lock condition").WithCause(err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		l.logger.Debug("Lock already held", zap.String("job", name), zap.String("owner", l.owner))
		return nil, pkgerrors.NewConflictError(fmt.Sprintf("job %s is already running", name))
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("acquire lock", err)
	}

	l.logger.Debug("Lock acquired",
		zap.String("job", name),
		zap.String("lock_id", lockID),
		zap.Duration("ttl", ttl),
	)
	return func(ctx context.Context) error { return l.release(ctx, name, lockID) }, nil
}

func (l *JobLock) release(ctx context.Context, name, lockID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("LockID").Equal(expression.Value(lockID))).
		Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build lock condition").WithCause(err)
	}

	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(l.tableName),
		Key:                       lockKey(name),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		// the lease ran out and someone else holds the lock now
		l.logger.Warn("Lock already released or taken over", zap.String("job", name), zap.String("lock_id", lockID))
		return nil
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("release lock", err)
	}
	return nil
}
