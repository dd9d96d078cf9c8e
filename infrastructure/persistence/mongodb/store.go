// Package mongodb stores forum documents in MongoDB, one collection per
// entity kind.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"forum-api/application/ports"
	"forum-api/infrastructure/persistence/abstractions"
	pkgerrors "forum-api/pkg/errors"
)

// Store implements ports.Store. The document id is kept in _id.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

var _ ports.Store = (*Store)(nil)

// Connect opens a client, checks it with a ping and returns the store
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", database))
	return &Store{client: client, db: client.Database(database), logger: logger}, nil
}

// EnsureIndexes creates the unique indexes and the creation-time indexes the
// list queries sort on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, collection := range abstractions.AllCollections() {
		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: abstractions.FieldCreatedAt, Value: -1}, {Key: "_id", Value: -1}}},
		}
		for _, field := range abstractions.UniqueFields[collection] {
			indexes = append(indexes, mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			})
		}
		switch collection {
		case abstractions.CollectionTopics:
			indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: abstractions.FieldCourse, Value: 1}, {Key: abstractions.FieldCreatedAt, Value: -1}}})
		case abstractions.CollectionComments:
			indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: abstractions.FieldTopic, Value: 1}}})
		case abstractions.CollectionReplies:
			indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: abstractions.FieldComment, Value: 1}}})
		case abstractions.CollectionUsers:
			indexes = append(indexes, mongo.IndexModel{
				Keys:    bson.D{{Key: abstractions.FieldResetPasswordToken, Value: 1}},
				Options: options.Index().SetSparse(true),
			})
		}

		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}
	s.logger.Info("MongoDB indexes ensured")
	return nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert stores a new document
func (s *Store) Insert(ctx context.Context, collection string, doc abstractions.Document) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, toBSON(doc))
	if mongo.IsDuplicateKeyError(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("%s with a duplicate unique field already exists", collection)).WithCause(err)
	}
	return s.translate("insert", err)
}

// FindByID reads one document
func (s *Store) FindByID(ctx context.Context, collection, id string) (abstractions.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkgerrors.NewNotFoundError(collection)
	}
	if err != nil {
		return nil, s.translate("find by id", err)
	}
	return fromBSON(raw), nil
}

// Find runs the criteria as a native query
func (s *Store) Find(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	sortOptions := criteria.Sort
	if len(sortOptions) == 0 {
		sortOptions = abstractions.Oldest()
	}
	opts := options.Find().SetSort(buildSort(sortOptions))
	if criteria.Limit > 0 {
		opts.SetLimit(int64(criteria.Limit))
	}
	if len(criteria.Fields) > 0 {
		projection := bson.M{}
		for _, f := range criteria.Fields {
			if f != abstractions.FieldID {
				projection[f] = 1
			}
		}
		opts.SetProjection(projection)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, BuildFilter(criteria), opts)
	if err != nil {
		return nil, s.translate("find", err)
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, s.translate("find", err)
	}

	docs := make([]abstractions.Document, len(raw))
	for i, r := range raw {
		docs[i] = fromBSON(r)
	}
	return docs, nil
}

// Count counts matching documents
func (s *Store) Count(ctx context.Context, collection string, criteria abstractions.QueryCriteria) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, BuildFilter(criteria))
	if err != nil {
		return 0, s.translate("count", err)
	}
	return n, nil
}

// UpdateByID applies $set for values and $unset for nils
func (s *Store) UpdateByID(ctx context.Context, collection, id string, set abstractions.Document) error {
	sets := bson.M{}
	unsets := bson.M{}
	for field, value := range set {
		switch {
		case field == abstractions.FieldID:
		case value == nil:
			unsets[field] = ""
		default:
			sets[field] = toValue(value)
		}
	}
	update := bson.M{}
	if len(sets) > 0 {
		update["$set"] = sets
	}
	if len(unsets) > 0 {
		update["$unset"] = unsets
	}
	if len(update) == 0 {
		_, err := s.FindByID(ctx, collection, id)
		return err
	}

	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if mongo.IsDuplicateKeyError(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("%s with this value already exists", collection)).WithCause(err)
	}
	if err != nil {
		return s.translate("update", err)
	}
	if result.MatchedCount == 0 {
		return pkgerrors.NewNotFoundError(collection)
	}
	return nil
}

// Push appends with $push
func (s *Store) Push(ctx context.Context, collection, id, field string, value interface{}) error {
	_, err := s.updateOne(ctx, "push", collection, id, bson.M{"$push": bson.M{field: toValue(value)}})
	return err
}

// AddToSet appends with $addToSet; an unmodified match means the value was
// already present.
func (s *Store) AddToSet(ctx context.Context, collection, id, field string, value interface{}) (bool, error) {
	result, err := s.updateOne(ctx, "add to set", collection, id, bson.M{"$addToSet": bson.M{field: toValue(value)}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// Pull removes every occurrence with $pull
func (s *Store) Pull(ctx context.Context, collection, id, field string, value interface{}) error {
	_, err := s.updateOne(ctx, "pull", collection, id, bson.M{"$pull": bson.M{field: toValue(value)}})
	return err
}

// Increment adds delta with $inc
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int) error {
	_, err := s.updateOne(ctx, "increment", collection, id, bson.M{"$inc": bson.M{field: delta}})
	return err
}

// Ping checks the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.translate("ping", s.client.Ping(ctx, nil))
}

func (s *Store) updateOne(ctx context.Context, op, collection, id string, update bson.M) (*mongo.UpdateResult, error) {
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, s.translate(op, err)
	}
	if result.MatchedCount == 0 {
		return nil, pkgerrors.NewNotFoundError(collection)
	}
	return result, nil
}

// translate maps driver errors onto the application error taxonomy
func (s *Store) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if appErr := pkgerrors.FromContext(op, err); appErr != nil {
		return appErr
	}
	switch {
	case mongo.IsDuplicateKeyError(err):
		return pkgerrors.NewConflictError(op + ": duplicate key").WithCause(err)
	case mongo.IsTimeout(err):
		return pkgerrors.NewTimeoutError(op).WithCause(err)
	case mongo.IsNetworkError(err):
		return pkgerrors.NewUnavailableError("mongodb").WithCause(err)
	}
	s.logger.Error("MongoDB operation failed", zap.String("operation", op), zap.Error(err))
	return pkgerrors.NewDatabaseError(op, err)
}

// BuildFilter translates criteria into a MongoDB filter document
func BuildFilter(c abstractions.QueryCriteria) bson.M {
	clauses := make(bson.A, 0, len(c.Filters)+1)
	for _, f := range c.Filters {
		clauses = append(clauses, filterClause(f))
	}
	if len(c.AnyOf) > 0 {
		alternatives := make(bson.A, 0, len(c.AnyOf))
		for _, group := range c.AnyOf {
			alternatives = append(alternatives, BuildFilter(abstractions.QueryCriteria{Filters: group}))
		}
		clauses = append(clauses, bson.M{"$or": alternatives})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	default:
		return bson.M{"$and": clauses}
	}
}

func filterClause(f abstractions.Filter) bson.M {
	field := f.Field
	if field == abstractions.FieldID {
		field = "_id"
	}
	value := toValue(f.Value)

	switch f.Operator {
	case abstractions.OpEqual, abstractions.OpContains:
		// equality on an array field matches any element
		return bson.M{field: value}
	case abstractions.OpNotEqual:
		return bson.M{field: bson.M{"$ne": value}}
	case abstractions.OpGreaterThan:
		return bson.M{field: bson.M{"$gt": value}}
	case abstractions.OpGreaterThanOrEqual:
		return bson.M{field: bson.M{"$gte": value}}
	case abstractions.OpLessThan:
		return bson.M{field: bson.M{"$lt": value}}
	case abstractions.OpLessThanOrEqual:
		return bson.M{field: bson.M{"$lte": value}}
	case abstractions.OpIn:
		return bson.M{field: bson.M{"$in": asArray(value)}}
	case abstractions.OpNotIn:
		return bson.M{field: bson.M{"$nin": asArray(value)}}
	case abstractions.OpStartsWith:
		prefix, _ := f.Value.(string)
		return bson.M{field: bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	}
	return bson.M{field: value}
}

func asArray(v interface{}) bson.A {
	switch t := v.(type) {
	case []string:
		out := make(bson.A, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []interface{}:
		return bson.A(t)
	}
	return bson.A{v}
}

func buildSort(options []abstractions.SortOption) bson.D {
	sort := make(bson.D, 0, len(options))
	for _, o := range options {
		field := o.Field
		if field == abstractions.FieldID {
			field = "_id"
		}
		direction := 1
		if o.Order == abstractions.SortDescending {
			direction = -1
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	return sort
}

// toBSON moves the id into _id
func toBSON(doc abstractions.Document) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == abstractions.FieldID {
			out["_id"] = v
			continue
		}
		out[k] = toValue(v)
	}
	return out
}

func toValue(v interface{}) interface{} {
	switch t := v.(type) {
	case abstractions.Document:
		return toBSON(t)
	case time.Time:
		return t.UTC()
	case []interface{}:
		out := make(bson.A, len(t))
		for i, item := range t {
			out[i] = toValue(item)
		}
		return out
	}
	return v
}

// fromBSON normalizes driver types: _id becomes id, dates become time.Time,
// arrays become []any and integers become int.
func fromBSON(raw bson.M) abstractions.Document {
	doc := make(abstractions.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			doc[abstractions.FieldID] = fromValue(v)
			continue
		}
		doc[k] = fromValue(v)
	}
	return doc
}

func fromValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case bson.A:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = fromValue(item)
		}
		return out
	case []interface{}:
		return fromValue(bson.A(t))
	case bson.M:
		return fromBSON(t)
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return fromBSON(m)
	case int32:
		return int(t)
	case int64:
		return int(t)
	}
	return v
}
