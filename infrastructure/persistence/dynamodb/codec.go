package dynamodb

import (
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"forum-api/infrastructure/persistence/abstractions"
)

// Key attributes of the single-table layout
const (
	attrPK     = "PK"
	attrSK     = "SK"
	attrGSI1PK = "GSI1PK"
	attrGSI1SK = "GSI1SK"
	attrOwner  = "Owner"

	documentSK = "DOC"
	uniqueSK   = "UNIQUE"
)

// sortKeyLayout is fixed width so that GSI1SK orders lexicographically by time.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

func documentKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: collection + "#" + id},
		attrSK: &types.AttributeValueMemberS{Value: documentSK},
	}
}

func uniqueKey(collection, field, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: fmt.Sprintf("UNIQUE#%s#%s#%s", collection, field, value)},
		attrSK: &types.AttributeValueMemberS{Value: uniqueSK},
	}
}

func indexSortKey(doc abstractions.Document) string {
	createdAt, _ := doc.Time(abstractions.FieldCreatedAt)
	return createdAt.UTC().Format(sortKeyLayout) + "#" + doc.ID()
}

// encodeItem renders a document as a table item. Nil fields are left out.
func encodeItem(collection string, doc abstractions.Document) (map[string]types.AttributeValue, error) {
	plain := make(map[string]interface{}, len(doc)+4)
	for k, v := range doc {
		if v == nil {
			continue
		}
		plain[k] = encodeValue(v)
	}

	item, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s document: %w", collection, err)
	}
	for k, v := range documentKey(collection, doc.ID()) {
		item[k] = v
	}
	item[attrGSI1PK] = &types.AttributeValueMemberS{Value: collection}
	item[attrGSI1SK] = &types.AttributeValueMemberS{Value: indexSortKey(doc)}
	return item, nil
}

// encodeValue converts timestamps to RFC 3339 text and nested documents to
// plain maps before marshalling.
func encodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	case abstractions.Document:
		return encodeMap(t)
	case map[string]interface{}:
		return encodeMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

func encodeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = encodeValue(v)
	}
	return out
}

// decodeItem turns a table item back into a document. Key attributes are
// dropped, integral numbers become ints and timestamp fields become time.Time.
func decodeItem(item map[string]types.AttributeValue) (abstractions.Document, error) {
	var raw map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	for _, k := range []string{attrPK, attrSK, attrGSI1PK, attrGSI1SK} {
		delete(raw, k)
	}

	doc := make(abstractions.Document, len(raw))
	for k, v := range raw {
		doc[k] = decodeValue(v)
	}
	for _, field := range abstractions.TimestampFields {
		if s, ok := doc[field].(string); ok {
			if ts, ok := abstractions.AsTime(s); ok {
				doc[field] = ts
			}
		}
	}
	return doc, nil
}

func decodeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) <= math.MaxInt32 {
			return int(t)
		}
		return t
	case []interface{}:
		for i, item := range t {
			t[i] = decodeValue(item)
		}
		return t
	case map[string]interface{}:
		doc := make(abstractions.Document, len(t))
		for k, item := range t {
			doc[k] = decodeValue(item)
		}
		return doc
	default:
		return v
	}
}

// uniqueValues returns the unique-field values of doc that need a marker item.
func uniqueValues(collection string, doc abstractions.Document) map[string]string {
	out := make(map[string]string)
	for _, field := range abstractions.UniqueFields[collection] {
		if v := doc.String(field); v != "" {
			out[field] = v
		}
	}
	return out
}
