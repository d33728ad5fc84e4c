package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/roster/internal/uniquekey"
)

// Record type tags scoping email uniqueness claims.
const (
	recordTypeSchool  = "school"
	recordTypeStudent = "student"
)

// batchGetMax is DynamoDB's item limit per BatchGetItem request.
const batchGetMax = 100

// Store provides DynamoDB persistence for school and student records.
type Store struct {
	client *dynamodb.Client
	config Config
}

// New creates a new Store instance.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// nowStamp returns the wall clock truncated for timestamp attributes.
func nowStamp() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// recordKey builds the primary key for a schools/students table item.
func recordKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// emailKey builds the primary key for an email claim row.
func emailKey(recordType, email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: uniquekey.Email(recordType, email)},
		"sk": &types.AttributeValueMemberS{Value: "EMAIL"},
	}
}

// emailClaim builds the transaction item claiming an email for a record.
// The conditional put is what enforces uniqueness.
func (s *Store) emailClaim(recordType, email, recordID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(s.config.EmailsTable),
			Item: map[string]types.AttributeValue{
				"pk":          &types.AttributeValueMemberS{Value: uniquekey.Email(recordType, email)},
				"sk":          &types.AttributeValueMemberS{Value: "EMAIL"},
				"record_type": &types.AttributeValueMemberS{Value: recordType},
				"email":       &types.AttributeValueMemberS{Value: email},
				"record_id":   &types.AttributeValueMemberS{Value: recordID},
			},
			ConditionExpression: aws.String("attribute_not_exists(pk)"),
		},
	}
}

// emailRelease builds the transaction item releasing an email claim.
func (s *Store) emailRelease(recordType, email string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(s.config.EmailsTable),
			Key:       emailKey(recordType, email),
		},
	}
}

// createRecord writes the record item and its email claim in one
// transaction.
func (s *Store) createRecord(ctx context.Context, table, recordType, email, id string, item map[string]types.AttributeValue) error {
	items := []types.TransactWriteItem{
		s.emailClaim(recordType, email, id),
		{
			Put: &types.Put{
				TableName:           aws.String(table),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapCreateError(err, 0, 1)
}

// batchGet fetches raw items by id in chunks, re-requesting unprocessed
// keys until the batch drains.
func (s *Store) batchGet(ctx context.Context, table string, ids []string) ([]map[string]types.AttributeValue, error) {
	var out []map[string]types.AttributeValue
	for start := 0; start < len(ids); start += batchGetMax {
		end := min(start+batchGetMax, len(ids))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, recordKey(id))
		}

		request := map[string]types.KeysAndAttributes{table: {Keys: keys}}
		for len(request) > 0 {
			result, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, result.Responses[table]...)
			request = result.UnprocessedKeys
		}
	}
	return out, nil
}

// mapCreateError maps transaction cancellations for create operations.
// claimIndex is the email claim put, putIndex the record put.
func mapCreateError(err error, claimIndex, putIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == claimIndex {
					return ErrDuplicateEmail
				}
				if i == putIndex {
					return ErrAlreadyExists
				}
			}
		}
	}

	return err
}

// mapSwapError maps transaction cancellations for email-changing updates.
// claimIndex is the new email claim, updateIndex the record update.
func mapSwapError(err error, claimIndex, updateIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == claimIndex {
					return ErrDuplicateEmail
				}
				if i == updateIndex {
					return ErrNotFound
				}
			}
		}
	}

	return err
}

// mapDeleteError maps transaction cancellations for delete operations.
// recordIndex is the conditional delete of the record itself.
func mapDeleteError(err error, recordIndex int) error {
	if err == nil {
		return nil
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				if i == recordIndex {
					return ErrNotFound
				}
			}
		}
	}

	return err
}

// conditionFailed reports whether err is a failed condition check on a
// single-item call.
func conditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

// updateExpr accumulates SET/REMOVE clauses with generated placeholder
// names, the way update expressions are assembled throughout this package.
type updateExpr struct {
	sets    []string
	removes []string
	names   map[string]string
	values  map[string]types.AttributeValue
	n       int
}

func newUpdateExpr() *updateExpr {
	return &updateExpr{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
	}
}

func (e *updateExpr) set(attr string, value types.AttributeValue) {
	nameKey := fmt.Sprintf("#attr%d", e.n)
	valueKey := fmt.Sprintf(":val%d", e.n)
	e.n++
	e.names[nameKey] = attr
	e.values[valueKey] = value
	e.sets = append(e.sets, fmt.Sprintf("%s = %s", nameKey, valueKey))
}

func (e *updateExpr) remove(attr string) {
	nameKey := fmt.Sprintf("#attr%d", e.n)
	e.n++
	e.names[nameKey] = attr
	e.removes = append(e.removes, nameKey)
}

func (e *updateExpr) expression() string {
	var parts []string
	if len(e.sets) > 0 {
		parts = append(parts, "SET "+strings.Join(e.sets, ", "))
	}
	if len(e.removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(e.removes, ", "))
	}
	return strings.Join(parts, " ")
}

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAttr(v int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(v)}
}

func boolAttr(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}

func timeAttr(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(time.RFC3339Nano)}
}
