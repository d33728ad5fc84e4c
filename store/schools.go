package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// CreateSchool validates and persists a new school. The store assigns the
// id and timestamps and claims the school's email. The students set always
// starts empty regardless of what the caller put in it.
func (s *Store) CreateSchool(ctx context.Context, school *School) error {
	school.Email = NormalizeEmail(school.Email)
	if err := school.Validate(); err != nil {
		return err
	}

	school.ID = uuid.NewString()
	school.Students = nil
	now := nowStamp()
	school.CreatedAt = now
	school.UpdatedAt = now

	item, err := attributevalue.MarshalMap(school)
	if err != nil {
		return fmt.Errorf("marshal school: %w", err)
	}
	return s.createRecord(ctx, s.config.SchoolsTable, recordTypeSchool, school.Email, school.ID, item)
}

// GetSchool fetches a school by id.
func (s *Store) GetSchool(ctx context.Context, id string) (*School, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.SchoolsTable),
		Key:       recordKey(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var school School
	if err := attributevalue.UnmarshalMap(result.Item, &school); err != nil {
		return nil, fmt.Errorf("unmarshal school: %w", err)
	}
	return &school, nil
}

// ListSchools returns every school.
func (s *Store) ListSchools(ctx context.Context) ([]School, error) {
	var schools []School
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.config.SchoolsTable),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []School
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal schools: %w", err)
		}
		schools = append(schools, batch...)
	}
	return schools, nil
}

// GetSchoolsBatch fetches schools by id. Ids that no longer resolve are
// silently skipped; the result order is unspecified.
func (s *Store) GetSchoolsBatch(ctx context.Context, ids []string) ([]School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := s.batchGet(ctx, s.config.SchoolsTable, ids)
	if err != nil {
		return nil, err
	}
	var schools []School
	if err := attributevalue.UnmarshalListOfMaps(raw, &schools); err != nil {
		return nil, fmt.Errorf("unmarshal schools: %w", err)
	}
	return schools, nil
}

// UpdateSchool applies a partial update, re-validating only the supplied
// fields. An email change atomically swaps the email claim and fails with
// ErrDuplicateEmail when the new address is already taken. Returns the
// updated record.
func (s *Store) UpdateSchool(ctx context.Context, id string, upd SchoolUpdate) (*School, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	expr := upd.expr()
	expr.set("updated_at", timeAttr(nowStamp()))

	if upd.Email != nil {
		current, err := s.GetSchool(ctx, id)
		if err != nil {
			return nil, err
		}
		if newEmail := NormalizeEmail(*upd.Email); newEmail != current.Email {
			return s.updateSchoolEmail(ctx, current, expr, newEmail)
		}
	}
	return s.applySchoolUpdate(ctx, id, expr)
}

// applySchoolUpdate runs a plain conditional update and returns the new
// state of the record.
func (s *Store) applySchoolUpdate(ctx context.Context, id string, expr *updateExpr) (*School, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.SchoolsTable),
		Key:                       recordKey(id),
		UpdateExpression:          aws.String(expr.expression()),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if conditionFailed(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var school School
	if err := attributevalue.UnmarshalMap(result.Attributes, &school); err != nil {
		return nil, fmt.Errorf("unmarshal school: %w", err)
	}
	return &school, nil
}

// updateSchoolEmail releases the old email claim, writes the new one and
// applies the update in a single transaction. Transactions return no item
// state, so the record is re-read afterwards.
func (s *Store) updateSchoolEmail(ctx context.Context, current *School, expr *updateExpr, newEmail string) (*School, error) {
	items := []types.TransactWriteItem{
		s.emailRelease(recordTypeSchool, current.Email),
		s.emailClaim(recordTypeSchool, newEmail, current.ID),
		{
			Update: &types.Update{
				TableName:                 aws.String(s.config.SchoolsTable),
				Key:                       recordKey(current.ID),
				UpdateExpression:          aws.String(expr.expression()),
				ConditionExpression:       aws.String("attribute_exists(id)"),
				ExpressionAttributeNames:  expr.names,
				ExpressionAttributeValues: expr.values,
			},
		},
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return nil, mapSwapError(err, 1, 2)
	}
	return s.GetSchool(ctx, current.ID)
}

// DeleteSchool removes the record and releases its email claim. The caller
// passes the full record so the claim key can be derived without a read.
func (s *Store) DeleteSchool(ctx context.Context, school *School) error {
	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:           aws.String(s.config.SchoolsTable),
				Key:                 recordKey(school.ID),
				ConditionExpression: aws.String("attribute_exists(id)"),
			},
		},
		s.emailRelease(recordTypeSchool, school.Email),
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapDeleteError(err, 0)
}

// AddStudentToSet atomically adds a student id to a school's students set.
// Adding an existing member is a no-op. Fails with ErrNotFound when the
// school record is absent; the condition also keeps the update from
// upserting a ghost item.
func (s *Store) AddStudentToSet(ctx context.Context, schoolID, studentID string) error {
	return s.editStudentSet(ctx, schoolID, studentID, "ADD")
}

// RemoveStudentFromSet atomically removes a student id from a school's
// students set. Removing an absent member is a no-op. Fails with
// ErrNotFound when the school record is absent.
func (s *Store) RemoveStudentFromSet(ctx context.Context, schoolID, studentID string) error {
	return s.editStudentSet(ctx, schoolID, studentID, "DELETE")
}

func (s *Store) editStudentSet(ctx context.Context, schoolID, studentID, action string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.config.SchoolsTable),
		Key:                 recordKey(schoolID),
		UpdateExpression:    aws.String(action + " #students :member SET #updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#students":   "students",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":member": &types.AttributeValueMemberSS{Value: []string{studentID}},
			":now":    timeAttr(nowStamp()),
		},
	})
	if conditionFailed(err) {
		return ErrNotFound
	}
	return err
}

// expr converts the supplied fields into update clauses.
func (u SchoolUpdate) expr() *updateExpr {
	e := newUpdateExpr()
	if u.Name != nil {
		e.set("name", stringAttr(*u.Name))
	}
	if u.Address != nil {
		e.set("address", stringAttr(*u.Address))
	}
	if u.Phone != nil {
		e.set("phone", stringAttr(*u.Phone))
	}
	if u.Email != nil {
		e.set("email", stringAttr(NormalizeEmail(*u.Email)))
	}
	if u.EstablishedYear != nil {
		e.set("established_year", numberAttr(*u.EstablishedYear))
	}
	if u.Principal != nil {
		e.set("principal", stringAttr(*u.Principal))
	}
	return e
}
