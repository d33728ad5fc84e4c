package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// CreateStudent validates and persists a new student. The store assigns
// the id and timestamps, claims the student's email, and defaults
// EnrollmentDate to now when unset. The school reference is stored as
// supplied; roster membership is the coordinator's to maintain.
func (s *Store) CreateStudent(ctx context.Context, student *Student) error {
	student.Email = NormalizeEmail(student.Email)
	if student.EnrollmentDate.IsZero() {
		student.EnrollmentDate = nowStamp()
	}
	if err := student.Validate(); err != nil {
		return err
	}

	student.ID = uuid.NewString()
	now := nowStamp()
	student.CreatedAt = now
	student.UpdatedAt = now

	item, err := attributevalue.MarshalMap(student)
	if err != nil {
		return fmt.Errorf("marshal student: %w", err)
	}
	return s.createRecord(ctx, s.config.StudentsTable, recordTypeStudent, student.Email, student.ID, item)
}

// GetStudent fetches a student by id.
func (s *Store) GetStudent(ctx context.Context, id string) (*Student, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.config.StudentsTable),
		Key:       recordKey(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	var student Student
	if err := attributevalue.UnmarshalMap(result.Item, &student); err != nil {
		return nil, fmt.Errorf("unmarshal student: %w", err)
	}
	return &student, nil
}

// ListStudents returns students matching the filter. A school-scoped
// listing queries the school index; everything else scans.
func (s *Store) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	if filter.School != "" {
		return s.queryStudentsBySchool(ctx, filter)
	}
	return s.scanStudents(ctx, filter)
}

func (s *Store) queryStudentsBySchool(ctx context.Context, filter StudentFilter) ([]Student, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.config.StudentsTable),
		IndexName:              aws.String(s.config.StudentSchoolIndex),
		KeyConditionExpression: aws.String("#school = :school"),
		ExpressionAttributeNames: map[string]string{
			"#school": "school",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":school": &types.AttributeValueMemberS{Value: filter.School},
		},
	}
	if expr, names, values := filter.conditions(); expr != "" {
		input.FilterExpression = aws.String(expr)
		for k, v := range names {
			input.ExpressionAttributeNames[k] = v
		}
		for k, v := range values {
			input.ExpressionAttributeValues[k] = v
		}
	}

	var students []Student
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []Student
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal students: %w", err)
		}
		students = append(students, batch...)
	}
	return students, nil
}

func (s *Store) scanStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.config.StudentsTable),
	}
	if expr, names, values := filter.conditions(); expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var students []Student
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []Student
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal students: %w", err)
		}
		students = append(students, batch...)
	}
	return students, nil
}

// GetStudentsBatch fetches students by id. Ids that no longer resolve are
// silently skipped; the result order is unspecified.
func (s *Store) GetStudentsBatch(ctx context.Context, ids []string) ([]Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := s.batchGet(ctx, s.config.StudentsTable, ids)
	if err != nil {
		return nil, err
	}
	var students []Student
	if err := attributevalue.UnmarshalListOfMaps(raw, &students); err != nil {
		return nil, fmt.Errorf("unmarshal students: %w", err)
	}
	return students, nil
}

// UpdateStudent applies a partial update, re-validating only the supplied
// fields. Setting School persists the reference verbatim; roster set
// maintenance happens in the coordinator before this call. Returns the
// updated record.
func (s *Store) UpdateStudent(ctx context.Context, id string, upd StudentUpdate) (*Student, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	expr := upd.expr()
	expr.set("updated_at", timeAttr(nowStamp()))

	if upd.Email != nil {
		current, err := s.GetStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		if newEmail := NormalizeEmail(*upd.Email); newEmail != current.Email {
			return s.updateStudentEmail(ctx, current, expr, newEmail)
		}
	}
	return s.applyStudentUpdate(ctx, id, expr)
}

// applyStudentUpdate runs a plain conditional update and returns the new
// state of the record.
func (s *Store) applyStudentUpdate(ctx context.Context, id string, expr *updateExpr) (*Student, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.StudentsTable),
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

	var student Student
	if err := attributevalue.UnmarshalMap(result.Attributes, &student); err != nil {
		return nil, fmt.Errorf("unmarshal student: %w", err)
	}
	return &student, nil
}

// updateStudentEmail releases the old email claim, writes the new one and
// applies the update in a single transaction, then re-reads the record.
func (s *Store) updateStudentEmail(ctx context.Context, current *Student, expr *updateExpr, newEmail string) (*Student, error) {
	items := []types.TransactWriteItem{
		s.emailRelease(recordTypeStudent, current.Email),
		s.emailClaim(recordTypeStudent, newEmail, current.ID),
		{
			Update: &types.Update{
				TableName:                 aws.String(s.config.StudentsTable),
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
	return s.GetStudent(ctx, current.ID)
}

// SetStudentSchool sets or clears a student's school reference without any
// roster maintenance. An empty schoolID removes the attribute.
func (s *Store) SetStudentSchool(ctx context.Context, studentID, schoolID string) error {
	expr := newUpdateExpr()
	if schoolID == "" {
		expr.remove("school")
	} else {
		expr.set("school", stringAttr(schoolID))
	}
	expr.set("updated_at", timeAttr(nowStamp()))

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.StudentsTable),
		Key:                       recordKey(studentID),
		UpdateExpression:          aws.String(expr.expression()),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
	})
	if conditionFailed(err) {
		return ErrNotFound
	}
	return err
}

// DeleteStudent removes the record and releases its email claim. The
// caller passes the full record so the claim key can be derived without a
// read.
func (s *Store) DeleteStudent(ctx context.Context, student *Student) error {
	items := []types.TransactWriteItem{
		{
			Delete: &types.Delete{
				TableName:           aws.String(s.config.StudentsTable),
				Key:                 recordKey(student.ID),
				ConditionExpression: aws.String("attribute_exists(id)"),
			},
		},
		s.emailRelease(recordTypeStudent, student.Email),
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	return mapDeleteError(err, 0)
}

// conditions builds the non-key filter clauses for grade and isActive.
// The school constraint is handled separately: as the key condition on the
// index query, or not at all on a scan.
func (f StudentFilter) conditions() (string, map[string]string, map[string]types.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if f.Grade != "" {
		clauses = append(clauses, "#grade = :grade")
		names["#grade"] = "grade"
		values[":grade"] = &types.AttributeValueMemberS{Value: f.Grade}
	}
	if f.IsActive != nil {
		clauses = append(clauses, "#is_active = :is_active")
		names["#is_active"] = "is_active"
		values[":is_active"] = &types.AttributeValueMemberBOOL{Value: *f.IsActive}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return strings.Join(clauses, " AND "), names, values
}

// expr converts the supplied fields into update clauses. An empty School
// value becomes a REMOVE of the attribute.
func (u StudentUpdate) expr() *updateExpr {
	e := newUpdateExpr()
	if u.FirstName != nil {
		e.set("first_name", stringAttr(*u.FirstName))
	}
	if u.LastName != nil {
		e.set("last_name", stringAttr(*u.LastName))
	}
	if u.Email != nil {
		e.set("email", stringAttr(NormalizeEmail(*u.Email)))
	}
	if u.Phone != nil {
		e.set("phone", stringAttr(*u.Phone))
	}
	if u.DateOfBirth != nil {
		e.set("date_of_birth", timeAttr(*u.DateOfBirth))
	}
	if u.Grade != nil {
		e.set("grade", stringAttr(*u.Grade))
	}
	if u.Address != nil {
		attr, _ := attributevalue.Marshal(u.Address)
		e.set("address", attr)
	}
	if u.ParentInfo != nil {
		attr, _ := attributevalue.Marshal(u.ParentInfo)
		e.set("parent_info", attr)
	}
	if u.EnrollmentDate != nil {
		e.set("enrollment_date", timeAttr(*u.EnrollmentDate))
	}
	if u.IsActive != nil {
		e.set("is_active", boolAttr(*u.IsActive))
	}
	if u.School != nil {
		if *u.School == "" {
			e.remove("school")
		} else {
			e.set("school", stringAttr(*u.School))
		}
	}
	return e
}
