package stream

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

// --- tableFromStreamARN Tests ---

func TestTableFromStreamARN(t *testing.T) {
	arn := "arn:aws:dynamodb:us-east-1:123456789012:table/roster_schools/stream/2024-05-01T00:00:00.000"

	if got := tableFromStreamARN(arn); got != "roster_schools" {
		t.Errorf("expected 'roster_schools', got %q", got)
	}
}

func TestTableFromStreamARN_NoStreamLabel(t *testing.T) {
	arn := "arn:aws:dynamodb:us-east-1:123456789012:table/roster_students"

	if got := tableFromStreamARN(arn); got != "roster_students" {
		t.Errorf("expected 'roster_students', got %q", got)
	}
}

func TestTableFromStreamARN_Empty(t *testing.T) {
	if got := tableFromStreamARN(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestTableFromStreamARN_NoSlashes(t *testing.T) {
	if got := tableFromStreamARN("not-an-arn"); got != "" {
		t.Errorf("expected empty string for arn without separators, got %q", got)
	}
}

// --- getStringAttr Tests ---

func TestGetStringAttr_ExistingString(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewStringAttribute("school-1"),
	}

	if got := getStringAttr(image, "id"); got != "school-1" {
		t.Errorf("expected 'school-1', got %q", got)
	}
}

func TestGetStringAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"other": events.NewStringAttribute("value"),
	}

	if got := getStringAttr(image, "id"); got != "" {
		t.Errorf("expected empty string for missing key, got %q", got)
	}
}

func TestGetStringAttr_NilImage(t *testing.T) {
	var image map[string]events.DynamoDBAttributeValue

	if got := getStringAttr(image, "id"); got != "" {
		t.Errorf("expected empty string for nil image, got %q", got)
	}
}

func TestGetStringAttr_WrongType(t *testing.T) {
	// A non-string attribute under the key reads as absent.
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewNumberAttribute("42"),
	}

	if got := getStringAttr(image, "id"); got != "" {
		t.Errorf("expected empty string for number attribute, got %q", got)
	}
}

func TestGetStringAttr_EmptyStringValue(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"school": events.NewStringAttribute(""),
	}

	if got := getStringAttr(image, "school"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

// --- Benchmarks ---

func BenchmarkGetStringAttr(b *testing.B) {
	image := map[string]events.DynamoDBAttributeValue{
		"id": events.NewStringAttribute("12345678-1234-1234-1234-123456789012"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		getStringAttr(image, "id")
	}
}

func BenchmarkTableFromStreamARN(b *testing.B) {
	arn := "arn:aws:dynamodb:us-east-1:123456789012:table/roster_students/stream/2024-05-01T00:00:00.000"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tableFromStreamARN(arn)
	}
}
