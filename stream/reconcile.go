// Package stream provides the DynamoDB Streams handler that repairs
// enrollment references after out-of-band deletes.
//
// A REMOVE that bypassed the coordinator (console delete, migration
// tooling) leaves the other side of the association dangling: students
// still referencing a vanished school, or a roster still holding a
// vanished student. The handler replays every REMOVE through the
// coordinator's detach operations, which are idempotent, so records
// deleted through the API reconcile to a no-op.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/roster/enrollment"
	"github.com/jacentio/roster/store"
)

// Handler processes DynamoDB stream events for the roster tables.
type Handler struct {
	coord  *enrollment.Coordinator
	config store.Config
	logger *slog.Logger
}

// NewHandler creates a new stream handler. The config's table names route
// each record; a nil logger falls back to slog.Default().
func NewHandler(coord *enrollment.Coordinator, config store.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		coord:  coord,
		config: config,
		logger: logger,
	}
}

// HandleStreamEvent processes a batch of DynamoDB stream records.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleStreamEvent(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord reconciles a single stream record. Non-REMOVE events and
// records from unknown tables are skipped.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	table := tableFromStreamARN(record.EventSourceArn)
	id := getStringAttr(record.Change.OldImage, "id")
	if id == "" {
		h.logger.Warn("stream record without id",
			"eventID", record.EventID,
			"table", table,
		)
		return nil
	}

	switch table {
	case h.config.SchoolsTable:
		cleared, err := h.coord.DetachSchool(ctx, id)
		if err != nil {
			return fmt.Errorf("detach school %s: %w", id, err)
		}
		h.logger.Info("school removal reconciled",
			"school", id,
			"studentsCleared", cleared,
		)
	case h.config.StudentsTable:
		school := getStringAttr(record.Change.OldImage, "school")
		if school == "" {
			return nil
		}
		if err := h.coord.DetachStudent(ctx, id, school); err != nil {
			return fmt.Errorf("detach student %s: %w", id, err)
		}
		h.logger.Info("student removal reconciled",
			"student", id,
			"school", school,
		)
	}

	return nil
}

// tableFromStreamARN extracts the table name from a stream ARN
// ("arn:aws:dynamodb:region:account:table/Name/stream/label").
func tableFromStreamARN(arn string) string {
	parts := strings.Split(arn, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
