// The reconciler runs as an AWS Lambda function attached to the DynamoDB
// streams of the schools and students tables. It repairs enrollment
// references left behind by deletes that bypassed the service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/roster/enrollment"
	"github.com/jacentio/roster/internal/config"
	"github.com/jacentio/roster/store"
	"github.com/jacentio/roster/stream"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config failed", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Error("load aws config failed", "error", err)
		os.Exit(1)
	}

	st := store.New(dynamodb.NewFromConfig(awsCfg), cfg.Store())
	coord := enrollment.NewCoordinator(st)
	handler := stream.NewHandler(coord, cfg.Store(), log)

	lambda.Start(handler.HandleStreamEvent)
}
