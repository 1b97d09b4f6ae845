// The thumbnails Lambda derives one fit-within thumbnail per configured
// target box from the validated source image and records their locations
// on the pipeline state.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"imagepipeline-api/pkg/pipeline"
)

var service pipeline.Service

func main() {
	cfg, err := pipeline.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load pipeline config: " + err.Error())
	}
	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal("Failed to load AWS config: " + err.Error())
	}
	service = pipeline.NewService(cfg,
		s3.NewFromConfig(awsCfg),
		dynamodb.NewFromConfig(awsCfg),
		rekognition.NewFromConfig(awsCfg))
	lambda.Start(handle)
}

func handle(ctx context.Context, st pipeline.State) (pipeline.State, error) {
	st, err := service.DeriveThumbnails(ctx, st)
	if err != nil {
		logrus.WithError(err).WithField("key", st.S3Key).Error("thumbnail derivation failed")
		return st, err
	}
	logrus.WithFields(logrus.Fields{
		"key":   st.S3Key,
		"count": len(st.Thumbnails),
	}).Info("derived thumbnails")
	return st, nil
}
