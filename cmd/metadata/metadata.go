// The metadata Lambda extracts the source image's intrinsic attributes
// (and, when enabled, Rekognition labels) onto the pipeline state.
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
	st, err := service.ExtractMetadata(ctx, st)
	if err != nil {
		logrus.WithError(err).WithField("key", st.S3Key).Error("metadata extraction failed")
		return st, err
	}
	logrus.WithFields(logrus.Fields{
		"key":    st.S3Key,
		"format": st.Metadata.Format,
		"width":  st.Metadata.WidthPixels,
		"height": st.Metadata.HeightPixels,
	}).Info("extracted metadata")
	return st, nil
}
