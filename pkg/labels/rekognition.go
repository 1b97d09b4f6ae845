package labels

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionDetector detects image labels using Amazon Rekognition,
// referencing the image in place in its S3 bucket.
type RekognitionDetector struct {
	Client *rekognition.Client
}

// NewRekognitionDetector returns a Detector backed by Amazon Rekognition.
func NewRekognitionDetector(client *rekognition.Client) RekognitionDetector {
	return RekognitionDetector{Client: client}
}

// DetectLabels detects up to maxLabels labels with at least minConfidence
// confidence in the specified S3 object.
func (d RekognitionDetector) DetectLabels(ctx context.Context, bucketName, fileName string, maxLabels int32, minConfidence float32) ([]Label, error) {
	if d.Client == nil {
		return nil, fmt.Errorf("detect labels for %s: rekognition client not configured", fileName)
	}
	res, err := d.Client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: &bucketName,
				Name:   &fileName,
			},
		},
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels for s3://%s/%s: %w", bucketName, fileName, err)
	}
	var found []Label
	for _, l := range res.Labels {
		if l.Name == nil {
			continue
		}
		label := Label{Name: *l.Name}
		if l.Confidence != nil {
			label.Confidence = float64(*l.Confidence)
		}
		found = append(found, label)
	}
	return found, nil
}
