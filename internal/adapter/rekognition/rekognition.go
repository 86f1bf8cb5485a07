// Package rekognition implements domain.FoodLabeler on Amazon Rekognition.
package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"nutrisnap/internal/domain"
)

const (
	maxLabels     = 15
	minConfidence = 65
)

// API is the subset of the Rekognition client used here.
type API interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Labeler detects labels in meal photos.
type Labeler struct {
	client API
}

var _ domain.FoodLabeler = (*Labeler)(nil)

// New creates a Labeler. Pass rekognition.NewFromConfig(cfg) in production.
func New(client API) *Labeler {
	return &Labeler{client: client}
}

// DetectLabels returns up to 15 labels seen with at least 65% confidence.
func (l *Labeler) DetectLabels(ctx context.Context, image []byte) ([]domain.Label, error) {
	out, err := l.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]domain.Label, 0, len(out.Labels))
	for _, lbl := range out.Labels {
		name := aws.ToString(lbl.Name)
		if name == "" {
			continue
		}
		labels = append(labels, domain.Label{
			Name:       name,
			Confidence: float64(aws.ToFloat32(lbl.Confidence)),
		})
	}
	return labels, nil
}
