// Package sink stores generated artifacts.
package sink

import (
	"context"
	"fmt"

	"altiprofile/pkg/models"
)

// Sink kinds.
const (
	KindFile = "file"
	KindS3   = "s3"
	KindNone = "none"
)

// Sink writes an artifact under name and returns where it ended up.
type Sink interface {
	Write(ctx context.Context, name string, content []byte) (string, error)
}

// New returns the sink selected by the output configuration.
func New(config *models.Config) (Sink, error) {
	switch config.Output.Sink {
	case KindFile, "":
		return NewFileSink(config.Output.Directory), nil
	case KindS3:
		return NewS3Sink(config.S3)
	case KindNone:
		return NoneSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported sink: %s", config.Output.Sink)
	}
}

// NoneSink discards artifacts.
type NoneSink struct{}

func (NoneSink) Write(ctx context.Context, name string, content []byte) (string, error) {
	return "", ctx.Err()
}
