package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewDefaultClients loads AWS configuration from the environment (shared
// config files, env vars, IMDS) and returns clients suitable for NewStore
// and NewCommitLog.
func NewDefaultClients(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*s3.Client, *dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, nil, err
	}
	return s3.NewFromConfig(cfg), dynamodb.NewFromConfig(cfg), nil
}
