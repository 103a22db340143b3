package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// SecretsAPI is the subset of the Secrets Manager client used to resolve
// connection strings.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsOption configures ResolveSecrets.
type SecretsOption func(*secretsResolver)

type secretsResolver struct {
	client SecretsAPI
}

// WithSecretsClient sets a custom Secrets Manager client.
func WithSecretsClient(c SecretsAPI) SecretsOption {
	return func(r *secretsResolver) { r.client = c }
}

// ResolveSecrets replaces postgres.dsn with the value of postgres.dsnSecret
// when one is configured. The AWS client is only created when needed.
func ResolveSecrets(ctx context.Context, cfg *types.ProjectConfig, opts ...SecretsOption) error {
	if cfg.Postgres == nil || cfg.Postgres.DSNSecret == "" {
		return nil
	}

	r := &secretsResolver{}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		r.client = secretsmanager.NewFromConfig(awsCfg)
	}

	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(cfg.Postgres.DSNSecret),
	})
	if err != nil {
		return fmt.Errorf("reading secret %s: %w", cfg.Postgres.DSNSecret, err)
	}
	dsn := aws.ToString(out.SecretString)
	if dsn == "" {
		return fmt.Errorf("secret %s has no string value", cfg.Postgres.DSNSecret)
	}
	cfg.Postgres.DSN = dsn
	return nil
}
