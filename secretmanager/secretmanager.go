package secretmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var (
	loadDefaultConfig       = config.LoadDefaultConfig
	newSecretsManagerClient = func(cfg aws.Config) secretsManagerAPI {
		return secretsmanager.NewFromConfig(cfg)
	}
)

// GetSecret returns the string value of the named secret using the default
// AWS credential chain.
func GetSecret(ctx context.Context, secretName string) (string, error) {
	cfg, err := loadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	output, err := newSecretsManagerClient(cfg).GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretName, err)
	}
	if output == nil || output.SecretString == nil {
		return "", errors.New("secret " + secretName + " has no string value")
	}
	return *output.SecretString, nil
}

// GetSecretMap reads a secret stored as a flat JSON object of strings.
func GetSecretMap(ctx context.Context, secretName string) (map[string]string, error) {
	value, err := GetSecret(ctx, secretName)
	if err != nil {
		return nil, err
	}
	secrets := make(map[string]string)
	if err := json.Unmarshal([]byte(value), &secrets); err != nil {
		return nil, fmt.Errorf("parse secret %s: %w", secretName, err)
	}
	return secrets, nil
}
