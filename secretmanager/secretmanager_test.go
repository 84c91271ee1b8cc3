package secretmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
)

type stubSecretsClient struct {
	output *secretsmanager.GetSecretValueOutput
	err    error
	asked  *string
}

func (s stubSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if s.asked != nil {
		*s.asked = aws.ToString(params.SecretId)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func stubAWS(t *testing.T, client secretsManagerAPI) {
	t.Helper()
	originalLoad := loadDefaultConfig
	originalNew := newSecretsManagerClient
	loadDefaultConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newSecretsManagerClient = func(cfg aws.Config) secretsManagerAPI {
		return client
	}
	t.Cleanup(func() {
		loadDefaultConfig = originalLoad
		newSecretsManagerClient = originalNew
	})
}

func TestGetSecretLoadConfigError(t *testing.T) {
	originalLoad := loadDefaultConfig
	loadDefaultConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("config error")
	}
	defer func() { loadDefaultConfig = originalLoad }()

	_, err := GetSecret(context.Background(), "secret")
	assert.ErrorContains(t, err, "load aws config")
}

func TestGetSecretClientError(t *testing.T) {
	stubAWS(t, stubSecretsClient{err: errors.New("client error")})

	_, err := GetSecret(context.Background(), "secret")
	assert.ErrorContains(t, err, "client error")
}

func TestGetSecretWithoutString(t *testing.T) {
	stubAWS(t, stubSecretsClient{output: &secretsmanager.GetSecretValueOutput{}})

	_, err := GetSecret(context.Background(), "secret")
	assert.Error(t, err)
}

func TestGetSecretSuccess(t *testing.T) {
	var asked string
	stubAWS(t, stubSecretsClient{output: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("value")}, asked: &asked})

	value, err := GetSecret(context.Background(), "prod/maker-profiles")
	assert.NoError(t, err)
	assert.Equal(t, "value", value)
	assert.Equal(t, "prod/maker-profiles", asked)
}

func TestGetSecretMap(t *testing.T) {
	stubAWS(t, stubSecretsClient{output: &secretsmanager.GetSecretValueOutput{SecretString: aws.String(`{"CSRF_KEY":"abc"}`)}})

	secrets, err := GetSecretMap(context.Background(), "prod/maker-profiles")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"CSRF_KEY": "abc"}, secrets)
}

func TestGetSecretMapInvalidJSON(t *testing.T) {
	stubAWS(t, stubSecretsClient{output: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("not-json")}})

	_, err := GetSecretMap(context.Background(), "prod/maker-profiles")
	assert.ErrorContains(t, err, "parse secret")
}

func TestNewSecretsManagerClientDefault(t *testing.T) {
	client := newSecretsManagerClient(aws.Config{})
	assert.NotNil(t, client)
}
