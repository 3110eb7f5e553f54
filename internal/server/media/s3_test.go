package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 swaps the package seams for the duration of the test.
func stubS3(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origDel, origGet := putObject, deleteObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origNew, origPre
		putObject, deleteObject, presignGetObject = origPut, origDel, origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func newTestS3Store(t *testing.T) *S3Store {
	t.Helper()
	s, err := NewS3Store(context.Background(), S3Options{Bucket: "recipes", Region: "us-east-1"})
	require.NoError(t, err)
	return s
}

func TestNewS3Store_AppliesOptions(t *testing.T) {
	stubS3(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s, err := NewS3Store(context.Background(), S3Options{
		Region: "eu-west-1", AccessKey: "a", SecretKey: "b",
		Endpoint: "http://minio:9000", Bucket: "recipes",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://minio:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, 15*time.Minute, s.expires)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	stubS3(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), S3Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config")
}

func TestS3Store_Save(t *testing.T) {
	stubS3(t)
	s := newTestS3Store(t)

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		got = in
		body, _ = io.ReadAll(in.Body)
		return nil
	}

	require.NoError(t, s.Save(context.Background(), "recipes/k.png", "image/png", []byte("abc")))
	assert.Equal(t, "recipes", aws.ToString(got.Bucket))
	assert.Equal(t, "recipes/k.png", aws.ToString(got.Key))
	assert.Equal(t, "image/png", aws.ToString(got.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "abc", string(body))

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		return errors.New("denied")
	}
	err := s.Save(context.Background(), "recipes/k.png", "image/png", []byte("abc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}

func TestS3Store_Delete(t *testing.T) {
	stubS3(t)
	s := newTestS3Store(t)

	calls := 0
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		calls++
		switch aws.ToString(in.Key) {
		case "gone":
			return &types.NoSuchKey{}
		case "broken":
			return errors.New("boom")
		}
		return nil
	}

	assert.NoError(t, s.Delete(context.Background(), ""))
	assert.Equal(t, 0, calls, "empty key must not reach s3")
	assert.NoError(t, s.Delete(context.Background(), "k"))
	assert.NoError(t, s.Delete(context.Background(), "gone"))
	assert.Error(t, s.Delete(context.Background(), "broken"))
}

func TestS3Store_URL(t *testing.T) {
	stubS3(t)
	s := newTestS3Store(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 15*time.Minute, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "https://s3/" + aws.ToString(in.Key), Method: http.MethodGet}, nil
	}

	url, err := s.URL(context.Background(), "recipes/k.png")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/recipes/k.png", url)

	url, err = s.URL(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, url)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}
	_, err = s.URL(context.Background(), "recipes/k.png")
	assert.Error(t, err)
}

func TestNewStore_SelectsBackend(t *testing.T) {
	stubS3(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MediaRoot = t.TempDir()

	st, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, st)

	cfg.MediaBackend = config.MediaBackendS3
	st, err = NewStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, st)

	cfg.MediaBackend = "ftp"
	_, err = NewStore(context.Background(), cfg)
	assert.Error(t, err)
}
