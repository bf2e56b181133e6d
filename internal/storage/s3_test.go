package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, _ := io.ReadAll(params.Body)
	f.input, f.body = params, string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Storage{client: fake, cfg: Config{Bucket: "products", PublicBaseURL: "https://cdn.yeoubi.in/"}}

	url, err := store.Upload(context.Background(), "/products/a.jpg", strings.NewReader("jpeg"), "image/jpeg", 4)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.yeoubi.in/products/a.jpg", url)
	assert.Equal(t, "products", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "products/a.jpg", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, "jpeg", fake.body)
}

func TestUpload_Error(t *testing.T) {
	store := &S3Storage{client: &fakeS3{err: errors.New("access denied")}, cfg: Config{Bucket: "products"}}

	_, err := store.Upload(context.Background(), "k", strings.NewReader(""), "image/png", 0)
	assert.ErrorContains(t, err, "access denied")
}

func TestURL_FromEndpoint(t *testing.T) {
	store := &S3Storage{cfg: Config{Endpoint: "https://acc.r2.cloudflarestorage.com/", Bucket: "products"}}
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com/products/x.png", store.URL("x.png"))
}

func TestNewS3Storage_RequiresCredentials(t *testing.T) {
	_, err := NewS3Storage(context.Background(), Config{Bucket: "products"})
	assert.Error(t, err)
}
