package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestS3StorePut(t *testing.T) {
	client := new(mockS3Client)
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "blog-images" && *in.Key == "1-abc.png" && *in.ContentType == "image/png" && string(body) == "data"
	})).Return(&s3.PutObjectOutput{}, nil)

	store := NewS3Store(client, S3Options{Bucket: "blog-images", Region: "eu-west-1"})
	require.NoError(t, store.Put(context.Background(), "1-abc.png", "image/png", []byte("data")))
	client.AssertExpectations(t)

	assert.Equal(t, "https://blog-images.s3.eu-west-1.amazonaws.com/1-abc.png", store.URL("1-abc.png"))
}

func TestS3StorePublicURL(t *testing.T) {
	store := NewS3Store(new(mockS3Client), S3Options{Bucket: "b", PublicURL: "https://img.example.com/"})
	assert.Equal(t, "https://img.example.com/k.png", store.URL("k.png"))
}

func TestS3StorePutError(t *testing.T) {
	client := new(mockS3Client)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	store := NewS3Store(client, S3Options{Bucket: "b", Region: "r"})
	assert.ErrorContains(t, store.Put(context.Background(), "k", "image/png", []byte("x")), "access denied")
}
