package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StorageUpload(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Storage(fake, "bnb-images", "https://cdn.example.com/")

	url, err := store.Upload(context.Background(), []byte("jpeg"), "ads/3", "Photo.JPG", "image/jpeg")
	require.NoError(t, err)

	key := aws.StringValue(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "ads/3/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.Equal(t, "bnb-images", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.StringValue(fake.input.ContentType))
	assert.Equal(t, []byte("jpeg"), fake.body)
}

func TestS3StorageUploadError(t *testing.T) {
	store := newS3Storage(&fakeS3{err: errors.New("denied")}, "b", "https://cdn")
	_, err := store.Upload(context.Background(), []byte("x"), "ads", "a.png", "")
	assert.Error(t, err)
}
