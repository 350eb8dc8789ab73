package s3blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Script-GH/Ai-tutor/internal/store"
)

// memoryS3 is an in-memory stand-in for the S3 object API.
type memoryS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
	delErr       error
}

func newMemoryS3() *memoryS3 {
	return &memoryS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[aws.ToString(in.Key)] = data
	m.contentTypes[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryS3()
	s := newStore(backend, "syllabi", "uploads")

	id, err := s.Put(ctx, []byte("week 1: cells"), "bio.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, ContentID([]byte("week 1: cells")), id)
	assert.Len(t, string(id), 64)
	assert.Contains(t, backend.objects, "uploads/"+string(id))
	assert.Equal(t, "application/pdf", backend.contentTypes["uploads/"+string(id)])

	data, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("week 1: cells"), data)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, store.ErrBlobNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPutIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryS3()
	s := newStore(backend, "syllabi", "")

	a, err := s.Put(ctx, []byte("same"), "a.txt", "")
	require.NoError(t, err)
	b, err := s.Put(ctx, []byte("same"), "b.txt", "text/plain")
	require.NoError(t, err)
	c, err := s.Put(ctx, []byte("different"), "a.txt", "")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, backend.objects, 2)
	assert.Contains(t, backend.objects, string(a), "no prefix means the id is the key")
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	backend := newMemoryS3()
	s := newStore(backend, "syllabi", "p")

	backend.putErr = errors.New("connection refused")
	_, err := s.Put(ctx, []byte("x"), "x", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrBlobNotFound)

	backend.delErr = &smithy.GenericAPIError{Code: "NoSuchKey"}
	assert.NoError(t, s.Delete(ctx, "abc"), "deleting a missing object succeeds")

	backend.delErr = &smithy.GenericAPIError{Code: "AccessDenied"}
	assert.Error(t, s.Delete(ctx, "abc"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "SlowDown"}))
	assert.False(t, isNotFound(errors.New("boom")))
}
