package minio

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"galleryserv/src/errs"
	"galleryserv/src/storage"
	minio_mock "galleryserv/src/storage/minio/mock"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const bucket = "mockBucket"

var _ storage.Store = (*MinioS3Client)(nil)

func newClient() (*MinioS3Client, *minio_mock.MockClient) {
	m := new(minio_mock.MockClient)
	return NewWithClient(m, bucket), m
}

func TestMinioS3Client_ListGrouped(t *testing.T) {
	s3, m := newClient()
	m.On("ListObjects", mock.Anything, bucket, miniogo.ListObjectsOptions{Prefix: "u1/", Recursive: false}).
		Return([]miniogo.ObjectInfo{
			{Key: "u1/trip/"},
			{Key: "u1/zoo/"},
			{Key: "u1/loose.png", Size: 10, ContentType: "image/png"},
		})

	result, err := s3.List(context.Background(), storage.ListOptions{Prefix: "u1/", Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1/trip/", "u1/zoo/"}, result.Prefixes)
	require.Len(t, result.Objects, 1)
	assert.Equal(t, "image/png", result.Objects[0].ContentType)
	m.AssertExpectations(t)
}

func TestMinioS3Client_ListRecursive(t *testing.T) {
	s3, m := newClient()
	m.On("ListObjects", mock.Anything, bucket, miniogo.ListObjectsOptions{Prefix: "u1/trip/", Recursive: true, WithMetadata: true}).
		Return([]miniogo.ObjectInfo{
			{Key: "u1/trip/.gkeep"},
			{Key: "u1/trip/a.jpg", Size: 3, UserMetadata: miniogo.StringMap{"content-type": "image/jpeg"}},
			{Key: "u1/trip/b.bin", Size: 4},
		})

	result, err := s3.List(context.Background(), storage.ListOptions{Prefix: "u1/trip/"})
	require.NoError(t, err)
	assert.Empty(t, result.Prefixes)
	require.Len(t, result.Objects, 3)
	assert.Equal(t, "image/jpeg", result.Objects[1].ContentType)
	assert.Empty(t, result.Objects[2].ContentType)
	m.AssertExpectations(t)
}

func TestMinioS3Client_ListErrors(t *testing.T) {
	s3, m := newClient()
	m.On("ListObjects", mock.Anything, bucket, mock.Anything).
		Return([]miniogo.ObjectInfo{{Err: errors.New("connection refused")}})

	_, err := s3.List(context.Background(), storage.ListOptions{Prefix: "u1/"})
	assert.Equal(t, errs.KindStorage, errs.KindOf(err))

	_, err = s3.List(context.Background(), storage.ListOptions{Prefix: "u1/", Delimiter: "|"})
	assert.True(t, errs.IsBadRequest(err))
}

func TestMinioS3Client_Exists(t *testing.T) {
	s3, m := newClient()
	m.On("StatObject", mock.Anything, bucket, "u1/trip/.gkeep", mock.Anything).
		Return(miniogo.ObjectInfo{Key: "u1/trip/.gkeep"}, nil)
	m.On("StatObject", mock.Anything, bucket, "u1/none/.gkeep", mock.Anything).
		Return(miniogo.ObjectInfo{}, miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})
	m.On("StatObject", mock.Anything, bucket, "u1/broken/.gkeep", mock.Anything).
		Return(miniogo.ObjectInfo{}, miniogo.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError})

	ok, err := s3.Exists(context.Background(), "u1/trip/.gkeep")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s3.Exists(context.Background(), "u1/none/.gkeep")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s3.Exists(context.Background(), "u1/broken/.gkeep")
	assert.Equal(t, errs.KindStorage, errs.KindOf(err))
}

func TestMinioS3Client_Put(t *testing.T) {
	s3, m := newClient()
	m.On("PutObject", mock.Anything, bucket, "u1/trip/.gkeep", mock.Anything, int64(0),
		miniogo.PutObjectOptions{ContentType: storage.DefaultContentType}).
		Return(miniogo.UploadInfo{}, nil)

	require.NoError(t, s3.Put(context.Background(), "u1/trip/.gkeep", nil, 0, ""))
	m.AssertExpectations(t)
}

func TestMinioS3Client_Delete(t *testing.T) {
	s3, m := newClient()
	m.On("RemoveObject", mock.Anything, bucket, "u1/trip/a.jpg", miniogo.RemoveObjectOptions{}).Return(nil)
	m.On("RemoveObject", mock.Anything, bucket, "u1/trip/b.jpg", miniogo.RemoveObjectOptions{}).
		Return(miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})

	require.NoError(t, s3.Delete(context.Background(), "u1/trip/a.jpg"))
	assert.Equal(t, errs.KindStorage, errs.KindOf(s3.Delete(context.Background(), "u1/trip/b.jpg")))
}

func TestMinioS3Client_SignedURL(t *testing.T) {
	s3, m := newClient()
	getURL, _ := url.Parse("https://s3.example/mockBucket/u1/trip/a.jpg?X-Amz-Signature=get")
	putURL, _ := url.Parse("https://s3.example/mockBucket/u1/trip/b.jpg?X-Amz-Signature=put")

	m.On("PresignedGetObject", mock.Anything, bucket, "u1/trip/a.jpg", time.Hour, mock.Anything).Return(getURL, nil)
	m.On("PresignHeader", mock.Anything, http.MethodPut, bucket, "u1/trip/b.jpg", 15*time.Minute, mock.Anything,
		mock.MatchedBy(func(h http.Header) bool { return h.Get("Content-Type") == "image/jpeg" })).
		Return(putURL, nil)

	u, err := s3.SignedURL(context.Background(), "u1/trip/a.jpg", storage.MethodGet, time.Hour, "")
	require.NoError(t, err)
	assert.Equal(t, getURL.String(), u)

	u, err = s3.SignedURL(context.Background(), "u1/trip/b.jpg", storage.MethodPut, 15*time.Minute, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, putURL.String(), u)

	_, err = s3.SignedURL(context.Background(), "u1/trip/b.jpg", http.MethodDelete, time.Minute, "")
	assert.True(t, errs.IsBadRequest(err))
}

func TestMinioS3Client_Ping(t *testing.T) {
	s3, m := newClient()
	m.On("BucketExists", mock.Anything, bucket).Return(false, nil).Once()
	assert.Error(t, s3.Ping(context.Background()))

	m.On("BucketExists", mock.Anything, bucket).Return(true, nil).Once()
	assert.NoError(t, s3.Ping(context.Background()))
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "x"))
	assert.True(t, errs.IsNotFound(mapError(miniogo.ErrorResponse{Code: "NoSuchKey"}, "x")))
	assert.True(t, errs.IsNotFound(mapError(miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, "x")))
	assert.Equal(t, errs.KindStorage, errs.KindOf(mapError(miniogo.ErrorResponse{Code: "NoSuchBucket", StatusCode: http.StatusNotFound}, "x")))
	assert.Equal(t, errs.KindStorage, errs.KindOf(mapError(context.DeadlineExceeded, "x")))
}
