// Package minio implements storage.Store on top of minio-go.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"galleryserv/src/errs"
	"galleryserv/src/storage"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ClientMinio is the subset of *minio.Client the store needs.
type ClientMinio interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListObjects(ctx context.Context, bucketName string, opts miniogo.ListObjectsOptions) <-chan miniogo.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts miniogo.StatObjectOptions) (miniogo.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts miniogo.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PresignHeader(ctx context.Context, method, bucketName, objectName string, expires time.Duration, reqParams url.Values, extraHeaders http.Header) (*url.URL, error)
}

type MinioS3Client struct {
	bucketName string
	client     ClientMinio
}

// NewMinioS3Client creates a store for bucketName on the MinIO (or any
// S3-compatible) server at endpoint.
func NewMinioS3Client(endpoint, accessKeyID, secretAccessKey, bucketName, region string, useSSL bool) (*MinioS3Client, error) {
	minioClient, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to create minio client", err)
	}
	return NewWithClient(minioClient, bucketName), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ClientMinio, bucketName string) *MinioS3Client {
	return &MinioS3Client{bucketName: bucketName, client: client}
}

func (s3 *MinioS3Client) Ping(ctx context.Context) error {
	ok, err := s3.client.BucketExists(ctx, s3.bucketName)
	if err != nil {
		return mapError(err, "ping failed")
	}
	if !ok {
		return errs.New(errs.KindStorage, fmt.Sprintf("bucket %s does not exist", s3.bucketName))
	}
	return nil
}

// List supports only the "/" delimiter, which is what MinIO groups on when
// listing non-recursively.
func (s3 *MinioS3Client) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	if opts.Delimiter != "" && opts.Delimiter != "/" {
		return nil, errs.New(errs.KindBadRequest, fmt.Sprintf("unsupported delimiter %q", opts.Delimiter))
	}
	grouped := opts.Delimiter != ""

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &storage.ListResult{}
	// MinIO returns user metadata, including the content type, for flat
	// listings when asked; other servers ignore the flag.
	objectCh := s3.client.ListObjects(ctx, s3.bucketName, miniogo.ListObjectsOptions{
		Prefix:       opts.Prefix,
		Recursive:    !grouped,
		WithMetadata: !grouped,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, mapError(object.Err, "failed to list objects")
		}
		if grouped && strings.HasSuffix(object.Key, "/") && object.Key != opts.Prefix {
			result.Prefixes = append(result.Prefixes, object.Key)
			continue
		}
		result.Objects = append(result.Objects, toObjectInfo(object))
	}
	return result, nil
}

func (s3 *MinioS3Client) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	object, err := s3.client.StatObject(ctx, s3.bucketName, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}
	info := toObjectInfo(object)
	if info.Key == "" {
		info.Key = key
	}
	return &info, nil
}

func (s3 *MinioS3Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s3.Stat(ctx, key)
	if err == nil {
		return true, nil
	}
	if errs.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s3 *MinioS3Client) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = storage.DefaultContentType
	}
	if body == nil {
		body = strings.NewReader("")
		size = 0
	}
	_, err := s3.client.PutObject(ctx, s3.bucketName, key, body, size,
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return mapError(err, "failed to upload object")
	}
	return nil
}

func (s3 *MinioS3Client) Delete(ctx context.Context, key string) error {
	if err := s3.client.RemoveObject(ctx, s3.bucketName, key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

func (s3 *MinioS3Client) SignedURL(ctx context.Context, key, method string, ttl time.Duration, contentType string) (string, error) {
	var (
		u   *url.URL
		err error
	)
	switch method {
	case storage.MethodGet:
		u, err = s3.client.PresignedGetObject(ctx, s3.bucketName, key, ttl, nil)
	case storage.MethodPut:
		headers := make(http.Header)
		if contentType != "" {
			headers.Set("Content-Type", contentType)
		}
		u, err = s3.client.PresignHeader(ctx, http.MethodPut, s3.bucketName, key, ttl, nil, headers)
	default:
		return "", errs.New(errs.KindBadRequest, fmt.Sprintf("cannot sign method %s", method))
	}
	if err != nil {
		return "", mapError(err, "failed to generate presigned URL")
	}
	return u.String(), nil
}

func toObjectInfo(object miniogo.ObjectInfo) storage.ObjectInfo {
	contentType := object.ContentType
	if contentType == "" {
		for key, value := range object.UserMetadata {
			if strings.EqualFold(key, "Content-Type") {
				contentType = value
				break
			}
		}
	}
	return storage.ObjectInfo{
		Key:          object.Key,
		Size:         object.Size,
		ContentType:  contentType,
		ETag:         object.ETag,
		LastModified: object.LastModified,
	}
}
