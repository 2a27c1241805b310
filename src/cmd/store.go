package main

import (
	"context"
	"fmt"

	cfg "galleryserv/src/configuration"
	"galleryserv/src/repository"
	"galleryserv/src/storage"
	"galleryserv/src/storage/awss3"
	"galleryserv/src/storage/minio"
)

func newStore(ctx context.Context, config *cfg.Properties) (storage.Store, error) {
	s3 := config.S3
	switch s3.Driver {
	case "minio":
		client, err := minio.NewMinioS3Client(s3.Host, s3.AccessKey, s3.SecretKey, s3.Bucket, s3.Region, s3.UseSSL)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "aws":
		client, err := awss3.New(ctx, awss3.Config{
			Endpoint:  s3.Host,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
			PathStyle: s3.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "memory":
		log.Warn("using the in-memory object store; data is lost on exit")
		return repository.NewInMemoryStore(s3.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s3.Driver)
	}
}
