package minio

import (
	"context"
	"errors"
	"net/http"

	"galleryserv/src/errs"

	miniogo "github.com/minio/minio-go/v7"
)

// mapError translates a minio-go error into an *errs.Error. Only "not found"
// carries meaning for callers; everything else is a storage failure.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindStorage, msg, err)
	}

	resp := miniogo.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchObject":
		return errs.Wrap(errs.KindNotFound, msg, err)
	}
	if resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket" {
		return errs.Wrap(errs.KindNotFound, msg, err)
	}
	return errs.Wrap(errs.KindStorage, msg, err)
}
