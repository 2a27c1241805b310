package awss3

import (
	"errors"

	"galleryserv/src/errs"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	var (
		notFound *types.NotFound
		noKey    *types.NoSuchKey
	)
	if errors.As(err, &notFound) || errors.As(err, &noKey) {
		return errs.Wrap(errs.KindNotFound, msg, err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return errs.Wrap(errs.KindNotFound, msg, err)
		}
	}
	return errs.Wrap(errs.KindStorage, msg, err)
}
