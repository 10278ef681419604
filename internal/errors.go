package internal

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNoManifests   = errors.New("no manifests given")
	ErrInvalidS3URI  = errors.New("invalid s3 uri")
)
