// Package source resolves manifest locations: local paths or s3://bucket/key
// URIs, decompressed on the fly according to their extension.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/internal/compression"
)

var logger = internal.GetLogger("chunkshare_source")

const s3Scheme = "s3://"

// ObjectGetter is the slice of the S3 API the opener needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener implements registry.Opener over local files and S3.
type Opener struct {
	s3 ObjectGetter
}

// NewOpener returns an opener; client may be nil when no manifest lives in S3.
func NewOpener(client ObjectGetter) *Opener {
	return &Opener{s3: client}
}

func IsS3URI(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("%w: %s", internal.ErrInvalidS3URI, uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, s3Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", internal.ErrInvalidS3URI, uri)
	}
	return parts[0], parts[1], nil
}

func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var raw io.ReadCloser
	if IsS3URI(location) {
		body, err := o.openS3(ctx, location)
		if err != nil {
			return nil, err
		}
		raw = body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, err
		}
		raw = f
	}

	ct := compression.DetectByName(location)
	if ct == compression.Compress_none {
		return raw, nil
	}
	dec, err := compression.NewReader(raw, ct)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to open %s stream: %w", ct, err)
	}
	logger.Debugf("Decompressing %s as %s", location, ct)
	return &decodedReader{ReadCloser: dec, raw: raw}, nil
}

func (o *Opener) openS3(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if o.s3 == nil {
		return nil, fmt.Errorf("manifest %s is in S3, but no S3 client is configured", uri)
	}
	resp, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	logger.Tracef("Streaming manifest %s (%d bytes)", uri, aws.ToInt64(resp.ContentLength))
	return resp.Body, nil
}

// decodedReader closes both the decoder and the stream beneath it.
type decodedReader struct {
	io.ReadCloser
	raw io.Closer
}

func (d *decodedReader) Close() error {
	err := d.ReadCloser.Close()
	if rerr := d.raw.Close(); err == nil {
		err = rerr
	}
	return err
}
