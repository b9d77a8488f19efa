package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var (
	// ErrNotFound means the media URL maps to an object that does not exist.
	ErrNotFound = errors.New("storage: object not found")
	// ErrForeignURL means the URL is not served by this backend.
	ErrForeignURL = errors.New("storage: url not managed by this store")
)

// ObjectInfo is the metadata needed to fingerprint a stored asset.
type ObjectInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Storage resolves media playback URLs back to the stored bytes.
type Storage interface {
	Stat(ctx context.Context, mediaURL string) (ObjectInfo, error)
	Open(ctx context.Context, mediaURL string) (io.ReadCloser, error)
}

type LocalStorage struct {
	uploadDir string
	urlPrefix string
}

type SpacesStorage struct {
	client s3iface.S3API
	bucket string
	cdnURL string
}

// NewLocalStorage serves files under uploadDir. Media URLs are expected to
// carry the file name after urlPrefix, e.g. "/uploads/intro.mp4".
func NewLocalStorage(uploadDir, urlPrefix string) *LocalStorage {
	if urlPrefix == "" {
		urlPrefix = "/uploads/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStorage{uploadDir: uploadDir, urlPrefix: urlPrefix}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return NewSpacesStorageWithClient(s3.New(sess), bucket, cdnURL), nil
}

func NewSpacesStorageWithClient(client s3iface.S3API, bucket, cdnURL string) *SpacesStorage {
	return &SpacesStorage{
		client: client,
		bucket: bucket,
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
	}
}

// resolve maps a media URL to a file inside uploadDir, refusing anything
// that would escape it.
func (ls *LocalStorage) resolve(mediaURL string) (string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	p := u.Path
	if !strings.HasPrefix(p, ls.urlPrefix) {
		return "", ErrForeignURL
	}
	rel := path.Clean("/" + strings.TrimPrefix(p, ls.urlPrefix))
	if rel == "/" {
		return "", ErrNotFound
	}
	return filepath.Join(ls.uploadDir, filepath.FromSlash(rel)), nil
}

func (ls *LocalStorage) Stat(ctx context.Context, mediaURL string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	p, err := ls.resolve(mediaURL)
	if err != nil {
		return ObjectInfo{}, err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if fi.IsDir() {
		return ObjectInfo{}, ErrNotFound
	}
	return ObjectInfo{Key: p, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (ls *LocalStorage) Open(ctx context.Context, mediaURL string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := ls.resolve(mediaURL)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return f, nil
}

// key strips the CDN origin from a media URL, leaving the object key.
func (ss *SpacesStorage) key(mediaURL string) (string, error) {
	prefix := ss.cdnURL + "/"
	if ss.cdnURL == "" || !strings.HasPrefix(mediaURL, prefix) {
		return "", ErrForeignURL
	}
	k := strings.TrimPrefix(mediaURL, prefix)
	if i := strings.IndexAny(k, "?#"); i >= 0 {
		k = k[:i]
	}
	if k == "" {
		return "", ErrNotFound
	}
	return k, nil
}

func (ss *SpacesStorage) Stat(ctx context.Context, mediaURL string) (ObjectInfo, error) {
	key, err := ss.key(mediaURL)
	if err != nil {
		return ObjectInfo{}, err
	}
	out, err := ss.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, translate(key, err)
	}
	return ObjectInfo{
		Key:     key,
		Size:    aws.Int64Value(out.ContentLength),
		ModTime: aws.TimeValue(out.LastModified),
	}, nil
}

func (ss *SpacesStorage) Open(ctx context.Context, mediaURL string) (io.ReadCloser, error) {
	key, err := ss.key(mediaURL)
	if err != nil {
		return nil, err
	}
	out, err := ss.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate(key, err)
	}
	return out.Body, nil
}

func translate(key string, err error) error {
	var aerr awserr.RequestFailure
	if errors.As(err, &aerr) && aerr.StatusCode() == 404 {
		return ErrNotFound
	}
	var cerr awserr.Error
	if errors.As(err, &cerr) && (cerr.Code() == s3.ErrCodeNoSuchKey || cerr.Code() == "NotFound") {
		return ErrNotFound
	}
	return fmt.Errorf("spaces object %s: %w", key, err)
}
