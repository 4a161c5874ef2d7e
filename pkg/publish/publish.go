package publish

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ima-dev/ima/internal/errors"
)

// Publisher stores a rendered document under name and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte) (string, error)
}

// PutObjectAPI is the subset of *s3.Client used by S3Publisher.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads documents to an S3 bucket.
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Publisher creates a publisher for bucket. Keys are prefix + name.
func NewS3Publisher(client PutObjectAPI, bucket, prefix string) *S3Publisher {
	return &S3Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Key returns the object key for name.
func (p *S3Publisher) Key(name string) string {
	return p.prefix + strings.TrimPrefix(name, "/")
}

// Publish uploads body and returns its s3:// location.
func (p *S3Publisher) Publish(ctx context.Context, name string, body []byte) (string, error) {
	if p.bucket == "" {
		return "", errors.New("E402")
	}
	key := p.Key(name)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType(name)),
		CacheControl:  aws.String("no-cache"),
		Metadata: map[string]string{
			"render-time": p.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", errors.New("E401").
			WithDetail("s3://" + p.bucket + "/" + key).
			Wrap(err)
	}
	return "s3://" + p.bucket + "/" + key, nil
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region string

	// Endpoint overrides the service endpoint and switches to path-style
	// addressing, for S3-compatible stores.
	Endpoint string
}

// NewS3Client creates an S3 client that reads credentials from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewS3Client(opts S3Options) *s3.Client {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("E402").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// FilePublisher writes documents below a directory.
type FilePublisher struct {
	dir string
}

// NewFilePublisher creates a publisher rooted at dir.
func NewFilePublisher(dir string) *FilePublisher {
	return &FilePublisher{dir: dir}
}

// Publish writes body to dir/name, creating directories as needed. Names
// cannot escape dir.
func (p *FilePublisher) Publish(_ context.Context, name string, body []byte) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(name))
	if clean == "/" {
		return "", errors.New("E601").WithDetail("empty document name")
	}
	target := filepath.Join(p.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", errors.New("E401").WithDetail(target).Wrap(err)
	}
	if err := os.WriteFile(target, body, 0644); err != nil {
		return "", errors.New("E401").WithDetail(target).Wrap(err)
	}
	return target, nil
}

// contentType guesses the content type from the name's extension.
func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", "":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
