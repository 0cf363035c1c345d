package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/franciscosanchezn/foodgram-api/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// S3Options configures an S3 compatible bucket (AWS, R2, Spaces, MinIO)
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the base the objects are served from
	PublicURL string
}

// objectAPI is the subset of the S3 client used by S3Store
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store writes uploads to a bucket. Calls go through a circuit breaker so
// an unreachable bucket fails requests fast instead of stalling them.
type S3Store struct {
	client    objectAPI
	bucket    string
	publicURL string
	breaker   *gobreaker.CircuitBreaker[any]
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return newS3Store(client, opts.Bucket, publicURL), nil
}

func newS3Store(client objectAPI, bucket, publicURL string) *S3Store {
	settings := gobreaker.Settings{
		Name:        "s3-media",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Image store circuit breaker changed state")
		},
	}
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		breaker:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (s *S3Store) Save(ctx context.Context, prefix string, up *Upload) (string, error) {
	key := newKey(prefix, up)
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(up.Data),
			ContentType: aws.String(up.ContentType),
		})
	})
	if err != nil {
		metrics.ImageStoreOperations.WithLabelValues("s3", "save", "error").Inc()
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.ImageStoreOperations.WithLabelValues("s3", "save", "ok").Inc()
	logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).Debug("Image uploaded")
	return key, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	})
	if err != nil {
		metrics.ImageStoreOperations.WithLabelValues("s3", "delete", "error").Inc()
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	metrics.ImageStoreOperations.WithLabelValues("s3", "delete", "ok").Inc()
	return nil
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return joinURL(s.publicURL, key)
}
