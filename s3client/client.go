package s3client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/shaofeinus/POS-tagger/logger"
)

var ErrNotFound = errors.New("object not found")

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

type Config struct {
	Bucket          string `envconfig:"BUCKET" required:"true"`
	Region          string `envconfig:"REGION" default:"us-east-1"`
	Endpoint        string `envconfig:"ENDPOINT" default:""`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID" default:""`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY" default:""`
}

// Client reads and writes whole objects of one bucket. A failed call
// refreshes the session and is retried once.
type Client struct {
	cfg Config

	mu   sync.Mutex
	sess *session.Session
}

// New reads POS_TAGGER_S3_* from the environment.
func New() (*Client, error) {
	var cfg Config
	if err := envconfig.Process("POS_TAGGER_S3", &cfg); err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	return NewFromConfig(cfg)
}

func NewFromConfig(cfg Config) (*Client, error) {
	client := &Client{cfg: cfg}
	if _, err := client.refresh(); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) Upload(ctx context.Context, key string, data []byte) error {
	params := &s3manager.UploadInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	err := c.withRetry(func(sess *session.Session) error {
		clientLogger.Debug().Str("key", key).Str("bucket", c.cfg.Bucket).Msg("Uploading object")
		_, err := s3manager.NewUploader(c.sdkSession(sess, key)).UploadWithContext(ctx, params)
		return err
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}
	var data []byte
	err := c.withRetry(func(sess *session.Session) error {
		buf := aws.NewWriteAtBuffer([]byte{})
		size, err := s3manager.NewDownloader(c.sdkSession(sess, key)).DownloadWithContext(ctx, buf, params)
		if err != nil {
			return err
		}
		clientLogger.Debug().Str("key", key).Int64("bytes", size).Msg("Downloaded object")
		data = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return data, nil
}

func (c *Client) withRetry(call func(*session.Session) error) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	err := call(sess)
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	sess, refreshErr := c.refresh()
	if refreshErr != nil {
		return err
	}
	err = call(sess)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}

func (c *Client) refresh() (*session.Session, error) {
	cfg := aws.NewConfig().
		WithRegion(c.cfg.Region).
		WithMaxRetries(4)
	if c.cfg.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(c.cfg.AccessKeyID, c.cfg.SecretAccessKey, ""))
	}
	if c.cfg.Endpoint != "" {
		cfg = cfg.WithEndpoint(c.cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()
	return sess, nil
}

func (c *Client) sdkSession(sess *session.Session, key string) *session.Session {
	sdkLog := sdkLogger.With().Str("key", key).Str("bucket", c.cfg.Bucket).Logger()
	return sess.Copy(&aws.Config{Logger: &s3Logger{sdkLog}, LogLevel: aws.LogLevel(aws.LogDebug)})
}

type s3Logger struct {
	logger zerolog.Logger
}

func (l *s3Logger) Log(v ...interface{}) {
	l.logger.Debug().Msg(fmt.Sprint(v...))
}
