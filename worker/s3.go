package worker

import (
	"context"
	"errors"

	"github.com/shaofeinus/POS-tagger/s3client"
)

type s3Transactions interface {
	saveResultsFile(task *Task, result string) error
	getText(task *Task) ([]byte, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, result string) error {
	return wrapper.s3Client.Upload(context.Background(), getResultsKey(task), []byte(result))
}

func (wrapper *s3ClientWrapper) getText(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(context.Background(), task.message.TextKey)
}

var errNoObjectStore = errors.New("object store is not configured")

// noS3 serves workers started without an object store. Requests with a text
// key fail.
type noS3 struct{}

func (noS3) close() {}

func (noS3) saveResultsFile(*Task, string) error {
	return errNoObjectStore
}

func (noS3) getText(*Task) ([]byte, error) {
	return nil, errNoObjectStore
}
