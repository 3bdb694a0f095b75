package worker

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/shaofeinus/POS-tagger/pipeline"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type pipelineMock struct {
	ppln   pipeline.Pipeline
	config pipelineMockConfig
	calls  pipelineCall
}

type pipelineMockConfig struct {
	fail   bool
	err    bool
	result string
}

type pipelineCall struct {
	pipeline bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getJobStatus          withValue
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getJobStatus          bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config  rmqMockConfig
	calls   rmqMockCalls
	replies []Reply
}

type rmqMockConfig struct {
	sendReply           failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	sendReply           bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
	saved  map[string]string
}

type s3MockConfig struct {
	getText         withValue
	saveResultsFile failingMethod
}

type s3MockCalls struct {
	getText         bool
	saveResultsFile bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	mock := pipelineMock{config: config}
	switch {
	case config.fail:
		mock.ppln = func(request pipeline.Request) <-chan pipeline.Response {
			mock.calls.pipeline = true
			ch := make(chan pipeline.Response)
			close(ch)
			return ch
		}
	case config.err:
		mock.ppln = func(request pipeline.Request) <-chan pipeline.Response {
			mock.calls.pipeline = true
			ch := make(chan pipeline.Response, 1)
			ch <- pipeline.Response{Tid: request.Tid, Err: errors.New("model is not trained")}
			close(ch)
			return ch
		}
	default:
		mock.ppln = func(request pipeline.Request) <-chan pipeline.Response {
			mock.calls.pipeline = true
			ch := make(chan pipeline.Response, 1)
			ch <- pipeline.Response{Tid: request.Tid, Tagged: mock.config.result, Sentences: 1, Degenerate: 1}
			close(ch)
			return ch
		}
	}
	return &mock
}

func (mock *redisMock) getJobStatus(id string) (*JobStatus, error) {
	mock.calls.getJobStatus = true
	if mock.config.getJobStatus.fail {
		return nil, errors.New("failed to get job status")
	}
	switch mock.config.getJobStatus.returnedValue.(type) {
	case JobStatus:
		status := mock.config.getJobStatus.returnedValue.(JobStatus)
		return &status, nil
	default:
		return &JobStatus{Status: TaskStatusPending}, nil
	}
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update job status on start")
	}
	task.status.Status = TaskStatusStarted
	task.status.Attempts += 1
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update job status on exceeded retries")
	}
	task.status.Status = TaskStatusCompletedFailure
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update job status on fail with error")
	}
	task.status.Status = TaskStatusFailed
	task.status.ErrorMessages = append(task.status.ErrorMessages, err.Error())
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update job status on complete")
	}
	task.status.Status = TaskStatusCompletedSuccess
	task.status.ResultKey = task.resultKey
	task.status.Degenerate = task.degenerate
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) sendReply(task *Task, reply Reply) error {
	mock.calls.sendReply = true
	if mock.config.sendReply.fail {
		return errors.New("failed to send reply")
	}
	mock.replies = append(mock.replies, reply)
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getText(task *Task) ([]byte, error) {
	mock.calls.getText = true
	if mock.config.getText.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getText.returnedValue.(type) {
	case []byte:
		return mock.config.getText.returnedValue.([]byte), nil
	default:
		return []byte("some input"), nil
	}
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	if mock.saved == nil {
		mock.saved = map[string]string{}
	}
	mock.saved[getResultsKey(task)] = result
	return nil
}
