package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shaofeinus/POS-tagger/redis"
)

type TaskStatus string

const (
	TaskStatusPending          TaskStatus = "pending"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure
}

// JobStatus is the progress of one tagging request across deliveries.
type JobStatus struct {
	Status        TaskStatus `json:"status"`
	Attempts      int        `json:"attempts"`
	StartedAt     *string    `json:"started_at"`
	CompletedAt   *string    `json:"completed_at"`
	ErrorMessages []string   `json:"error_messages"`
	ResultKey     string     `json:"result_key,omitempty"`
	Degenerate    int        `json:"degenerate"`
}

type redisTransactions interface {
	getJobStatus(id string) (*JobStatus, error)
	onTaskStarted(task *Task) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	client *redis.Client
}

func jobKey(id string) string {
	return "pos-tagger:job:" + id
}

func (wrapper *redisClientWrapper) close() {
	_ = wrapper.client.Close()
}

func (wrapper *redisClientWrapper) update(task *Task, updateFunc func(status *JobStatus)) error {
	return wrapper.client.Update(context.Background(), jobKey(task.message.ID), func(old []byte) ([]byte, error) {
		status := JobStatus{Status: TaskStatusPending}
		if len(old) > 0 {
			if err := json.Unmarshal(old, &status); err != nil {
				return nil, err
			}
		}
		updateFunc(&status)
		*task.status = status
		return json.Marshal(status)
	})
}

func (wrapper *redisClientWrapper) getJobStatus(id string) (*JobStatus, error) {
	b, err := wrapper.client.Get(context.Background(), jobKey(id))
	if errors.Is(err, redis.ErrNotFound) {
		return &JobStatus{Status: TaskStatusPending}, nil
	}
	if err != nil {
		return nil, err
	}
	var status JobStatus
	if err := json.Unmarshal(b, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.update(task, func(status *JobStatus) {
		status.Status = TaskStatusStarted
		status.Attempts += 1
		status.StartedAt = getFormattedNow()
		status.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	return wrapper.update(task, func(status *JobStatus) {
		status.Status = TaskStatusCompletedFailure
		status.CompletedAt = getFormattedNow()
		status.ErrorMessages = append(
			status.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				status.Attempts,
				maxRetries,
			),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.update(task, func(status *JobStatus) {
		status.Status = TaskStatusFailed
		status.CompletedAt = getFormattedNow()
		status.ErrorMessages = append(status.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.update(task, func(status *JobStatus) {
		if !status.Status.Complete() {
			status.Status = TaskStatusCompletedSuccess
		}
		status.CompletedAt = getFormattedNow()
		status.ResultKey = task.resultKey
		status.Degenerate = task.degenerate
	})
}
