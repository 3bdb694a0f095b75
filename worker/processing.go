package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/shaofeinus/POS-tagger/pipeline"
	"github.com/shaofeinus/POS-tagger/utils"
)

// Message is a tagging request. The untagged text is either inline or in the
// object store under TextKey; in the latter case the tagged text is written
// back to the store instead of being sent in the reply.
type Message struct {
	ID      string `json:"id"`
	Text    string `json:"text,omitempty"`
	TextKey string `json:"text_key,omitempty"`
}

type Task struct {
	delivery   *amqp.Delivery
	message    *Message
	status     *JobStatus
	tagged     string
	resultKey  string
	degenerate int
	logger     *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.logger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.logger.Err(err).
			Str("message_id", delivery.MessageId).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.sendReply(task, task.reply()); err != nil {
		task.logger.Err(err).Msg("Got error while sending reply")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.logger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.logger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	if message.ID == "" {
		return nil, errors.New("message has no id")
	}
	status, err := worker.redis.getJobStatus(message.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job status for message, got error %w", err)
	}
	taskLogger := worker.logger.With().Str("tid", message.ID).Logger()
	task := Task{
		delivery: delivery,
		message:  &message,
		status:   status,
		logger:   &taskLogger,
	}
	return &task, nil
}

func (task *Task) reply() Reply {
	reply := Reply{
		ID:         task.message.ID,
		Status:     task.status.Status,
		Tagged:     task.tagged,
		ResultKey:  task.status.ResultKey,
		Degenerate: task.status.Degenerate,
		Errors:     task.status.ErrorMessages,
	}
	if task.resultKey != "" {
		reply.ResultKey = task.resultKey
		reply.Degenerate = task.degenerate
	}
	return reply
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.logger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.logger.Err(err).Msg("Failed to update job status")
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.logger.Err(err).Msg("Got error while running pipeline")
		task.tagged = ""
		return worker.redis.onTaskFailedWithError(task, err)
	}
	task.logger.Info().Msg("Tagged text, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.logger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.logger.Info().Msgf("Processing message from RMQ, attempt # %d", task.status.Attempts)

	text := []byte(task.message.Text)
	if task.message.TextKey != "" {
		text, err = worker.s3.getText(task)
		if err != nil {
			task.logger.Err(err).Caller().Msg("Could not fetch text from s3")
			return fmt.Errorf("failed fetch text from s3: %w", err)
		}
	}
	request := pipeline.Request{
		Tid:  task.message.ID,
		Text: string(text),
	}
	result, ok := <-worker.ppln(request)
	if !ok {
		task.logger.Error().Msg("Pipeline channel was closed before returning anything")
		return errors.New("pipeline channel was closed before returning anything")
	}
	if result.Err != nil {
		return result.Err
	}
	task.degenerate = result.Degenerate
	if task.message.TextKey == "" {
		task.tagged = result.Tagged
		return nil
	}

	task.logger.Info().Msg("Finished pipeline, saving results to s3")
	if err = worker.s3.saveResultsFile(task, result.Tagged); err != nil {
		task.logger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	task.resultKey = getResultsKey(task)
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	if task.status.Status.Complete() {
		task.logger.Info().Msg("Task is already done (might indicate issue acking message with RMQ). Replying with the stored status.")
		return false, nil
	}
	if task.status.Attempts >= worker.config.TaskMaxRetries {
		task.logger.Info().Msg("Task has exceeded retries. Replying with failure.")
		err := worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
