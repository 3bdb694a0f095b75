package worker

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/shaofeinus/POS-tagger/rmq"
)

// Reply answers a tagging request. Tagged is empty when the result was
// written to ResultKey or when the request failed.
type Reply struct {
	ID         string     `json:"id"`
	Status     TaskStatus `json:"status"`
	Tagged     string     `json:"tagged,omitempty"`
	ResultKey  string     `json:"result_key,omitempty"`
	Degenerate int        `json:"degenerate"`
	Errors     []string   `json:"errors,omitempty"`
}

type rmqTransactions interface {
	sendReply(task *Task, reply Reply) error
	acknowledgeDelivery(delivery *amqp.Delivery) error
	rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger)
	getDeliveriesCh() <-chan amqp.Delivery
	getReqChanErrorsCh() <-chan *amqp.Error
	getRespChanErrorsCh() <-chan *amqp.Error
	close()
}

type rmqClientWrapper struct {
	rmqClient *rmq.Client
}

func (wrapper *rmqClientWrapper) close() {
	wrapper.rmqClient.Close()
}

func (wrapper *rmqClientWrapper) getDeliveriesCh() <-chan amqp.Delivery {
	return wrapper.rmqClient.Deliveries
}

func (wrapper *rmqClientWrapper) getReqChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.ReqChanErrors
}

func (wrapper *rmqClientWrapper) getRespChanErrorsCh() <-chan *amqp.Error {
	return wrapper.rmqClient.RespChanErrors
}

func (wrapper *rmqClientWrapper) sendReply(task *Task, reply Reply) error {
	b, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return wrapper.rmqClient.SendReply(
		task.delivery.ReplyTo,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: task.delivery.CorrelationId,
			Body:          b,
		},
	)
}

func (wrapper *rmqClientWrapper) acknowledgeDelivery(delivery *amqp.Delivery) error {
	return delivery.Ack(false)
}

func (wrapper *rmqClientWrapper) rejectDelivery(delivery *amqp.Delivery, logger *zerolog.Logger) {
	if delivery.Redelivered {
		logger.Info().Msg("Rejecting delivery as it already has been redelivered")
		if err := delivery.Reject(false); err != nil {
			logger.Err(err).Msg("Failed to reject delivery")
		}
		return
	}
	logger.Info().Msg("Requeuing delivery as it has not been redelivered yet")
	if err := delivery.Reject(true); err != nil {
		logger.Err(err).Msg("Failed to requeue delivery")
	}
}
