package rmq

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/shaofeinus/POS-tagger/logger"
)

type Config struct {
	Host                    string `envconfig:"HOST" required:"true"`
	Port                    string `envconfig:"PORT" default:"5672"`
	Username                string `envconfig:"USERNAME" required:"true"`
	Password                string `envconfig:"PASSWORD" required:"true"`
	Exchange                string `envconfig:"EXCHANGE" default:""`
	MaxParallelRequestCount int    `envconfig:"MAX_PARALLEL_REQUESTS" default:"5"`
	RequestQueue            string `envconfig:"REQUEST_QUEUE" default:"pos-tagger-requests"`
	ReplyQueue              string `envconfig:"REPLY_QUEUE" default:"pos-tagger-replies"`
}

// ReadConfig reads POS_TAGGER_RMQ_* from the environment.
func ReadConfig() (Config, error) {
	var config Config
	err := envconfig.Process("POS_TAGGER_RMQ", &config)
	return config, err
}

// Client consumes tagging requests on one connection and publishes replies
// on another.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	logger         zerolog.Logger
}

func NewClient() (*Client, error) {
	config, err := ReadConfig()
	if err != nil {
		clientLogger := logger.NewLogger("RMQ client")
		clientLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}
	return NewClientFromConfig(config)
}

func NewClientFromConfig(config Config) (*Client, error) {
	clientLogger := logger.NewLogger("RMQ client")

	url := getURL(config)
	respConn, respChannel, err := setup(url)
	if err != nil {
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	reqConn, reqChannel, err := setup(url)
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("failed connection: %w", err)
	}
	client := &Client{
		config:      config,
		reqConn:     reqConn,
		respConn:    respConn,
		respChannel: respChannel,
		logger:      clientLogger,
	}

	for _, queue := range []string{config.RequestQueue, config.ReplyQueue} {
		if _, err := reqChannel.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			client.Close()
			return nil, fmt.Errorf("declare %s: %w", queue, err)
		}
	}
	if config.Exchange != "" {
		if err := reqChannel.QueueBind(
			config.RequestQueue,
			config.RequestQueue,
			config.Exchange,
			false,
			nil); err != nil {
			client.Close()
			return nil, err
		}
	}
	if err := reqChannel.Qos(config.MaxParallelRequestCount, 0, false); err != nil {
		client.Close()
		return nil, fmt.Errorf("qos: %w", err)
	}

	deliveries, err := reqChannel.Consume(
		config.RequestQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("consume deliveries: %w", err)
	}
	client.Deliveries = deliveries
	client.ReqChanErrors = reqChannel.NotifyClose(make(chan *amqp.Error, 1))
	client.RespChanErrors = respChannel.NotifyClose(make(chan *amqp.Error, 1))
	clientLogger.Info().Str("queue", config.RequestQueue).Msg("Consuming tagging requests")
	return client, nil
}

// SendReply publishes to the delivery's reply-to queue when it names one and
// to the configured reply queue otherwise.
func (c *Client) SendReply(replyTo string, msg amqp.Publishing) error {
	queue := replyTo
	if queue == "" {
		queue = c.config.ReplyQueue
	}
	return c.respChannel.Publish(
		c.config.Exchange,
		queue,
		false,
		false,
		msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
