package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type QueueName string

// QueueDispatchCreated is consumed by the send worker.
const QueueDispatchCreated QueueName = "dispatch_created"

var ErrNotConnected = errors.New("rabbit mq connection is not open")

type Config struct {
	URL               string
	ReconnectInterval time.Duration
	ConnectTimeout    time.Duration
	// Queues are declared durable on every (re)connect.
	Queues []QueueName
}

// Queue keeps a connection to RabbitMQ open and publishes to named queues.
type Queue struct {
	config *Config
	conn   *amqp.Connection
	mu     sync.RWMutex
	log    *slog.Logger
}

func New(config *Config) *Queue {
	return &Queue{
		config: config,
		log:    slog.With("component", "queue"),
	}
}

// Start connects and reconnects until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) error {
	q.log.Info("Starting the queue manager.")
	defer q.log.Info("Stopping the queue manager.")

	defer q.close()

	for {
		q.log.Info("connecting to Rabbit MQ...")

		conn, err := q.connect()
		if err != nil {
			q.log.Error("connection to Rabbit MQ failed", "error", err)
		} else {
			q.log.Info("connected to Rabbit MQ")

			connErrors := conn.NotifyClose(make(chan *amqp.Error, 1))

			select {
			case <-ctx.Done():
				return nil
			case err := <-connErrors:
				q.log.Error("rabbit mq connection closed", "error", err)
				q.setConn(nil)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(q.config.ReconnectInterval):
		}
	}
}

func (q *Queue) connect() (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(q.config.URL, amqp.Config{
		Dial: amqp.DefaultDial(q.config.ConnectTimeout),
	})
	if err != nil {
		return nil, err
	}

	if err := declare(conn, q.config.Queues); err != nil {
		conn.Close()
		return nil, err
	}

	q.setConn(conn)

	return conn, nil
}

func declare(conn *amqp.Connection, queues []QueueName) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	for _, name := range queues {
		_, err := ch.QueueDeclare(string(name), true, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", name, err)
		}
	}

	return nil
}

func (q *Queue) setConn(conn *amqp.Connection) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.conn = conn
}

func (q *Queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.conn != nil && !q.conn.IsClosed() {
		_ = q.conn.Close()
	}
	q.conn = nil
}

// Connected reports whether a connection is currently open.
func (q *Queue) Connected() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return q.conn != nil && !q.conn.IsClosed()
}

// Publish sends a persistent JSON message to the queue through the default
// exchange.
func (q *Queue) Publish(ctx context.Context, queueName QueueName, message []byte) error {
	q.mu.RLock()
	conn := q.conn
	q.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return ErrNotConnected
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",                // default exchange routes by queue name
		string(queueName), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         message,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}

	return nil
}
