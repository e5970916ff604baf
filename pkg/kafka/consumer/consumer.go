package consumer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultMaxWait      = time.Second
)

var errNoBrokers = errors.New("no brokers configured")

type Consumer struct {
	connAttempts int
	connTimeout  time.Duration
	maxWait      time.Duration
	startOffset  int64

	brokers []string
	groupID string
	topic   string

	Reader *kafka.Reader
}

func New(ctx context.Context, brokers []string, groupID, topic string, opts ...Option) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("Kafka Consumer - New: %w", errNoBrokers)
	}

	c := &Consumer{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		maxWait:      _defaultMaxWait,
		startOffset:  kafka.FirstOffset,
		brokers:      brokers,
		groupID:      groupID,
		topic:        topic,
	}

	for _, opt := range opts {
		opt(c)
	}

	var err error
	for c.connAttempts > 0 {
		err = c.ping(ctx)
		if err == nil {
			break
		}

		log.Printf("Kafka consumer is trying to connect, attempts left: %d", c.connAttempts)

		time.Sleep(c.connTimeout)

		c.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("Kafka Consumer - New - connAttempts == 0: %w", err)
	}

	// offsets are committed explicitly after each handled message
	c.Reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.brokers,
		GroupID:        c.groupID,
		Topic:          c.topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        c.maxWait,
		StartOffset:    c.startOffset,
		CommitInterval: 0,
	})

	return c, nil
}

func (c *Consumer) ping(ctx context.Context) error {
	var errs []error
	for _, b := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err != nil {
			errs = append(errs, fmt.Errorf("kafka.DialContext %s: %w", b, err))
			continue
		}

		_, err = conn.Brokers()
		conn.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("conn.Brokers %s: %w", b, err))
			continue
		}

		return nil
	}

	return fmt.Errorf("Kafka Consumer - ping: %w", errors.Join(errs...))
}

func (c *Consumer) Close() error {
	if c.Reader != nil {
		return c.Reader.Close()
	}
	return nil
}
