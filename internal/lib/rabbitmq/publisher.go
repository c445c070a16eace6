package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tenant_match/internal/lib/logger/sl"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig — конфигурация публикатора.
type PublisherConfig struct {
	URL          string
	ExchangeName string
	ExchangeType string // direct, fanout, topic, headers
	Durable      bool

	// DeclareExchange — объявлять обменник при подключении.
	// Если false, обменник должен уже существовать.
	DeclareExchange bool
}

// Validate проверяет конфигурацию.
func (c PublisherConfig) Validate() error {
	if c.URL == "" {
		return errors.New("rabbitmq url is required")
	}
	if c.DeclareExchange && (c.ExchangeName == "" || c.ExchangeType == "") {
		return errors.New("exchange name and type are required to declare an exchange")
	}
	return nil
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	cfg PublisherConfig
	log *slog.Logger

	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
}

// NewPublisher подключается к брокеру и открывает канал.
func NewPublisher(cfg PublisherConfig, log *slog.Logger) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: failed to open channel: %w", op, err)
	}

	if cfg.DeclareExchange {
		log.Info("declaring exchange",
			slog.String("exchange", cfg.ExchangeName),
			slog.String("type", cfg.ExchangeType),
			slog.Bool("durable", cfg.Durable),
		)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.Durable,
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("%s: failed to declare exchange %q: %w", op, cfg.ExchangeName, err)
		}
	}

	log.Info("rabbitmq publisher connected", slog.String("exchange", cfg.ExchangeName))

	return &Publisher{
		cfg:        cfg,
		log:        log,
		connection: conn,
		channel:    ch,
	}, nil
}

// Publish публикует сообщение в обменник из конфигурации.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	const op = "rabbitmq.Publisher.Publish"

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("%s: %w", op, ErrNotConnected)
	}

	err := p.channel.PublishWithContext(ctx,
		p.cfg.ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("failed to close channel", sl.Err(err))
			errs = append(errs, err)
		}
		p.channel = nil
	}
	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			p.log.Error("failed to close connection", sl.Err(err))
			errs = append(errs, err)
		}
		p.connection = nil
	}
	return errors.Join(errs...)
}

// ErrNotConnected — публикатор закрыт или соединение потеряно.
var ErrNotConnected = errors.New("publisher is not connected")
