// Package amqp publica los eventos del ledger en un exchange topic de RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// channel subconjunto de *amqp.Channel usado por el publisher.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher serializa los eventos como JSON persistente. Un único canal
// protegido por mutex; amqp091 no permite publicar concurrente en un canal.
type Publisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       channel
	exchange string
	log      zerolog.Logger
}

// NewPublisher conecta, abre un canal y declara el exchange topic durable.
func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: conectar: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp: declarar exchange %s: %w", exchange, err)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log.With().Str("component", "amqp").Logger(),
	}, nil
}

// Publish envía event con la routing key dada.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp: serializar %s: %w", routingKey, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Type:         routingKey,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("amqp: publicar %s: %w", routingKey, err)
	}
	p.log.Debug().Str("routing_key", routingKey).Str("message_id", msg.MessageId).Msg("evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.log.Warn().Err(err).Msg("cerrar canal")
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
