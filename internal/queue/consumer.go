package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the booking queues and appends one line per event to
// a log file.
type Consumer struct {
	URL     string
	LogPath string
}

// NewConsumer returns a Consumer writing to logs/booking.log.
func NewConsumer(url string) *Consumer {
	return &Consumer{URL: url, LogPath: filepath.Join("logs", "booking.log")}
}

// Run connects to RabbitMQ and consumes both booking queues until ctx is
// cancelled.  Dial failures back off exponentially up to 30s; a closed
// delivery channel triggers a reconnect.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}

	confirmed, err := declareAndConsume(ch, PurchaseConfirmedQueue)
	if err != nil {
		return err
	}
	cancelled, err := declareAndConsume(ch, PurchaseCancelledQueue)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-confirmed:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(d)
		case d, ok := <-cancelled:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(d)
		}
	}
}

func declareAndConsume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

func (c *Consumer) deliver(d amqp.Delivery) {
	if err := c.handle(d.RoutingKey, d.Body); err != nil {
		log.Printf("booking-consumer: handle message failed: %v", err)
		// reject without requeue to avoid tight redelivery loops
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) handle(queue string, body []byte) error {
	line, err := FormatEvent(queue, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := io.WriteString(f, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders a message body from queue as a single log line.
func FormatEvent(queue string, body []byte) (string, error) {
	switch queue {
	case PurchaseConfirmedQueue:
		var ev PurchaseConfirmedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Purchase confirmed | purchase_id=%s | user=%s | game_id=%s | opponent=%q | starts_at=%s | tickets=%s | total=%d\n",
			ev.ConfirmedAt, ev.PurchaseID, ev.UserEmail, ev.GameID, ev.Opponent, ev.StartsAt, ev.Tickets, ev.AmountTotal), nil
	case PurchaseCancelledQueue:
		var ev PurchaseCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		replacement := "-"
		if ev.ReplacementID != "" {
			replacement = ev.ReplacementID
		}
		return fmt.Sprintf("[%s] Purchase cancelled | purchase_id=%s | user=%s | game_id=%s | cancelled=%s | retained=%s | replacement=%s\n",
			ev.CancelledAt, ev.PurchaseID, ev.UserEmail, ev.GameID, ev.Cancelled, ev.Retained, replacement), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
