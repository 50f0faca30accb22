package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of one publish.
const DefaultDialTimeout = 3 * time.Second

// Publisher sends booking events to RabbitMQ.  It dials a fresh connection
// per message.  Errors are logged and returned so callers may ignore them
// without interrupting the request flow.
type Publisher struct {
	URL         string
	DialTimeout time.Duration // connect plus handshake; also capped by the ctx deadline
	now         func() time.Time
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{
		URL:         url,
		DialTimeout: DefaultDialTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PurchaseConfirmed publishes a PurchaseConfirmedEvent.
func (p *Publisher) PurchaseConfirmed(ctx context.Context, purchase model.Purchase, game model.Game) error {
	ev := PurchaseConfirmedEvent{
		PurchaseID:  purchase.ID,
		UserEmail:   purchase.UserEmail,
		GameID:      game.ID,
		Opponent:    game.Opponent,
		StartsAt:    game.StartsAt().Format(time.RFC3339),
		Tickets:     purchase.Tickets,
		AmountTotal: amountTotal(purchase.Tickets, game.TicketPrice),
		ConfirmedAt: purchase.CreatedAt.UTC().Format(time.RFC3339),
	}
	return p.publish(ctx, PurchaseConfirmedQueue, ev)
}

// PurchaseCancelled publishes a PurchaseCancelledEvent.
func (p *Publisher) PurchaseCancelled(ctx context.Context, original model.Purchase, cancelled model.TicketCounts, replacement *model.Purchase) error {
	ev := PurchaseCancelledEvent{
		PurchaseID:  original.ID,
		UserEmail:   original.UserEmail,
		GameID:      original.GameID,
		Cancelled:   cancelled,
		Retained:    original.Tickets.Sub(cancelled),
		CancelledAt: p.now().Format(time.RFC3339),
	}
	if replacement != nil {
		ev.ReplacementID = replacement.ID
	}
	return p.publish(ctx, PurchaseCancelledQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(p.dialTimeout(ctx)),
	})
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queue, err)
		return err
	}
	return nil
}

func (p *Publisher) dialTimeout(ctx context.Context) time.Duration {
	d := p.DialTimeout
	if d <= 0 {
		d = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = max(left, time.Millisecond)
		}
	}
	return d
}
