package queue

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			c, err := ln.Accept()
			if err != nil {
				<-done
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		close(done)
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishGivesUpOnStalledBroker(t *testing.T) {
	p := NewPublisher(silentBroker(t))
	p.DialTimeout = 200 * time.Millisecond

	start := time.Now()
	err := p.PurchaseConfirmed(context.Background(),
		model.Purchase{ID: "ABC", UserEmail: "fan@example.com", Tickets: model.TicketCounts{Gold: 1}},
		model.Game{ID: "g1", Opponent: "Rivals"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDialTimeoutCappedByContextDeadline(t *testing.T) {
	p := NewPublisher("amqp://unused/")
	assert.Equal(t, DefaultDialTimeout, p.dialTimeout(context.Background()))

	p.DialTimeout = 0
	assert.Equal(t, DefaultDialTimeout, p.dialTimeout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d := p.dialTimeout(ctx)
	assert.LessOrEqual(t, d, 100*time.Millisecond)
	assert.Greater(t, d, time.Duration(0))
}
