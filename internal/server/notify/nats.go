package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultFlushTimeout = 5 * time.Second

type publisher interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// CodeRequested is the event published for an external mailer.
type CodeRequested struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NATSNotifier publishes a CodeRequested event per code and waits for the
// server to acknowledge the flush.
type NATSNotifier struct {
	conn    publisher
	close   func()
	subject string
}

func NewNATSNotifier(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSNotifier{
		conn:    nc,
		subject: subject,
		close: func() {
			if err := nc.Drain(); err != nil {
				nc.Close()
			}
		},
	}, nil
}

func (n *NATSNotifier) SendCode(ctx context.Context, msg Message) error {
	data, err := json.Marshal(CodeRequested{Email: msg.To, Code: msg.Code, ExpiresAt: msg.ExpiresAt})
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultFlushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Close() error {
	if n.close != nil {
		n.close()
	}
	return nil
}
