package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"quizlet-service/internal/domain"
)

type publishChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// session is one broker connection with its channel. closed fires when the
// broker drops the connection.
type session struct {
	channel publishChannel
	conn    io.Closer
	closed  <-chan *amqp.Error
}

func (s *session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *session) close() error {
	if err := s.channel.Close(); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

type dialFunc func() (*session, error)

// Publisher mirrors quiz events onto a topic exchange for downstream consumers.
// A dropped connection is redialed on the next Publish.
type Publisher struct {
	mu       sync.Mutex
	dial     dialFunc
	sess     *session
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	return newPublisher(exchange, func() (*session, error) {
		return dialSession(url, exchange)
	})
}

func newPublisher(exchange string, dial dialFunc) (*Publisher, error) {
	sess, err := dial()
	if err != nil {
		return nil, err
	}
	return &Publisher{dial: dial, sess: sess, exchange: exchange}, nil
}

func dialSession(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	return &session{channel: ch, conn: conn, closed: closed}, nil
}

// RoutingKey is the topic an event is published under, e.g. quiz.user-answer.
func RoutingKey(eventType string) string {
	return "quiz." + eventType
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.publishLocked(event.Type, msg)
	if errors.Is(err, amqp.ErrClosed) {
		p.dropLocked()
		err = p.publishLocked(event.Type, msg)
	}
	return err
}

func (p *Publisher) publishLocked(eventType string, msg amqp.Publishing) error {
	if p.sess != nil && p.sess.isClosed() {
		p.dropLocked()
	}
	if p.sess == nil {
		sess, err := p.dial()
		if err != nil {
			return fmt.Errorf("reconnect amqp: %w", err)
		}
		p.sess = sess
	}
	return p.sess.channel.Publish(p.exchange, RoutingKey(eventType), false, false, msg)
}

func (p *Publisher) dropLocked() {
	if p.sess == nil {
		return
	}
	_ = p.sess.close()
	p.sess = nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return nil
	}
	err := p.sess.close()
	p.sess = nil
	return err
}
