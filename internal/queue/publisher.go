package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DialTimeout bounds the TCP connect and the AMQP handshake.
	DialTimeout = 2 * time.Second

	defaultBuffer = 256
	sendTimeout   = 2 * time.Second
	maxRedialWait = 30 * time.Second
)

var (
	ErrPublisherFull   = errors.New("rabbitmq: publish buffer full, event dropped")
	ErrPublisherClosed = errors.New("rabbitmq: publisher closed")
)

// dial opens a broker connection whose handshake gives up after
// DialTimeout instead of amqp's 30s default.
func dial(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(DialTimeout),
		Heartbeat: 10 * time.Second,
	})
}

// Publisher hands seat.reserved events to a single worker goroutine that
// owns the broker connection.  PublishSeatReserved only enqueues, so a slow
// or dead broker never delays the caller; events that do not fit in the
// buffer are dropped.
type Publisher struct {
	url    string
	events chan SeatReservedEvent
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	// owned by the worker
	conn       *amqp.Connection
	ch         *amqp.Channel
	nextDial   time.Time
	redialWait time.Duration
}

// NewPublisher starts the worker and returns immediately.  The first
// connection attempt happens in the background.
func NewPublisher(url string) *Publisher {
	return newPublisher(url, defaultBuffer)
}

func newPublisher(url string, buffer int) *Publisher {
	p := &Publisher{
		url:        url,
		events:     make(chan SeatReservedEvent, buffer),
		done:       make(chan struct{}),
		redialWait: time.Second,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// PublishSeatReserved queues ev for delivery.  It never blocks.
func (p *Publisher) PublishSeatReserved(_ context.Context, ev SeatReservedEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublisherFull
	}
}

// Close stops the worker and releases the connection.  Events still
// buffered are discarded.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	defer p.disconnect()

	if err := p.connect(); err != nil {
		log.Printf("rabbitmq: %v; will retry on next event", err)
	}
	for {
		select {
		case <-p.done:
			return
		case ev := <-p.events:
			if err := p.send(ev); err != nil {
				log.Printf("rabbitmq: seat.reserved for reservation %d dropped: %v", ev.ReservationID, err)
			}
		}
	}
}

func (p *Publisher) connected() bool {
	return p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed()
}

// connect dials unless a previous failure put the broker in backoff.
func (p *Publisher) connect() error {
	if p.connected() {
		return nil
	}
	p.disconnect()
	if time.Now().Before(p.nextDial) {
		return errors.New("broker unavailable")
	}

	conn, err := dial(p.url)
	if err != nil {
		p.backoff()
		return fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.backoff()
		return fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(SeatReservedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		p.backoff()
		return fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.redialWait = time.Second
	return nil
}

func (p *Publisher) backoff() {
	p.nextDial = time.Now().Add(p.redialWait)
	if p.redialWait < maxRedialWait {
		p.redialWait *= 2
	}
}

func (p *Publisher) send(ev SeatReservedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.connect(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err = p.ch.PublishWithContext(ctx,
		"",                // default exchange
		SeatReservedQueue, // routing key = queue name
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		p.disconnect()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *Publisher) disconnect() {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil && !p.conn.IsClosed() {
		errs = append(errs, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	if err := errors.Join(errs...); err != nil && !errors.Is(err, amqp.ErrClosed) {
		log.Printf("rabbitmq: close: %v", err)
	}
}
