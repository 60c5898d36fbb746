// Package service holds the seat reservation logic that sits between the
// HTTP handlers and the seat store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/repository"
)

var (
	ErrSeatNotFound    = errors.New("seat not found")
	ErrSeatTaken       = repository.ErrSeatTaken
	ErrUnauthenticated = errors.New("authentication required")
	// ErrUnavailable means the store did not answer in time.  The seat may
	// or may not be free; callers may retry.
	ErrUnavailable = errors.New("seat store unavailable")
)

// SeatStore is the persistence the service needs.  WithTx must run fn in
// a single transaction that commits only when fn returns nil.
type SeatStore interface {
	GetSeat(ctx context.Context, id uint64) (*model.Seat, error)
	WithTx(ctx context.Context, fn func(repository.SeatTx) error) error
	Release(ctx context.Context, seatID uint64) (bool, error)
}

// EventPublisher receives a notification after each committed reservation.
// PublishSeatReserved is called on the request path and must not block on
// the broker.
type EventPublisher interface {
	PublishSeatReserved(ctx context.Context, ev queue.SeatReservedEvent) error
}

type ReservationService struct {
	store     SeatStore
	publisher EventPublisher
	timeout   time.Duration
}

// NewReservationService wires the service.  publisher may be nil.  timeout
// bounds each attempt; zero means 5s.
func NewReservationService(store SeatStore, publisher EventPublisher, timeout time.Duration) *ReservationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ReservationService{store: store, publisher: publisher, timeout: timeout}
}

// ReserveSeat gives seatID to userID if nobody holds it.
//
// The seat is read first so unknown seats and obviously taken seats are
// answered without opening a transaction.  The ownership write is
// conditional on the seat still being free; when it matches no row another
// request won and the attempt is a conflict.  The reservation row is
// inserted in the same transaction, so a seat never has an owner without a
// reservation or the other way round.
//
// Once the transaction starts it is no longer tied to the caller's
// cancellation, only to the service timeout, so a client hanging up cannot
// leave the outcome unknown to the store.
func (s *ReservationService) ReserveSeat(ctx context.Context, seatID, userID uint64) (*model.Reservation, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	readCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	seat, err := s.store.GetSeat(readCtx, seatID)
	if err != nil {
		return nil, classify(err)
	}
	if seat.Reserved() {
		return nil, ErrSeatTaken
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writeCtx, cancelWrite := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancelWrite()

	var rv *model.Reservation
	err = s.store.WithTx(writeCtx, func(tx repository.SeatTx) error {
		applied, err := tx.ConditionalReserve(writeCtx, seat.ID, userID)
		if err != nil {
			return err
		}
		if !applied {
			return ErrSeatTaken
		}
		rv, err = tx.CreateReservation(writeCtx, userID, seat.EventID, seat.ID)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	s.publish(ctx, seat, rv)
	return rv, nil
}

// ReleaseSeat clears the owner of a seat and drops its reservation.  It
// reports whether the seat was held.
func (s *ReservationService) ReleaseSeat(ctx context.Context, seatID uint64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	released, err := s.store.Release(ctx, seatID)
	if err != nil {
		return false, classify(err)
	}
	return released, nil
}

// classify maps store errors onto the service taxonomy.  A duplicate key
// on the reservation means a concurrent winner slipped in and is reported
// as a conflict, never as an outage.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrSeatTaken), repository.IsDuplicate(err):
		return ErrSeatTaken
	case errors.Is(err, repository.ErrSeatNotFound):
		return ErrSeatNotFound
	case repository.IsTransient(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (s *ReservationService) publish(ctx context.Context, seat *model.Seat, rv *model.Reservation) {
	if s.publisher == nil {
		return
	}
	ev := queue.SeatReservedEvent{
		ReservationID: rv.ID,
		UserID:        rv.UserID,
		EventID:       rv.EventID,
		SeatID:        rv.SeatID,
		SeatNumber:    seat.SeatNumber,
		ReservedAt:    rv.CreatedAt,
	}
	if err := s.publisher.PublishSeatReserved(ctx, ev); err != nil {
		log.Printf("publish seat.reserved for reservation %d: %v", rv.ID, err)
	}
}
