//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the persistence layer that
// enforces the same constraints the schema does: capacity-checked inserts,
// one active booking/waitlist entry per user per occurrence, serialized
// position allocation and conditional status transitions. Tests exercising
// race-sensitive flows are only meaningful because the fake rejects the
// same operations the store would.
type fakeStore struct {
	mu sync.Mutex

	slots    map[uuid.UUID]queries.SlotView
	profiles map[uuid.UUID]queries.ProfileView
	bookings map[uuid.UUID]*booking.Booking
	entries  map[uuid.UUID]*waitlist.Entry

	jobs       []enqueuedJob
	feedEvents []string
}

type enqueuedJob struct {
	Topic   string
	Payload []byte
	RunAt   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:    make(map[uuid.UUID]queries.SlotView),
		profiles: make(map[uuid.UUID]queries.ProfileView),
		bookings: make(map[uuid.UUID]*booking.Booking),
		entries:  make(map[uuid.UUID]*waitlist.Entry),
	}
}

func (s *fakeStore) addSlot(slot queries.SlotView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ID] = slot
}

func (s *fakeStore) addProfile(id uuid.UUID, name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = queries.ProfileView{ID: id, FullName: name, Email: email}
}

func (s *fakeStore) activeBookingCount(slotID uuid.UUID, date string) int {
	count := 0
	for _, b := range s.bookings {
		if b.SlotID() == slotID && b.BookingDate() == date && b.IsActive() {
			count++
		}
	}
	return count
}

func (s *fakeStore) hasActiveBooking(userID, slotID uuid.UUID, date string) bool {
	for _, b := range s.bookings {
		if b.UserID() == userID && b.SlotID() == slotID && b.BookingDate() == date && b.IsActive() {
			return true
		}
	}
	return false
}

func (s *fakeStore) jobTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		topics[i] = j.Topic
	}
	return topics
}

func (s *fakeStore) entryByUser(userID uuid.UUID) *waitlist.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.UserID() == userID {
			return e
		}
	}
	return nil
}

// --- unit of work ---

type fakeUoW struct{}

func (fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return fn(ctx, nil)
}

// --- write side ---

type fakeBookingRepo struct{ s *fakeStore }

func (r fakeBookingRepo) CreateIfCapacity(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[b.SlotID()]
	if !ok {
		return infra.WrapRepoErr("slot not found", nil, infra.KindNotFound)
	}
	if r.s.hasActiveBooking(b.UserID(), b.SlotID(), b.BookingDate()) {
		return infra.WrapRepoErr("duplicate booking", nil, infra.KindDuplicateKey)
	}
	if r.s.activeBookingCount(b.SlotID(), b.BookingDate()) >= slot.MaxCapacity {
		return infra.WrapRepoErr("slot capacity exhausted", nil, infra.KindCapacityExceeded)
	}
	r.s.bookings[b.ID()] = b
	return nil
}

func (r fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return b, nil
}

func (r fakeBookingRepo) UpdateStatus(_ context.Context, _ db.DBTX, id uuid.UUID, status booking.Status, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	r.s.bookings[id] = booking.Reconstruct(
		b.ID(), b.UserID(), b.SlotID(), b.BookingDate(), status, b.AmountPaidCents(), b.CreatedAt(), now)
	return nil
}

func (r fakeBookingRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[id]; !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	delete(r.s.bookings, id)
	return nil
}

type fakeWaitlistRepo struct{ s *fakeStore }

func (r fakeWaitlistRepo) NextPosition(_ context.Context, _ db.DBTX, slotID uuid.UUID, date string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	max := 0
	for _, e := range r.s.entries {
		if e.SlotID() == slotID && e.BookingDate() == date && e.Position() > max {
			max = e.Position()
		}
	}
	return max + 1, nil
}

func (r fakeWaitlistRepo) Create(_ context.Context, _ db.DBTX, entry *waitlist.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.UserID() == entry.UserID() && e.SlotID() == entry.SlotID() &&
			e.BookingDate() == entry.BookingDate() && e.Status().IsActive() {
			return infra.WrapRepoErr("already waitlisted", nil, infra.KindDuplicateKey)
		}
	}
	r.s.entries[entry.ID()] = entry
	return nil
}

func (r fakeWaitlistRepo) FindByID(_ context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok {
		return nil, infra.WrapRepoErr("waitlist entry not found", nil, infra.KindNotFound)
	}
	return e, nil
}

func (r fakeWaitlistRepo) HasActiveEntry(_ context.Context, userID, slotID uuid.UUID, date string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.entries {
		if e.UserID() == userID && e.SlotID() == slotID && e.BookingDate() == date && e.Status().IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeWaitlistRepo) LockNextWaiting(_ context.Context, _ db.DBTX, slotID uuid.UUID, date string) (*waitlist.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var next *waitlist.Entry
	for _, e := range r.s.entries {
		if e.SlotID() != slotID || e.BookingDate() != date || e.Status() != waitlist.StatusWaiting {
			continue
		}
		if next == nil || e.Position() < next.Position() {
			next = e
		}
	}
	return next, nil
}

func (r fakeWaitlistRepo) Update(_ context.Context, _ db.DBTX, entry *waitlist.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[entry.ID()]; !ok {
		return infra.WrapRepoErr("waitlist entry not found", nil, infra.KindNotFound)
	}
	r.s.entries[entry.ID()] = entry
	return nil
}

func (r fakeWaitlistRepo) TransitionStatus(_ context.Context, _ db.DBTX, id uuid.UUID, from, to waitlist.Status, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[id]
	if !ok || e.Status() != from {
		return false, nil
	}
	r.s.entries[id] = waitlist.Reconstruct(
		e.ID(), e.UserID(), e.SlotID(), e.BookingDate(), e.Position(), to,
		e.NotifiedAt(), e.ExpiresAt(), e.CreatedAt(), now)
	return true, nil
}

// --- outbox and feed ---

type fakeOutbox struct{ s *fakeStore }

func (o fakeOutbox) CreateJob(_ context.Context, _ db.DBTX, topic string, payload []byte, runAt time.Time) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	o.s.jobs = append(o.s.jobs, enqueuedJob{Topic: topic, Payload: payload, RunAt: runAt})
	return nil
}

type fakeFeed struct{ s *fakeStore }

func (f fakeFeed) BookingChanged(_ context.Context, eventType string, _, _ any) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.feedEvents = append(f.s.feedEvents, eventType)
}

// --- read side ---

type fakeSlotReader struct{ s *fakeStore }

func (r fakeSlotReader) FindByID(_ context.Context, id uuid.UUID) (*queries.SlotView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	slot, ok := r.s.slots[id]
	if !ok {
		return nil, infra.WrapRepoErr("slot not found", nil, infra.KindNotFound)
	}
	return &slot, nil
}

func (r fakeSlotReader) FindActiveByDay(_ context.Context, dayOfWeek int) ([]queries.SlotView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []queries.SlotView
	for _, slot := range r.s.slots {
		if slot.IsActive && slot.DayOfWeek == dayOfWeek {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (r fakeSlotReader) FindActive(_ context.Context, instructorID *uuid.UUID) ([]queries.SlotView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []queries.SlotView
	for _, slot := range r.s.slots {
		if !slot.IsActive {
			continue
		}
		if instructorID != nil && slot.InstructorID != *instructorID {
			continue
		}
		result = append(result, slot)
	}
	return result, nil
}

func (r fakeSlotReader) FindInstructors(_ context.Context) ([]queries.InstructorView, error) {
	return nil, nil
}

type fakeBookingReader struct{ s *fakeStore }

func (r fakeBookingReader) CountActive(_ context.Context, slotID uuid.UUID, date string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.activeBookingCount(slotID, date), nil
}

func (r fakeBookingReader) HasActiveBooking(_ context.Context, userID, slotID uuid.UUID, date string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.hasActiveBooking(userID, slotID, date), nil
}

func (r fakeBookingReader) CountActiveByDates(_ context.Context, dates []string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int)
	for _, b := range r.s.bookings {
		if !b.IsActive() {
			continue
		}
		for _, date := range dates {
			if b.BookingDate() == date {
				counts[queries.CountKey(b.SlotID(), date)]++
			}
		}
	}
	return counts, nil
}

func (r fakeBookingReader) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return r.s.viewOf(b), nil
}

func (r fakeBookingReader) FindByUser(_ context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []queries.BookingView
	for _, b := range r.s.bookings {
		if b.UserID() == userID {
			result = append(result, *r.s.viewOf(b))
		}
	}
	return result, nil
}

func (r fakeBookingReader) FindNextByUser(_ context.Context, userID uuid.UUID, today string) (*queries.BookingView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var next *booking.Booking
	for _, b := range r.s.bookings {
		if b.UserID() != userID || !b.IsActive() || b.BookingDate() < today {
			continue
		}
		if next == nil || b.BookingDate() < next.BookingDate() {
			next = b
		}
	}
	if next == nil {
		return nil, nil
	}
	return r.s.viewOf(next), nil
}

func (r fakeBookingReader) FindAdmin(_ context.Context, _ queries.AdminBookingFilter) ([]queries.AdminBookingView, error) {
	return nil, nil
}

func (r fakeBookingReader) CountActiveOnDate(_ context.Context, date string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, b := range r.s.bookings {
		if b.BookingDate() == date && b.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r fakeBookingReader) SumConfirmedRevenueOnDate(_ context.Context, date string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := 0
	for _, b := range r.s.bookings {
		if b.BookingDate() == date && b.Status() == booking.StatusConfirmed {
			sum += b.AmountPaidCents()
		}
	}
	return sum, nil
}

func (r fakeBookingReader) CountUpTo(_ context.Context, date string) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total, confirmed := 0, 0
	for _, b := range r.s.bookings {
		if b.BookingDate() > date {
			continue
		}
		total++
		if b.Status() == booking.StatusConfirmed {
			confirmed++
		}
	}
	return total, confirmed, nil
}

func (r fakeBookingReader) SumAmountByStatusBetween(_ context.Context, from, to string) (int, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	paid, pending := 0, 0
	for _, b := range r.s.bookings {
		if b.BookingDate() < from || b.BookingDate() > to {
			continue
		}
		switch b.Status() {
		case booking.StatusConfirmed:
			paid += b.AmountPaidCents()
		case booking.StatusPending:
			pending += b.AmountPaidCents()
		}
	}
	return paid, pending, nil
}

func (s *fakeStore) viewOf(b *booking.Booking) *queries.BookingView {
	slot := s.slots[b.SlotID()]
	return &queries.BookingView{
		ID:              b.ID(),
		UserID:          b.UserID(),
		SlotID:          b.SlotID(),
		BookingDate:     b.BookingDate(),
		Status:          string(b.Status()),
		AmountPaidCents: b.AmountPaidCents(),
		ClassType:       slot.ClassType,
		StartTime:       slot.StartTime,
		InstructorName:  slot.InstructorName,
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

type fakeProfileReader struct{ s *fakeStore }

func (r fakeProfileReader) FindByID(_ context.Context, id uuid.UUID) (*queries.ProfileView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.profiles[id]; ok {
		return &p, nil
	}
	return &queries.ProfileView{ID: id, FullName: "Client", Email: "client@example.com"}, nil
}

func (r fakeProfileReader) CountCreatedSince(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

// --- test environment ---

type testEnv struct {
	store *fakeStore
	clock *clock.MockClock
	cmd   *commands.BookingCommand
}

func newTestEnv(now time.Time) *testEnv {
	store := newFakeStore()
	clk := clock.NewMockClock(now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cmd := commands.NewBookingCommand(
		fakeUoW{},
		fakeBookingRepo{s: store},
		fakeWaitlistRepo{s: store},
		fakeOutbox{s: store},
		fakeFeed{s: store},
		fakeSlotReader{s: store},
		fakeBookingReader{s: store},
		fakeProfileReader{s: store},
		clk,
		logger,
	)
	return &testEnv{store: store, clock: clk, cmd: cmd}
}
