package queries

import (
	"context"

	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/pkg/dateutil"
	"wave-studio-api/internal/pkg/errs"

	"github.com/google/uuid"
)

// WaitlistQuery serves queue listings. Expiry is lazy: rows are not swept
// on a timer, so every listing masks a notified entry whose window has
// passed as expired before it leaves this layer.
type WaitlistQuery struct {
	waitlist WaitlistReader
	clock    clock.Clock
}

func NewWaitlistQuery(wl WaitlistReader, clk clock.Clock) *WaitlistQuery {
	return &WaitlistQuery{waitlist: wl, clock: clk}
}

func (q *WaitlistQuery) GetUserWaitlist(ctx context.Context, userID uuid.UUID) ([]WaitlistEntryView, error) {
	views, err := q.waitlist.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return q.maskExpired(views), nil
}

func (q *WaitlistQuery) GetWaitlistForSlot(ctx context.Context, slotID uuid.UUID, date string) ([]WaitlistEntryView, error) {
	if _, err := dateutil.ParseDate(date); err != nil {
		return nil, errs.Mark(err, ErrInvalidDate)
	}
	views, err := q.waitlist.FindActiveForSlot(ctx, slotID, date)
	if err != nil {
		return nil, err
	}
	return q.maskExpired(views), nil
}

func (q *WaitlistQuery) GetWaitlistCount(ctx context.Context, slotID uuid.UUID, date string) (int, error) {
	if _, err := dateutil.ParseDate(date); err != nil {
		return 0, errs.Mark(err, ErrInvalidDate)
	}
	return q.waitlist.CountActiveForSlot(ctx, slotID, date)
}

func (q *WaitlistQuery) GetAdminWaitlist(ctx context.Context, date *string) ([]WaitlistEntryView, error) {
	if date != nil {
		if _, err := dateutil.ParseDate(*date); err != nil {
			return nil, errs.Mark(err, ErrInvalidDate)
		}
	}
	views, err := q.waitlist.FindAdmin(ctx, date)
	if err != nil {
		return nil, err
	}
	return q.maskExpired(views), nil
}

func (q *WaitlistQuery) maskExpired(views []WaitlistEntryView) []WaitlistEntryView {
	if views == nil {
		return []WaitlistEntryView{}
	}
	now := q.clock.Now()
	for i := range views {
		v := &views[i]
		if v.Status == string(waitlist.StatusNotified) && v.ExpiresAt != nil && now.After(*v.ExpiresAt) {
			v.Status = string(waitlist.StatusExpired)
		}
	}
	return views
}
