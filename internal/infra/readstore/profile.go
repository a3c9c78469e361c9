package readstore

import (
	"context"
	"time"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

// ProfileReadStore reads client contact details. Profiles are owned by the
// identity provider's sync; this service only reads them for notification
// payloads and admin views.
type ProfileReadStore struct {
	db db.DBTX
}

func NewProfileReadStore(pool db.DBTX) *ProfileReadStore {
	return &ProfileReadStore{db: pool}
}

func (r *ProfileReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProfileView, error) {
	var v queries.ProfileView
	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, phone FROM profiles WHERE id = $1
	`, id).Scan(&v.ID, &v.FullName, &v.Email, &v.Phone)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("profile not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find profile by ID", err)
	}
	return &v, nil
}

// CountCreatedSince is the "new clients this week" admin stat.
func (r *ProfileReadStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM profiles WHERE created_at >= $1
	`, since).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count new profiles", err)
	}
	return count, nil
}
