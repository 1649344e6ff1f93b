package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type ProfileRepository struct {
	logger logger.Logger
}

func NewProfileRepository(logger logger.Logger) domain.ProfileRepository {
	return &ProfileRepository{
		logger: logger,
	}
}

// Create attaches a profile to the user. A second profile for the same user
// fails with a constraint violation.
func (r *ProfileRepository) Create(ctx context.Context, s domain.Session, userID int64, in domain.ProfileInput) (*domain.Profile, error) {
	profile := &domain.Profile{
		FirstName: in.FirstName.Ptr(),
		LastName:  in.LastName.Ptr(),
		Bio:       in.Bio.Ptr(),
		UserRef:   domain.UserRef{UserID: userID},
	}

	if err := s.Add(profile); err != nil {
		return nil, err
	}
	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Profil oluşturulamadı", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("profil oluşturulamadı: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, s domain.Session, userID int64) (*domain.Profile, error) {
	query := `SELECT id, first_name, last_name, bio, user_id FROM profiles WHERE user_id = ?`

	var profile domain.Profile
	found, err := s.One(ctx, &profile, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Profil alınamadı", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("profil alınamadı: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &profile, nil
}

// MergePartial writes the supplied fields; an explicit null clears the column.
func (r *ProfileRepository) MergePartial(ctx context.Context, s domain.Session, existing *domain.Profile, in domain.ProfileInput) (*domain.Profile, error) {
	if in.FirstName.Set {
		existing.FirstName = in.FirstName.Ptr()
	}
	if in.LastName.Set {
		existing.LastName = in.LastName.Ptr()
	}
	if in.Bio.Set {
		existing.Bio = in.Bio.Ptr()
	}

	if err := s.Add(existing); err != nil {
		return nil, err
	}
	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Profil güncellenemedi", map[string]interface{}{"id": existing.ID, "error": err.Error()})
		return nil, fmt.Errorf("profil güncellenemedi: %w", err)
	}

	return existing, nil
}
