package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type UserRepository struct {
	logger logger.Logger
}

func NewUserRepository(logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, s domain.Session, username string) (*domain.User, error) {
	user := &domain.User{Username: username}

	if err := s.Add(user); err != nil {
		return nil, err
	}
	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcı oluşturulamadı", map[string]interface{}{"username": username, "error": err.Error()})
		return nil, fmt.Errorf("kullanıcı oluşturulamadı: %w", err)
	}

	r.logger.InfoContext(ctx, "Kullanıcı oluşturuldu", map[string]interface{}{"id": user.ID, "username": username})
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, s domain.Session, id int64) (*domain.User, error) {
	var user domain.User
	found, err := s.Get(ctx, &user, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcı ID'ye göre bulunamadı", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("kullanıcı bulunamadı: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, s domain.Session, username string) (*domain.User, error) {
	query := `SELECT id, username FROM users WHERE username = ?`

	var user domain.User
	found, err := s.One(ctx, &user, query, username)
	if err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcı adına göre bulunamadı", map[string]interface{}{"username": username, "error": err.Error()})
		return nil, fmt.Errorf("kullanıcı bulunamadı: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, s domain.Session) ([]*domain.User, error) {
	query := `SELECT id, username FROM users ORDER BY id`

	users := []*domain.User{}
	if err := s.Select(ctx, &users, query); err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcılar listelenemedi", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("kullanıcılar listelenemedi: %w", err)
	}

	return users, nil
}

// relationBatchSize bounds the bind parameters of one IN query, well below the
// PostgreSQL (65535) and SQLite (32766) limits.
const relationBatchSize = 500

// ListWithRelations loads every user with its profile and posts using one
// extra IN query per relation and batch of users.
func (r *UserRepository) ListWithRelations(ctx context.Context, s domain.Session) ([]*domain.UserDetail, error) {
	users, err := r.List(ctx, s)
	if err != nil {
		return nil, err
	}

	details := make([]*domain.UserDetail, len(users))
	if len(users) == 0 {
		return details, nil
	}

	byID := make(map[int64]*domain.UserDetail, len(users))
	ids := make([]int64, len(users))
	for i, u := range users {
		details[i] = &domain.UserDetail{User: *u, Posts: []*domain.Post{}}
		byID[u.ID] = details[i]
		ids[i] = u.ID
	}

	for _, batch := range chunkIDs(ids, relationBatchSize) {
		query, args, err := sqlx.In(`SELECT id, first_name, last_name, bio, user_id FROM profiles WHERE user_id IN (?)`, batch)
		if err != nil {
			return nil, fmt.Errorf("profil sorgusu hazırlanamadı: %w", err)
		}
		var profiles []*domain.Profile
		if err := s.Select(ctx, &profiles, query, args...); err != nil {
			return nil, fmt.Errorf("profiller yüklenemedi: %w", err)
		}
		for _, p := range profiles {
			byID[p.UserID].Profile = p
		}

		query, args, err = sqlx.In(`SELECT id, title, body, user_id FROM posts WHERE user_id IN (?) ORDER BY id`, batch)
		if err != nil {
			return nil, fmt.Errorf("gönderi sorgusu hazırlanamadı: %w", err)
		}
		var posts []*domain.Post
		if err := s.Select(ctx, &posts, query, args...); err != nil {
			return nil, fmt.Errorf("gönderiler yüklenemedi: %w", err)
		}
		for _, p := range posts {
			d := byID[p.UserID]
			d.Posts = append(d.Posts, p)
		}
	}

	return details, nil
}

// Delete removes the user. Users that still own a profile or posts are
// rejected by the foreign keys with a constraint violation.
func (r *UserRepository) Delete(ctx context.Context, s domain.Session, existing *domain.User) error {
	if err := s.Delete(existing); err != nil {
		return err
	}

	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcı silinemedi", map[string]interface{}{"id": existing.ID, "error": err.Error()})
		return fmt.Errorf("kullanıcı silinemedi: %w", err)
	}

	r.logger.InfoContext(ctx, "Kullanıcı silindi", map[string]interface{}{"id": existing.ID})
	return nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	batches := make([][]int64, 0, (len(ids)+size-1)/size)
	for len(ids) > size {
		batches = append(batches, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}
