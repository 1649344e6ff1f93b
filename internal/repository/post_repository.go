package repository

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type PostRepository struct {
	logger logger.Logger
}

func NewPostRepository(logger logger.Logger) domain.PostRepository {
	return &PostRepository{
		logger: logger,
	}
}

// CreateMany stores all posts in a single commit; either every post is created or none.
func (r *PostRepository) CreateMany(ctx context.Context, s domain.Session, userID int64, in []domain.PostInput) ([]*domain.Post, error) {
	posts := make([]*domain.Post, len(in))
	for i, p := range in {
		posts[i] = &domain.Post{
			Title:   p.Title.Value,
			Body:    p.Body.Value,
			UserRef: domain.UserRef{UserID: userID},
		}
		if err := s.Add(posts[i]); err != nil {
			return nil, err
		}
	}

	if err := s.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Gönderiler oluşturulamadı", map[string]interface{}{"user_id": userID, "count": len(in), "error": err.Error()})
		return nil, fmt.Errorf("gönderiler oluşturulamadı: %w", err)
	}

	return posts, nil
}

func (r *PostRepository) ListByUser(ctx context.Context, s domain.Session, userID int64) ([]*domain.Post, error) {
	query := `SELECT id, title, body, user_id FROM posts WHERE user_id = ? ORDER BY id`

	posts := []*domain.Post{}
	if err := s.Select(ctx, &posts, query, userID); err != nil {
		r.logger.ErrorContext(ctx, "Kullanıcı gönderileri listelenemedi", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("gönderiler listelenemedi: %w", err)
	}

	return posts, nil
}

// ListAll reads every post, ordered by id, through a session cursor.
func (r *PostRepository) ListAll(ctx context.Context, s domain.Session) ([]*domain.Post, error) {
	rows, err := s.Execute(ctx, `SELECT id, title, body, user_id FROM posts ORDER BY id`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Gönderiler listelenemedi", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("gönderiler listelenemedi: %w", err)
	}
	defer rows.Close()

	posts := []*domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.StructScan(&p); err != nil {
			return nil, fmt.Errorf("gönderi okunamadı: %w", err)
		}
		posts = append(posts, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Gönderiler listelenemedi", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("gönderiler listelenemedi: %w", err)
	}

	return posts, nil
}
