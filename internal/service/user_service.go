package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type UserService struct {
	users    domain.UserRepository
	profiles domain.ProfileRepository
	posts    domain.PostRepository
	logger   logger.Logger
}

func NewUserService(
	users domain.UserRepository,
	profiles domain.ProfileRepository,
	posts domain.PostRepository,
	logger logger.Logger,
) domain.UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
		posts:    posts,
		logger:   logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, session domain.Session, in domain.UserInput) (*domain.User, error) {
	return s.users.Create(ctx, session, in.Username.Value)
}

func (s *UserService) GetUser(ctx context.Context, session domain.Session, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, &domain.NotFoundError{Resource: domain.UsersTable.Resource, ID: id}
	}

	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, session domain.Session, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, session, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, &domain.NotFoundError{Resource: domain.UsersTable.Resource, ID: username}
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, session domain.Session) ([]*domain.UserDetail, error) {
	return s.users.ListWithRelations(ctx, session)
}

// DeleteUser fails with a constraint violation while the user still owns a profile or posts.
func (s *UserService) DeleteUser(ctx context.Context, session domain.Session, id int64) error {
	user, err := s.GetUser(ctx, session, id)
	if err != nil {
		return err
	}

	return s.users.Delete(ctx, session, user)
}

func (s *UserService) CreateProfile(ctx context.Context, session domain.Session, userID int64, in domain.ProfileInput) (*domain.Profile, error) {
	if _, err := s.GetUser(ctx, session, userID); err != nil {
		return nil, err
	}

	return s.profiles.Create(ctx, session, userID, in)
}

func (s *UserService) GetProfile(ctx context.Context, session domain.Session, userID int64) (*domain.Profile, error) {
	if _, err := s.GetUser(ctx, session, userID); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, session, userID)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		return nil, &domain.NotFoundError{Resource: domain.ProfilesTable.Resource, ID: userID}
	}

	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, session domain.Session, userID int64, in domain.ProfileInput) (*domain.Profile, error) {
	profile, err := s.GetProfile(ctx, session, userID)
	if err != nil {
		return nil, err
	}

	return s.profiles.MergePartial(ctx, session, profile, in)
}

func (s *UserService) CreatePosts(ctx context.Context, session domain.Session, userID int64, in domain.PostsInput) ([]*domain.Post, error) {
	if _, err := s.GetUser(ctx, session, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.CreateMany(ctx, session, userID, in.Posts)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Gönderiler oluşturuldu", map[string]interface{}{"user_id": userID, "count": len(posts)})
	return posts, nil
}

func (s *UserService) ListUserPosts(ctx context.Context, session domain.Session, userID int64) ([]*domain.Post, error) {
	if _, err := s.GetUser(ctx, session, userID); err != nil {
		return nil, err
	}

	return s.posts.ListByUser(ctx, session, userID)
}

func (s *UserService) ListPosts(ctx context.Context, session domain.Session) ([]*domain.Post, error) {
	return s.posts.ListAll(ctx, session)
}
