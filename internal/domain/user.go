package domain

import "context"

type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

func (u *User) Table() Table { return UsersTable }

func (u *User) Key() *int64 { return &u.ID }

func (u *User) Values() []interface{} {
	return []interface{}{u.Username}
}

func (u *User) Targets() []interface{} {
	return []interface{}{&u.ID, &u.Username}
}

// UserDetail is a user with its profile and posts loaded.
type UserDetail struct {
	User
	Profile *Profile `json:"profile"`
	Posts   []*Post  `json:"posts"`
}

type UserInput struct {
	Username Optional[string] `json:"username" validate:"omitempty,min=3,max=20"`
}

type UserRepository interface {
	Create(ctx context.Context, s Session, username string) (*User, error)
	GetByID(ctx context.Context, s Session, id int64) (*User, error)
	GetByUsername(ctx context.Context, s Session, username string) (*User, error)
	List(ctx context.Context, s Session) ([]*User, error)
	ListWithRelations(ctx context.Context, s Session) ([]*UserDetail, error)
	Delete(ctx context.Context, s Session, existing *User) error
}

type UserService interface {
	CreateUser(ctx context.Context, s Session, in UserInput) (*User, error)
	GetUser(ctx context.Context, s Session, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, s Session, username string) (*User, error)
	ListUsers(ctx context.Context, s Session) ([]*UserDetail, error)
	DeleteUser(ctx context.Context, s Session, id int64) error

	CreateProfile(ctx context.Context, s Session, userID int64, in ProfileInput) (*Profile, error)
	GetProfile(ctx context.Context, s Session, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, s Session, userID int64, in ProfileInput) (*Profile, error)

	CreatePosts(ctx context.Context, s Session, userID int64, in PostsInput) ([]*Post, error)
	ListUserPosts(ctx context.Context, s Session, userID int64) ([]*Post, error)
	ListPosts(ctx context.Context, s Session) ([]*Post, error)
}
