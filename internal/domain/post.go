package domain

import "context"

type Post struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
	Body  string `json:"body" db:"body"`
	UserRef
}

func (p *Post) Table() Table { return PostsTable }

func (p *Post) Key() *int64 { return &p.ID }

func (p *Post) Values() []interface{} {
	return []interface{}{p.Title, p.Body, p.UserID}
}

func (p *Post) Targets() []interface{} {
	return []interface{}{&p.ID, &p.Title, &p.Body, &p.UserID}
}

type PostInput struct {
	Title Optional[string] `json:"title" validate:"omitempty,max=100"`
	Body  Optional[string] `json:"body"`
}

type PostsInput struct {
	Posts []PostInput `json:"posts" validate:"required,min=1,dive"`
}

type PostRepository interface {
	CreateMany(ctx context.Context, s Session, userID int64, in []PostInput) ([]*Post, error)
	ListByUser(ctx context.Context, s Session, userID int64) ([]*Post, error)
	ListAll(ctx context.Context, s Session) ([]*Post, error)
}
