package domain

import "context"

// Profile is one-to-one with User; user_id is unique in storage.
type Profile struct {
	ID        int64   `json:"id" db:"id"`
	FirstName *string `json:"first_name" db:"first_name"`
	LastName  *string `json:"last_name" db:"last_name"`
	Bio       *string `json:"bio" db:"bio"`
	UserRef
}

func (p *Profile) Table() Table { return ProfilesTable }

func (p *Profile) Key() *int64 { return &p.ID }

func (p *Profile) Values() []interface{} {
	return []interface{}{p.FirstName, p.LastName, p.Bio, p.UserID}
}

func (p *Profile) Targets() []interface{} {
	return []interface{}{&p.ID, &p.FirstName, &p.LastName, &p.Bio, &p.UserID}
}

// ProfileInput fields are all nullable; an explicit null clears the column.
type ProfileInput struct {
	FirstName Optional[string] `json:"first_name" validate:"omitempty,max=40"`
	LastName  Optional[string] `json:"last_name" validate:"omitempty,max=40"`
	Bio       Optional[string] `json:"bio"`
}

type ProfileRepository interface {
	Create(ctx context.Context, s Session, userID int64, in ProfileInput) (*Profile, error)
	GetByUserID(ctx context.Context, s Session, userID int64) (*Profile, error)
	MergePartial(ctx context.Context, s Session, existing *Profile, in ProfileInput) (*Profile, error)
}
