package domain

import "context"

const (
	MinPrice = 1
	MaxPrice = 1_000_000

	MinID = 1
	MaxID = 1_000_000
)

type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Price       int    `json:"price" db:"price"`
}

func (p *Product) Table() Table { return ProductsTable }

func (p *Product) Key() *int64 { return &p.ID }

func (p *Product) Values() []interface{} {
	return []interface{}{p.Name, p.Description, p.Price}
}

func (p *Product) Targets() []interface{} {
	return []interface{}{&p.ID, &p.Name, &p.Description, &p.Price}
}

// ProductInput is the request payload for create, replace and partial update.
// ID is only decoded so that a client-supplied id can be rejected.
type ProductInput struct {
	ID          Optional[int64]  `json:"id"`
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	Price       Optional[int]    `json:"price" validate:"omitempty,min=1,max=1000000"`
}

// Supplied returns the names of the fields the client actually sent.
func (in ProductInput) Supplied() []string {
	fields := make([]string, 0, 3)
	if in.Name.Set {
		fields = append(fields, "name")
	}
	if in.Description.Set {
		fields = append(fields, "description")
	}
	if in.Price.Set {
		fields = append(fields, "price")
	}
	return fields
}

type ProductRepository interface {
	ListAll(ctx context.Context, s Session) ([]*Product, error)
	GetByID(ctx context.Context, s Session, id int64) (*Product, error)
	Create(ctx context.Context, s Session, in ProductInput) (*Product, error)
	Replace(ctx context.Context, s Session, existing *Product, in ProductInput) (*Product, error)
	MergePartial(ctx context.Context, s Session, existing *Product, in ProductInput) (*Product, error)
	Delete(ctx context.Context, s Session, existing *Product) error
}

type ProductService interface {
	ListProducts(ctx context.Context, s Session) ([]*Product, error)
	GetProduct(ctx context.Context, s Session, id int64) (*Product, error)
	CreateProduct(ctx context.Context, s Session, in ProductInput) (*Product, error)
	ReplaceProduct(ctx context.Context, s Session, id int64, in ProductInput) (*Product, error)
	UpdateProductPartial(ctx context.Context, s Session, id int64, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, s Session, id int64) error
}
