package domain

// Table declares how an entity maps onto storage. Columns lists the mutable
// columns in the order Model.Values returns them; the "id" primary key is implicit.
type Table struct {
	Name     string
	Resource string
	Columns  []string
}

var (
	ProductsTable = Table{
		Name:     "products",
		Resource: "Product",
		Columns:  []string{"name", "description", "price"},
	}

	UsersTable = Table{
		Name:     "users",
		Resource: "User",
		Columns:  []string{"username"},
	}

	ProfilesTable = Table{
		Name:     "profiles",
		Resource: "Profile",
		Columns:  []string{"first_name", "last_name", "bio", "user_id"},
	}

	PostsTable = Table{
		Name:     "posts",
		Resource: "Post",
		Columns:  []string{"title", "body", "user_id"},
	}
)

// Model is a row-backed entity a Session can stage, load and delete.
type Model interface {
	Table() Table
	Key() *int64
	Values() []interface{}
	Targets() []interface{}
}

// UserRef is the owning-user reference shared by Profile and Post.
type UserRef struct {
	UserID int64 `json:"user_id" db:"user_id"`
}
