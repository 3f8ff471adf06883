package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested row does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on unique-constraint violations.
	ErrDuplicate = errors.New("duplicate")
)

// Role defines what a user is allowed to do.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Status defines whether an account may log in.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       Status
	CreatedAt    time.Time
}

// ProductState controls listing visibility. The vocabulary is shared with
// the moderation UI, hence the mixed-language values.
type ProductState string

const (
	ProductStateVisible   ProductState = "visible"
	ProductStateHidden    ProductState = "oculto"
	ProductStateSuspended ProductState = "suspendido"
)

// Product represents a marketplace listing.
type Product struct {
	ID           int64
	UserID       int64
	Name         string
	Description  string
	Price        float64
	Category     string
	Location     string
	Type         string
	State        ProductState
	Availability string
	Images       []string
	SellerName   string
	CreatedAt    time.Time
}

// ProductFilter narrows a catalog listing query. Zero values mean "no
// constraint".
type ProductFilter struct {
	Category string
	Location string
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// ProductUpdate carries the seller-editable fields.
type ProductUpdate struct {
	Name         string
	Description  string
	Price        float64
	Category     string
	Location     string
	Type         string
	State        ProductState
	Availability string
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser inserts a new account with the default role and status.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// ListUsers returns every account, oldest first.
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdateUserRole changes a non-admin user's role.
	UpdateUserRole(ctx context.Context, id int64, role Role) (*User, error)

	// UpdateUserStatus changes a non-admin user's status.
	UpdateUserStatus(ctx context.Context, id int64, status Status) (*User, error)
}

// ProductStore handles listing persistence.
type ProductStore interface {
	// CreateProduct inserts a listing and its image URLs in one transaction.
	CreateProduct(ctx context.Context, p *Product) (*Product, error)

	// ListProducts returns visible listings matching the filter, newest first.
	ListProducts(ctx context.Context, f ProductFilter) ([]*Product, error)

	// GetProductByID retrieves a visible listing with its seller name.
	GetProductByID(ctx context.Context, id int64) (*Product, error)

	// UpdateProduct applies seller edits; the row must belong to ownerID.
	UpdateProduct(ctx context.Context, id, ownerID int64, upd ProductUpdate) (*Product, error)

	// DeleteProduct removes a listing owned by ownerID; images cascade.
	DeleteProduct(ctx context.Context, id, ownerID int64) error

	// UpdateProductState is the moderation override, no ownership check.
	UpdateProductState(ctx context.Context, id int64, state ProductState) (*Product, error)
}

// FavoriteStore handles per-user favorite listings.
type FavoriteStore interface {
	// AddFavorite marks a product as a favorite. Idempotent.
	AddFavorite(ctx context.Context, userID, productID int64) error

	// RemoveFavorite unmarks a favorite. Idempotent.
	RemoveFavorite(ctx context.Context, userID, productID int64) error

	// ListFavorites returns the user's favorited products that are still visible.
	ListFavorites(ctx context.Context, userID int64) ([]*Product, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ProductStore
	FavoriteStore

	// Close closes the underlying database connection.
	Close() error
}
