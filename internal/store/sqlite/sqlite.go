package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	status        TEXT NOT NULL DEFAULT 'active',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	price        REAL NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL DEFAULT 'producto',
	state        TEXT NOT NULL DEFAULT 'visible',
	availability TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS product_images (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL,
	image_url  TEXT NOT NULL,
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS favorites (
	user_id    INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, product_id),
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_products_state_created ON products(state, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_product_images_product ON product_images(product_id);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database, applies the schema, and returns a ready store.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, nil)
}

// NewWithSetup opens the database, applies the schema, and runs a setup
// function, letting tests seed rows before the store is used.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

// ==== UserStore implementation ====

func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, name, email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at
		FROM users
		WHERE id = ?
	`, id))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at
		FROM users
		WHERE email = ?
	`, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*store.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at
		FROM users
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		var user store.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) UpdateUserRole(ctx context.Context, id int64, role store.Role) (*store.User, error) {
	// Admins are untouchable through this path.
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET role = ? WHERE id = ? AND role != 'admin'
	`, role, id)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) UpdateUserStatus(ctx context.Context, id int64, status store.Status) (*store.User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET status = ? WHERE id = ? AND role != 'admin'
	`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

// ==== ProductStore implementation ====

func (s *SQLiteStore) CreateProduct(ctx context.Context, p *store.Product) (*store.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	state := p.State
	if state == "" {
		state = store.ProductStateVisible
	}
	ptype := p.Type
	if ptype == "" {
		ptype = "producto"
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO products (user_id, name, description, price, category, location, type, state, availability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.Name, p.Description, p.Price, p.Category, p.Location, ptype, state, p.Availability)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	for _, url := range p.Images {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, image_url) VALUES (?, ?)
		`, id, url); err != nil {
			return nil, fmt.Errorf("insert product image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.getProduct(ctx, id, false)
}

func (s *SQLiteStore) ListProducts(ctx context.Context, f store.ProductFilter) ([]*store.Product, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.price, p.category,
		       p.location, p.type, p.state, p.availability, p.created_at, u.name
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE p.state = 'visible'
	`
	var args []any

	if f.Category != "" {
		query += " AND p.category = ?"
		args = append(args, f.Category)
	}
	if f.Location != "" {
		query += " AND p.location LIKE ? COLLATE NOCASE"
		args = append(args, "%"+f.Location+"%")
	}
	if f.MinPrice != nil {
		query += " AND p.price >= ?"
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query += " AND p.price <= ?"
		args = append(args, *f.MaxPrice)
	}
	if f.Search != "" {
		query += " AND (p.name LIKE ? COLLATE NOCASE OR p.description LIKE ? COLLATE NOCASE)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *SQLiteStore) GetProductByID(ctx context.Context, id int64) (*store.Product, error) {
	return s.getProduct(ctx, id, true)
}

// getProduct loads a product row; visibleOnly restricts the lookup to the
// public catalog.
func (s *SQLiteStore) getProduct(ctx context.Context, id int64, visibleOnly bool) (*store.Product, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.price, p.category,
		       p.location, p.type, p.state, p.availability, p.created_at, u.name
		FROM products p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ?
	`
	if visibleOnly {
		query += " AND p.state = 'visible'"
	}

	var p store.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.Location, &p.Type, &p.State, &p.Availability, &p.CreatedAt, &p.SellerName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}

	products := []*store.Product{&p}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) UpdateProduct(ctx context.Context, id, ownerID int64, upd store.ProductUpdate) (*store.Product, error) {
	state := upd.State
	if state == "" {
		state = store.ProductStateVisible
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			name = ?, description = ?, price = ?, category = ?,
			location = ?, type = ?, state = ?, availability = ?
		WHERE id = ? AND user_id = ?
	`, upd.Name, upd.Description, upd.Price, upd.Category,
		upd.Location, upd.Type, state, upd.Availability, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.getProduct(ctx, id, false)
}

func (s *SQLiteStore) DeleteProduct(ctx context.Context, id, ownerID int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = ? AND user_id = ?
	`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateProductState(ctx context.Context, id int64, state store.ProductState) (*store.Product, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET state = ? WHERE id = ?
	`, state, id)
	if err != nil {
		return nil, fmt.Errorf("update product state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.getProduct(ctx, id, false)
}

// ==== FavoriteStore implementation ====

func (s *SQLiteStore) AddFavorite(ctx context.Context, userID, productID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO favorites (user_id, product_id) VALUES (?, ?)
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveFavorite(ctx context.Context, userID, productID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND product_id = ?
	`, userID, productID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListFavorites(ctx context.Context, userID int64) ([]*store.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, p.description, p.price, p.category,
		       p.location, p.type, p.state, p.availability, p.created_at, u.name
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		JOIN users u ON u.id = p.user_id
		WHERE f.user_id = ? AND p.state = 'visible'
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ==== helpers ====

func scanProducts(rows *sql.Rows) ([]*store.Product, error) {
	var products []*store.Product
	for rows.Next() {
		var p store.Product
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.Location, &p.Type, &p.State, &p.Availability, &p.CreatedAt, &p.SellerName,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Images = []string{}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// attachImages fills every product's Images slice with one query.
func (s *SQLiteStore) attachImages(ctx context.Context, products []*store.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*store.Product, len(products))
	placeholders := make([]string, 0, len(products))
	args := make([]any, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		placeholders = append(placeholders, "?")
		args = append(args, p.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, image_url FROM product_images
		WHERE product_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY id ASC
	`, args...)
	if err != nil {
		return fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Images = append(p.Images, url)
		}
	}
	return rows.Err()
}
