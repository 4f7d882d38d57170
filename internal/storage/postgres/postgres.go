package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkochetov/storefront/internal/storage"
	"github.com/dkochetov/storefront/internal/types/cart"
	"github.com/dkochetov/storefront/internal/types/order"
	"github.com/dkochetov/storefront/internal/types/product"
	"github.com/dkochetov/storefront/internal/types/user"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	// создаём таблицы
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price DOUBLE PRECISION NOT NULL,
            image_url TEXT NOT NULL DEFAULT '',
            stock INT NOT NULL DEFAULT 0,
            created_by INT REFERENCES users(id),
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            product_id INT NOT NULL REFERENCES products(id),
            quantity INT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            UNIQUE(user_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            order_number TEXT UNIQUE NOT NULL,
            status TEXT NOT NULL,
            total_amount DOUBLE PRECISION NOT NULL,
            full_name TEXT NOT NULL,
            phone TEXT NOT NULL,
            city TEXT NOT NULL,
            address TEXT NOT NULL,
            postal_code TEXT,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders(id),
            product_id INT NOT NULL,
            quantity INT NOT NULL,
            price DOUBLE PRECISION NOT NULL
        )`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (email,password_hash,name,role,created_at) VALUES($1,$2,$3,$4,$5) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateEmail
	}
	return err
}

func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,email,password_hash,name,role,created_at FROM users WHERE email=$1`
	if err := s.db.QueryRowContext(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *PostgresStorage) ListProducts(ctx context.Context) ([]product.Product, error) {
	const q = `
        SELECT id, name, description, price, image_url, stock, created_by, created_at
        FROM products
        ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var p product.Product
		var createdBy sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &createdBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		if createdBy.Valid {
			p.CreatedBy = &createdBy.Int64
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) FindProductByID(ctx context.Context, id int64) (*product.Product, error) {
	const q = `
        SELECT id, name, description, price, image_url, stock, created_by, created_at
        FROM products WHERE id = $1`
	var p product.Product
	var createdBy sql.NullInt64
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &createdBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.Int64
	}
	return &p, nil
}

func (s *PostgresStorage) CreateProduct(ctx context.Context, p *product.Product) error {
	q := `
        INSERT INTO products (name,description,price,image_url,stock,created_by,created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`
	return s.db.QueryRowContext(ctx, q,
		p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.CreatedBy, p.CreatedAt,
	).Scan(&p.ID)
}

func (s *PostgresStorage) UpdateProduct(ctx context.Context, p *product.Product) error {
	q := `
        UPDATE products
        SET name=$1, description=$2, price=$3, image_url=$4, stock=$5
        WHERE id=$6`
	res, err := s.db.ExecContext(ctx, q,
		p.Name, p.Description, p.Price, p.ImageURL, p.Stock, p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrProductNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrProductNotFound
	}
	return nil
}

func (s *PostgresStorage) ListCartByUser(ctx context.Context, userID int64) ([]cart.Item, error) {
	const q = `
        SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
               p.id, p.name, p.description, p.price, p.image_url, p.stock, p.created_at
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        WHERE c.user_id = $1
        ORDER BY c.created_at`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Item
	for rows.Next() {
		var it cart.Item
		var p product.Product
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		it.Product = &p
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) FindCartItem(ctx context.Context, id, userID int64) (*cart.Item, error) {
	const q = `
        SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
               p.id, p.name, p.description, p.price, p.image_url, p.stock, p.created_at
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        WHERE c.id = $1 AND c.user_id = $2`
	var it cart.Item
	var p product.Product
	err := s.db.QueryRowContext(ctx, q, id, userID).Scan(
		&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	it.Product = &p
	return &it, nil
}

func (s *PostgresStorage) FindCartItemByProduct(ctx context.Context, userID, productID int64) (*cart.Item, error) {
	const q = `
        SELECT id, user_id, product_id, quantity, created_at
        FROM cart_items WHERE user_id = $1 AND product_id = $2`
	var it cart.Item
	err := s.db.QueryRowContext(ctx, q, userID, productID).
		Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PostgresStorage) CreateCartItem(ctx context.Context, it *cart.Item) error {
	q := `
        INSERT INTO cart_items (user_id, product_id, quantity, created_at)
        VALUES ($1,$2,$3,$4) RETURNING id`
	return s.db.QueryRowContext(ctx, q, it.UserID, it.ProductID, it.Quantity, it.CreatedAt).Scan(&it.ID)
}

func (s *PostgresStorage) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE cart_items SET quantity=$1 WHERE id=$2`, quantity, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrCartItemNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteCartItem(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrCartItemNotFound
	}
	return nil
}

func (s *PostgresStorage) GetProductStock(ctx context.Context, productID int64) (int, error) {
	var stock int
	err := s.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, storage.ErrProductNotFound
	}
	return stock, err
}

// CreateOrderWithItems выполняет фиксацию заказа одной транзакцией:
// заголовок, позиции и условное списание остатков по каждой позиции.
func (s *PostgresStorage) CreateOrderWithItems(ctx context.Context, o *order.Order, items []order.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertOrder = `
        INSERT INTO orders (user_id, order_number, status, total_amount,
                            full_name, phone, city, address, postal_code,
                            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`
	err = tx.QueryRowContext(ctx, insertOrder,
		o.UserID, o.Number, o.Status, o.TotalAmount,
		o.FullName, o.Phone, o.City, o.Address, o.PostalCode,
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateOrderNumber
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
        INSERT INTO order_items (order_id, product_id, quantity, price)
        VALUES ($1,$2,$3,$4) RETURNING id`
	// Списание только при достаточном остатке; ноль затронутых строк
	// означает нехватку товара или его отсутствие.
	const decrementStock = `
        UPDATE products SET stock = stock - $2
        WHERE id = $1 AND stock >= $2`

	for i := range items {
		items[i].OrderID = o.ID
		if err := tx.QueryRowContext(ctx, insertItem,
			o.ID, items[i].ProductID, items[i].Quantity, items[i].Price,
		).Scan(&items[i].ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		res, err := tx.ExecContext(ctx, decrementStock, items[i].ProductID, items[i].Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var available int
			err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id=$1`, items[i].ProductID).Scan(&available)
			if err == sql.ErrNoRows {
				return storage.ErrProductNotFound
			}
			if err != nil {
				return err
			}
			return &storage.InsufficientStockError{
				ProductID: items[i].ProductID,
				Available: available,
				Requested: items[i].Quantity,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	o.Items = items
	return nil
}

func (s *PostgresStorage) FindOrderByID(ctx context.Context, id int64) (*order.Order, error) {
	const q = `
        SELECT id, user_id, order_number, status, total_amount,
               full_name, phone, city, address, postal_code, created_at, updated_at
        FROM orders WHERE id = $1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := s.loadOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *PostgresStorage) ListOrdersByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	const q = `
        SELECT id, user_id, order_number, status, total_amount,
               full_name, phone, city, address, postal_code, created_at, updated_at
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := s.loadOrderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *PostgresStorage) ListAllOrders(ctx context.Context) ([]order.Order, error) {
	const q = `
        SELECT o.id, o.user_id, o.order_number, o.status, o.total_amount,
               o.full_name, o.phone, o.city, o.address, o.postal_code, o.created_at, o.updated_at,
               u.id, u.email, u.name
        FROM orders o
        JOIN users u ON u.id = o.user_id
        ORDER BY o.created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		var postal sql.NullString
		var u user.Summary
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Number, &o.Status, &o.TotalAmount,
			&o.FullName, &o.Phone, &o.City, &o.Address, &postal, &o.CreatedAt, &o.UpdatedAt,
			&u.ID, &u.Email, &u.Name,
		); err != nil {
			return nil, err
		}
		if postal.Valid {
			o.PostalCode = &postal.String
		}
		o.User = &u
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := s.loadOrderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// UpdateOrderStatus меняет статус заказа; при restock возвращает остатки
// по всем позициям в той же транзакции.
func (s *PostgresStorage) UpdateOrderStatus(ctx context.Context, orderID int64, status order.OrderStatus, updatedAt time.Time, restock bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if restock {
		const restoreStock = `
            UPDATE products p SET stock = p.stock + oi.quantity
            FROM order_items oi
            WHERE oi.order_id = $1 AND oi.product_id = p.id`
		if _, err := tx.ExecContext(ctx, restoreStock, orderID); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, updatedAt, orderID,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrOrderNotFound
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var postal sql.NullString
	err := row.Scan(
		&o.ID, &o.UserID, &o.Number, &o.Status, &o.TotalAmount,
		&o.FullName, &o.Phone, &o.City, &o.Address, &postal, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if postal.Valid {
		o.PostalCode = &postal.String
	}
	return &o, nil
}

func (s *PostgresStorage) loadOrderItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	// LEFT JOIN: товар мог быть удалён после оформления заказа.
	const q = `
        SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
               p.id, p.name, p.description, p.price, p.image_url, p.stock, p.created_at
        FROM order_items oi
        LEFT JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = $1
        ORDER BY oi.id`
	rows, err := s.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Item
	for rows.Next() {
		var it order.Item
		var pID sql.NullInt64
		var pName, pDesc, pImage sql.NullString
		var pPrice sql.NullFloat64
		var pStock sql.NullInt64
		var pCreated sql.NullTime
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price,
			&pID, &pName, &pDesc, &pPrice, &pImage, &pStock, &pCreated,
		); err != nil {
			return nil, err
		}
		if pID.Valid {
			it.Product = &product.Product{
				ID:          pID.Int64,
				Name:        pName.String,
				Description: pDesc.String,
				Price:       pPrice.Float64,
				ImageURL:    pImage.String,
				Stock:       int(pStock.Int64),
				CreatedAt:   pCreated.Time,
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
