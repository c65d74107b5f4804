package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"odyssee/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (stock/markets)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Clients
CREATE TABLE IF NOT EXISTS clients(
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  birth_date TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  allergies TEXT NOT NULL DEFAULT '',
  newsletter INTEGER NOT NULL DEFAULT 0,
  vip INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(LOWER(last_name), LOWER(first_name));

-- Children, for birthday tracking
CREATE TABLE IF NOT EXISTS children(
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  first_name TEXT NOT NULL,
  birth_date TEXT NOT NULL DEFAULT '',
  allergies TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_children_client ON children(client_id);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL REFERENCES clients(id) ON DELETE RESTRICT,
  ordered_at TEXT DEFAULT CURRENT_TIMESTAMP,
  delivery_date TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending'
    CHECK (status IN ('pending','confirmed','preparing','ready','delivered','cancelled')),
  total NUMERIC NOT NULL CHECK (total >= 0),
  kind TEXT NOT NULL DEFAULT 'standard',
  event_type TEXT NOT NULL DEFAULT '',
  guest_count INTEGER NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL DEFAULT 'pending'
    CHECK (payment_status IN ('pending','partial','paid','refunded')),
  deposit NUMERIC NOT NULL DEFAULT 0,
  instructions TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);

CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL DEFAULT 0,
  allergens TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

-- Stock
CREATE TABLE IF NOT EXISTS stock_items(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  unit TEXT NOT NULL DEFAULT 'piece',
  fridge TEXT NOT NULL DEFAULT '',
  unit_price NUMERIC NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_stock_fridge ON stock_items(fridge, name);

-- Markets
CREATE TABLE IF NOT EXISTS markets(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'upcoming'
    CHECK (status IN ('upcoming','ongoing','finished','cancelled')),
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_markets_start ON markets(start_date);

-- Market sales; immutable once written
CREATE TABLE IF NOT EXISTS market_sales(
  id TEXT PRIMARY KEY,
  market_id TEXT NOT NULL REFERENCES markets(id) ON DELETE CASCADE,
  sold_at TEXT DEFAULT CURRENT_TIMESTAMP,
  total NUMERIC NOT NULL CHECK (total > 0),
  status TEXT NOT NULL CHECK (status IN ('declared','undeclared'))
);
CREATE INDEX IF NOT EXISTS idx_market_sales_market ON market_sales(market_id);

-- Sale lines carry allocated amounts; stock_id is '' for free-text products
CREATE TABLE IF NOT EXISTS sale_lines(
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL REFERENCES market_sales(id) ON DELETE CASCADE,
  stock_id TEXT NOT NULL DEFAULT '',
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL DEFAULT 0,
  amount NUMERIC NOT NULL CHECK (amount >= 0)
);
CREATE INDEX IF NOT EXISTS idx_sale_lines_sale ON sale_lines(sale_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('STAFF','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM stock_items`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting baseline stock/markets")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO stock_items(id,name,quantity,unit,fridge,unit_price) VALUES
	  ('stk-cannele','Cannelé bordelais',40,'piece','Frigo 1',2.50),
	  ('stk-tarte-citron','Tarte au citron meringuée',6,'part','Frigo 1',4.00),
	  ('stk-flan','Flan pâtissier',8,'part','Frigo 2',3.50),
	  ('stk-cookie','Cookie chocolat noisette',25,'piece','Frigo 2',2.00)`)

	tx.MustExec(`INSERT INTO markets(id,name,location,start_date,end_date,status) VALUES
	  ('mkt-demo','Marché de Noël','Place du Capitole, Toulouse','2025-12-20','2025-12-24','upcoming')`)

	return tx.Commit()
}

// seedUsers ensures one STAFF account and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-marie", "marie@odyssee-sucree.test", "Marie", domain.RoleStaff, "Passw0rd!"),
		mk("u-admin", "admin@odyssee-sucree.test", "Admin", domain.RoleAdmin, "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
