package database

import (
	"context"
	"fmt"
)

// Table layout shared by every dialect:
//
//	Users(user_id PK, user_name UNIQUE)
//	Products(product_id PK, product_name, actual_price, discounted_price,
//	         discount_percentage, rating, rating_count, about_product)
//	Categories(category_id PK, category_name UNIQUE)
//	CategoryAssignments(product_id, category_id) PK(product_id, category_id)
//	Reviews(review_id PK, product_id, user_id, review_title, review_content, sentiment)
//
// Reviews carries no foreign keys: product and user existence is checked at
// insert time only.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		user_id   VARCHAR(128) NOT NULL PRIMARY KEY,
		user_name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_users_user_name (user_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS Products (
		product_id          VARCHAR(32)   NOT NULL PRIMARY KEY,
		product_name        VARCHAR(1024) NOT NULL,
		actual_price        DECIMAL(12,2) NULL,
		discounted_price    DECIMAL(12,2) NULL,
		discount_percentage DECIMAL(5,2)  NULL,
		rating              DECIMAL(3,1)  NULL,
		rating_count        INT           NOT NULL DEFAULT 0,
		about_product       TEXT          NULL,
		KEY idx_products_discounted_price (discounted_price)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS Categories (
		category_id   INT          NOT NULL PRIMARY KEY,
		category_name VARCHAR(255) NOT NULL,
		UNIQUE KEY uq_categories_name (category_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS CategoryAssignments (
		product_id  VARCHAR(32) NOT NULL,
		category_id INT         NOT NULL,
		PRIMARY KEY (product_id, category_id),
		KEY idx_ca_category (category_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS Reviews (
		review_id      VARCHAR(128) NOT NULL PRIMARY KEY,
		product_id     VARCHAR(32)  NOT NULL,
		user_id        VARCHAR(128) NOT NULL,
		review_title   TEXT         NULL,
		review_content TEXT         NULL,
		sentiment      VARCHAR(16)  NULL,
		KEY idx_reviews_user (user_id),
		KEY idx_reviews_product (product_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		user_id   TEXT NOT NULL PRIMARY KEY,
		user_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS Products (
		product_id          TEXT          NOT NULL PRIMARY KEY,
		product_name        TEXT          NOT NULL,
		actual_price        NUMERIC(12,2),
		discounted_price    NUMERIC(12,2),
		discount_percentage NUMERIC(5,2),
		rating              NUMERIC(3,1),
		rating_count        INTEGER       NOT NULL DEFAULT 0,
		about_product       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS Categories (
		category_id   INTEGER NOT NULL PRIMARY KEY,
		category_name TEXT    NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS CategoryAssignments (
		product_id  TEXT    NOT NULL,
		category_id INTEGER NOT NULL,
		PRIMARY KEY (product_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Reviews (
		review_id      TEXT NOT NULL PRIMARY KEY,
		product_id     TEXT NOT NULL,
		user_id        TEXT NOT NULL,
		review_title   TEXT,
		review_content TEXT,
		sentiment      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON Reviews (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_product ON Reviews (product_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS Users (
		user_id   TEXT NOT NULL PRIMARY KEY,
		user_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS Products (
		product_id          TEXT    NOT NULL PRIMARY KEY,
		product_name        TEXT    NOT NULL,
		actual_price        NUMERIC,
		discounted_price    NUMERIC,
		discount_percentage NUMERIC,
		rating              REAL,
		rating_count        INTEGER NOT NULL DEFAULT 0,
		about_product       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS Categories (
		category_id   INTEGER NOT NULL PRIMARY KEY,
		category_name TEXT    NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS CategoryAssignments (
		product_id  TEXT    NOT NULL,
		category_id INTEGER NOT NULL,
		PRIMARY KEY (product_id, category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS Reviews (
		review_id      TEXT NOT NULL PRIMARY KEY,
		product_id     TEXT NOT NULL,
		user_id        TEXT NOT NULL,
		review_title   TEXT,
		review_content TEXT,
		sentiment      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON Reviews (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_product ON Reviews (product_id)`,
}

// Schema returns the DDL statements for a dialect, one statement each.
func Schema(d Dialect) ([]string, error) {
	switch d {
	case MySQL:
		return mysqlSchema, nil
	case Postgres:
		return postgresSchema, nil
	case SQLite:
		return sqliteSchema, nil
	}
	return nil, fmt.Errorf("no schema for dialect %q", d)
}

// Migrate creates any missing tables.  It is safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	stmts, err := Schema(db.Dialect)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
