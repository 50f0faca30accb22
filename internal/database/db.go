package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%s", host, port)
	cfg.DBName = name
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// schema holds one statement per table.  MySQL does not accept several
// statements in one Exec unless multiStatements is enabled, so they are
// executed one by one.
var schema = []string{
	"CREATE TABLE IF NOT EXISTS `user` (\n" +
		"  email VARCHAR(255) NOT NULL PRIMARY KEY,\n" +
		"  name  VARCHAR(255) NOT NULL DEFAULT ''\n" +
		") ENGINE=InnoDB",
	`CREATE TABLE IF NOT EXISTS game (
  id               VARCHAR(64)  NOT NULL PRIMARY KEY,
  opponent         VARCHAR(255) NOT NULL,
  opponent_img_url VARCHAR(1024) NOT NULL DEFAULT '',
  year             SMALLINT UNSIGNED NOT NULL,
  month            TINYINT UNSIGNED NOT NULL,
  day              TINYINT UNSIGNED NOT NULL,
  hour             TINYINT UNSIGNED NULL,
  minute           TINYINT UNSIGNED NULL,
  platinum_count   INT UNSIGNED NOT NULL DEFAULT 0,
  gold_count       INT UNSIGNED NOT NULL DEFAULT 0,
  silver_count     INT UNSIGNED NOT NULL DEFAULT 0,
  bronze_count     INT UNSIGNED NOT NULL DEFAULT 0,
  platinum_price   INT UNSIGNED NOT NULL DEFAULT 0,
  gold_price       INT UNSIGNED NOT NULL DEFAULT 0,
  silver_price     INT UNSIGNED NOT NULL DEFAULT 0,
  bronze_price     INT UNSIGNED NOT NULL DEFAULT 0
) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS purchase (
  id          VARCHAR(32)  NOT NULL PRIMARY KEY,
  game_id     VARCHAR(64)  NOT NULL,
  user_email  VARCHAR(255) NOT NULL,
  is_valid    BOOLEAN      NOT NULL DEFAULT TRUE,
  refund_memo TEXT         NULL,
  platinum    INT UNSIGNED NOT NULL DEFAULT 0,
  gold        INT UNSIGNED NOT NULL DEFAULT 0,
  silver      INT UNSIGNED NOT NULL DEFAULT 0,
  bronze      INT UNSIGNED NOT NULL DEFAULT 0,
  supersedes  VARCHAR(32)  NULL,
  created_at  DATETIME(6)  NOT NULL,
  KEY idx_purchase_game_valid (game_id, is_valid),
  KEY idx_purchase_user_valid (user_email, is_valid),
  CONSTRAINT fk_purchase_game FOREIGN KEY (game_id) REFERENCES game (id)
) ENGINE=InnoDB`,
}

// EnsureSchema creates the booking tables when they do not exist yet.  It is
// safe to call on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
