package initializers

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var DB *goqu.Database

// ConnectDB opens the hosted backend's Postgres database. DB_URL is the pooled
// connection string the hosting provider hands out for server-side clients.
func ConnectDB() {
	db, err := sql.Open("postgres", os.Getenv("DB_URL"))
	if err != nil {
		zap.S().Fatalf("failed to open database: %v", err)
	}

	// the hosted pooler drops idle connections after a few minutes
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		zap.S().Fatalf("failed to reach database: %v", err)
	}

	DB = goqu.New("postgres", db)
	zap.S().Info("database connected")
}
