package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"library-backend/internal/library/books"
	"library-backend/internal/library/loans"
	"library-backend/internal/library/students"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/docstore"
)

// schemas は永続化するコレクション。accounts はメモリ上のシードのみ
var schemas = []docstore.CollectionSpec{books.Schema, loans.Schema, students.Schema}

// openBackend connects to the store selected by store.driver.
func openBackend(ctx context.Context, cfg *config.Config) (docstore.Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Printf("[WARN] store.driver=memory, data is lost on restart")
		return docstore.NewMemoryBackend(), nil

	case config.DriverMongo:
		b, err := docstore.ConnectMongo(ctx, docstore.MongoOptions{
			URI:          cfg.Mongo.URI,
			Database:     cfg.Mongo.Database,
			Transactions: cfg.Mongo.Transactions,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] connected to MongoDB: %s", cfg.Mongo.Database)
		return b, nil

	case config.DriverMySQL:
		conn, err := db.ConnectMySQL(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)
		return sqlBackend(conn, docstore.FlavorMySQL)

	case config.DriverPostgres:
		conn, err := db.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		log.Printf("[INFO] connected to PostgreSQL")
		return sqlBackend(conn, docstore.FlavorPostgres)
	}
	return nil, fmt.Errorf("unknown store.driver %q", cfg.Store.Driver)
}

func sqlBackend(conn *sqlx.DB, flavor string) (docstore.Backend, error) {
	b, err := docstore.NewSQLBackend(conn, flavor)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return b, nil
}
