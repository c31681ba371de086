package repository

import (
	"fmt"

	"github.com/rs/zerolog/log"
	ora "github.com/sijms/go-ora/v2"
	"github.com/tuncerburak97/apistats/internal/config"
	"github.com/tuncerburak97/apistats/internal/repository/couchbase"
	"github.com/tuncerburak97/apistats/internal/repository/mongo"
	"github.com/tuncerburak97/apistats/internal/repository/oracle"
	"github.com/tuncerburak97/apistats/internal/repository/postgres"
)

// NewRepository builds the store-specific repository selected by config.
func NewRepository(cfg *config.DBConfig) (CallRepository, error) {
	log.Info().
		Str("type", cfg.Type).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Connecting to database")

	switch cfg.Type {
	case "postgres":
		connStr := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?pool_max_conns=%d&pool_min_conns=%d",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
			cfg.Pool.MaxConns, cfg.Pool.MinConns,
		)
		return postgres.NewPostgresRepository(connStr)

	case "oracle":
		connStr := ora.BuildUrl(cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, nil)
		return oracle.NewOracleRepository(connStr)

	case "mongodb":
		uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.User, cfg.Password, cfg.Host, cfg.Port)
		return mongo.NewMongoRepository(uri, cfg.Database)

	case "couchbase":
		connStr := fmt.Sprintf("couchbase://%s:%d", cfg.Host, cfg.Port)
		return couchbase.NewCouchbaseRepository(connStr, cfg.Database, cfg.User, cfg.Password)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
