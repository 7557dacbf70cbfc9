package models

import (
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// MigrateTable runs schema migrations for the master-data tables.
// A redis lock keeps concurrently starting replicas from racing the DDL;
// the lock is best effort - reliability must not depend on redis, Postgres
// DDL here is idempotent (IF NOT EXISTS / AutoMigrate).
func MigrateTable() {
	logger := config.GetLogger()
	db := config.GetDB()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(config.GetRedisContext(), "master_data:migrate", 2*time.Minute, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(2*time.Second), 30),
		})
		if err == nil {
			defer lock.Release(config.GetRedisContext())
		} else {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("could not obtain migration lock, proceeding: " + err.Error())
		}
	}

	// pg_trgm provides the similarity() ranking used by the recommend endpoints.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Panic("failed to create pg_trgm extension: " + err.Error())
	}

	if err := db.AutoMigrate(
		&Organization{},
		&Product{},
	); err != nil {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Panic("failed to migrate master-data tables: " + err.Error())
	}

	trigramIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_organizations_name_trgm ON organizations USING gin (name gin_trgm_ops)",
		"CREATE INDEX IF NOT EXISTS idx_organizations_address_trgm ON organizations USING gin (address gin_trgm_ops)",
		"CREATE INDEX IF NOT EXISTS idx_products_item_name_trgm ON products USING gin (item_name gin_trgm_ops)",
	}
	for _, ddl := range trigramIndexes {
		if err := db.Exec(ddl).Error; err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic("failed to create trigram index: " + err.Error())
		}
	}
}
