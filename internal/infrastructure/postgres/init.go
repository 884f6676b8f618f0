package postgres

import (
	"github.com/LavaJover/shvark-binary-engine/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MustInitDB opens the pool; the schema comes from the SQL migrations, not AutoMigrate.
func MustInitDB(cfg *config.EngineConfig, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.EngineDB.Dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// every write path already runs inside Store.InTx
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatal("failed to init db", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.EngineDB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.EngineDB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.EngineDB.ConnMaxLifetime)

	return db
}
