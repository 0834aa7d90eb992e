package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"creditflow-backend/internal/domain/document"
	"creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/user"
)

type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpen:     30,
	MaxIdle:     10,
	MaxLifetime: 30 * time.Minute,
	MaxIdleTime: 10 * time.Minute,
}

// zapWriter routes gorm's SQL log through zap.
type zapWriter struct{ s *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...any) { w.s.Infof(format, args...) }

func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel) gormlogger.Interface {
	if zl == nil {
		return gormlogger.Discard
	}
	return gormlogger.New(zapWriter{s: zl.Named("gorm").Sugar()}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func OpenGorm(dsn string, zl *zap.Logger) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), zl, DefaultPool)
}

func OpenGormWithDialector(dial gorm.Dialector, zl *zap.Logger, pool PoolConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         NewGormLogger(zl, gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if zl != nil {
		zl.Info("gorm: connected")
	}
	return db, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.User{}, &loan.Loan{}, &document.GeneratedDocument{})
}
