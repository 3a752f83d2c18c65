package db

import (
	"context"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lendmatch/internal/domain/borrower"
	"lendmatch/internal/domain/lender"
	"lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/domain/notification"
)

type Option func(*gorm.Config)

// WithLogLevel maps the service log level onto gorm's SQL logger.
func WithLogLevel(level string) Option {
	return func(c *gorm.Config) {
		l := logger.Warn
		switch level {
		case "debug":
			l = logger.Info
		case "error":
			l = logger.Error
		}
		c.Logger = logger.Default.LogMode(l)
	}
}

func OpenGorm(dsn string, opts ...Option) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opts...)
}

// OpenGormWithDialector opens, tunes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	}
	for _, o := range opts {
		o(cfg)
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Models lists every table the engine reads or writes.
func Models() []any {
	return []any{
		&loan.Loan{},
		&loan.Schedule{},
		&borrower.Profile{},
		&lender.Preference{},
		&lender.TierPolicy{},
		&lender.LoanTypeSupport{},
		&match.Record{},
		&notification.Contact{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Probe adapts a gorm handle to the health check.
type Probe struct{ db *gorm.DB }

func NewProbe(db *gorm.DB) *Probe { return &Probe{db: db} }

func (p *Probe) Name() string { return "database" }

func (p *Probe) Check(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
