package db

import (
	"fmt"
	"time"

	"agora/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Logger       gormlogger.Interface
	NowFunc      func() time.Time
	MaxOpenConns int
	MaxIdleConns int
}

// Now is the store clock. Every created_at is stamped with it at insert time,
// truncated to the microsecond precision postgres keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Open connects to the configured database and applies the schema.
func Open(driver, dsn string, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	nowFunc := opts.NowFunc
	if nowFunc == nil {
		nowFunc = Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		NowFunc:        nowFunc,
		Logger:         logger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates the tables and the constraints gorm tags cannot express.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Partial unique indexes: one like per (user, post) and one per
	// (user, comment). Both postgres and sqlite accept this form.
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_post ON likes (user_id, post_id) WHERE post_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_comment ON likes (user_id, comment_id) WHERE comment_id IS NOT NULL`,
	}
	for _, stmt := range statements {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create like indexes: %w", err)
		}
	}
	return nil
}

// Ping checks connectivity for the health endpoint.
func Ping(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
