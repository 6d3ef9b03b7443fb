package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/inkwell-edu/inkwell-backend/internal/platform/envutil"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the configured database. DB_DRIVER selects postgres
// (default) or sqlite for local development; sqlite serializes writers
// itself, so the postgres-only row locks degrade safely there.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	driver := envutil.Get("DB_DRIVER", "postgres")

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		host := envutil.Get("POSTGRES_HOST", "localhost")
		port := envutil.Get("POSTGRES_PORT", "5432")
		user := envutil.Get("POSTGRES_USER", "postgres")
		password := envutil.Get("POSTGRES_PASSWORD", "")
		name := envutil.Get("POSTGRES_NAME", "inkwell")
		sslMode := envutil.Get("POSTGRES_SSLMODE", "disable")

		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, name, sslMode,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		path := envutil.Get("SQLITE_PATH", "inkwell.db")
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	serviceLog.Info("Database connected", "driver", driver)
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }
