package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JoinTable declares a many-to-many relation backed by an explicit join
// model.
type JoinTable struct {
	Model interface{}
	Field string
	Join  interface{}
}

// Schema is the full set of tables and relations the store manages.
type Schema struct {
	Models     []interface{}
	JoinTables []JoinTable
}

// DefaultSchema returns the application schema.
func DefaultSchema() Schema {
	return Schema{
		Models: []interface{}{
			&models.User{},
			&models.Project{},
			&models.ProjectMember{},
			&models.Task{},
			&models.RevokedToken{},
		},
		JoinTables: []JoinTable{
			{Model: &models.Project{}, Field: "Members", Join: &models.ProjectMember{}},
		},
	}
}

// Dialector picks the gorm driver for the configured database.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// NewLogger logs slow queries and failures to w. Lookups that find nothing
// are expected and stay quiet.
func NewLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Connect opens the database and prepares the schema's join tables.
func Connect(driver, dsn string, schema Schema) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)

	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)),
		// Owners and assignees may outlive their users, so references are
		// not enforced by the database.
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	for _, jt := range schema.JoinTables {
		if err := conn.SetupJoinTable(jt.Model, jt.Field, jt.Join); err != nil {
			return nil, fmt.Errorf("setup join table %s: %w", jt.Field, err)
		}
	}

	return conn, nil
}

// Migrate creates or updates every table in the schema.
func Migrate(conn *gorm.DB, schema Schema) error {
	for _, model := range schema.Models {
		if err := conn.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	log.Printf("Database migrated (%d tables)", len(schema.Models))

	return nil
}
