// Package database provides connection setup for the entity store.
//
// # Architecture
//
//	database/
//	├── database.go   # Driver selection, migrations, default user seeding
//	├── audit/        # Audit event persistence
//	└── users/        # User and API token lookups
//
// Library data (books, categories, sessions, highlights, challenges) is read
// and written by the library and sessions packages directly through gorm,
// because import and session changes must share one transaction.
//
// # Drivers
//
// SQLite is the default and is opened with foreign keys enabled, so deleting
// a user cascades to everything the user owns. MySQL is selected with
// DATABASE_DRIVER=mysql.
//
//	db, err := database.NewDatabase(cfg.Database, log)
//	usersRepo := users.NewRepository(db.DB)
package database
