package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./reading-tracker.db"

	// DefaultTasksDatabasePath is where the background task queue keeps its state
	DefaultTasksDatabasePath = "./reading-tracker-tasks.db"
)
