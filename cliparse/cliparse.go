package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendSheets = "sheets"
	BackendSQL    = "sql"
)

type Config struct {
	Port          int
	Backend       string
	SpreadsheetID string
	DriveFolderID string
	DatabaseURL   string
	DatabaseType  string
	StationsFile  string
	TokenFile     string
	UploadDir     string
}

// ParseFlags validates flags and falls back to environment variables.
// A .env file in the working directory is loaded first, if present.
func ParseFlags(args []string) (Config, error) {
	// Missing .env is not an error; explicit env always wins over the file.
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("conteo", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.Backend, "backend", "", "Storage backend (sheets or sql)")
	fs.StringVar(&cfg.SpreadsheetID, "spreadsheet", "", "Google Sheets spreadsheet ID")
	fs.StringVar(&cfg.DriveFolderID, "drive-folder", "", "Google Drive folder for tally-sheet photos")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (sql backend)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.StationsFile, "stations", "", "Polling station CSV file")
	fs.StringVar(&cfg.TokenFile, "token-file", "", "Bearer token cache file")
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Photo upload directory (sql backend)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.Backend == "" {
		cfg.Backend = os.Getenv("STORE_BACKEND")
		if cfg.Backend == "" {
			cfg.Backend = BackendSheets
		}
	}
	if cfg.Backend != BackendSheets && cfg.Backend != BackendSQL {
		return Config{}, errors.New("backend must be sheets or sql")
	}

	if cfg.StationsFile == "" {
		cfg.StationsFile = os.Getenv("STATIONS_FILE")
	}
	if cfg.StationsFile == "" {
		return Config{}, errors.New("stations CSV required (use --stations or STATIONS_FILE env)")
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = os.Getenv("TOKEN_FILE")
		if cfg.TokenFile == "" {
			cfg.TokenFile = ".conteo-token"
		}
	}

	switch cfg.Backend {
	case BackendSheets:
		if cfg.SpreadsheetID == "" {
			cfg.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
		}
		if cfg.SpreadsheetID == "" {
			return Config{}, errors.New("SPREADSHEET_ID required for the sheets backend")
		}
		if cfg.DriveFolderID == "" {
			cfg.DriveFolderID = os.Getenv("DRIVE_FOLDER_ID")
		}
		if cfg.DriveFolderID == "" {
			return Config{}, errors.New("DRIVE_FOLDER_ID required for the sheets backend")
		}
	case BackendSQL:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		}
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
			if cfg.DatabaseType == "" {
				cfg.DatabaseType = "sqlite"
			}
		}
		if cfg.UploadDir == "" {
			cfg.UploadDir = os.Getenv("UPLOAD_DIR")
			if cfg.UploadDir == "" {
				cfg.UploadDir = "uploads"
			}
		}
	}

	return cfg, nil
}
