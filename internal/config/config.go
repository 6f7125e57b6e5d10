package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds everything one generator run needs: input file paths,
// search parameters and logging.
type Config struct {
	Env string

	Files  FilesConfig
	Search SearchConfig
	Log    LogConfig
}

// FilesConfig names the snapshot inputs and export targets.
type FilesConfig struct {
	CoursesFile     string
	EnrollmentsFile string
	RoomsFile       string
	SlotsFile       string
	TeachersFile    string
	PinsFile        string
	ExportFile      string
	ExportXLSXFile  string
	Delimiter       string
}

// SearchConfig tunes the constrained scheduler.
type SearchConfig struct {
	MinBreakSlots int
	MaxSteps      int64
	Timeout       time.Duration
	Parallel      bool
}

type LogConfig struct {
	Level  string
	Format string
}

// Delim returns the CSV delimiter as a rune, defaulting to semicolon.
func (f FilesConfig) Delim() rune {
	if f.Delimiter == "" {
		return ';'
	}
	return []rune(f.Delimiter)[0]
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.Files = FilesConfig{
		CoursesFile:     v.GetString("COURSES_FILE"),
		EnrollmentsFile: v.GetString("ENROLLMENTS_FILE"),
		RoomsFile:       v.GetString("ROOMS_FILE"),
		SlotsFile:       v.GetString("SLOTS_FILE"),
		TeachersFile:    v.GetString("TEACHERS_FILE"),
		PinsFile:        v.GetString("PINS_FILE"),
		ExportFile:      v.GetString("EXPORT_FILE"),
		ExportXLSXFile:  v.GetString("EXPORT_XLSX_FILE"),
		Delimiter:       v.GetString("CSV_DELIMITER"),
	}

	cfg.Search = SearchConfig{
		MinBreakSlots: v.GetInt("MIN_BREAK_SLOTS"),
		MaxSteps:      v.GetInt64("MAX_STEPS"),
		Timeout:       parseDuration(v.GetString("SEARCH_TIMEOUT"), 30*time.Second),
		Parallel:      v.GetBool("PARALLEL_COMPONENTS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("COURSES_FILE", "./res/courses.csv")
	v.SetDefault("ENROLLMENTS_FILE", "./res/enrollments.csv")
	v.SetDefault("ROOMS_FILE", "./res/rooms.csv")
	v.SetDefault("SLOTS_FILE", "./res/slots.csv")
	v.SetDefault("TEACHERS_FILE", "./res/teachers.csv")
	v.SetDefault("PINS_FILE", "./res/pins.csv")
	v.SetDefault("EXPORT_FILE", "datesheet.csv")
	v.SetDefault("EXPORT_XLSX_FILE", "datesheet.xlsx")
	v.SetDefault("CSV_DELIMITER", ";")
	v.SetDefault("MIN_BREAK_SLOTS", 1)
	v.SetDefault("MAX_STEPS", 2_000_000)
	v.SetDefault("SEARCH_TIMEOUT", "30s")
	v.SetDefault("PARALLEL_COMPONENTS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
