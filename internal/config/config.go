// Package config assembles the read-only application configuration from
// command line flags, environment variables, an optional JSON config file
// and built-in defaults, in that order of priority. The resulting Config
// is constructed once and passed into the components that need it.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting the application needs.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-"`

	// JWTSecret signs the issued access tokens. There is no default on
	// purpose: the secret must come from process configuration.
	JWTSecret      string        `env:"JWT_SECRET" json:"jwt_secret" validate:"required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" json:"-" validate:"gt=0"`

	TrustedSubnet string `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`

	// Argon2id parameters. Fixed by configuration, never user-supplied.
	HashMemory      uint32 `env:"HASH_MEMORY" json:"hash_memory" validate:"gt=0"`
	HashIterations  uint32 `env:"HASH_ITERATIONS" json:"hash_iterations" validate:"gt=0"`
	HashParallelism uint8  `env:"HASH_PARALLELISM" json:"hash_parallelism" validate:"gt=0"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	MigrationsDir:       "migrations",
	DBConnectionTimeout: 10 * time.Second,
	AccessTokenTTL:      10 * time.Minute,
	HashMemory:          64 * 1024,
	HashIterations:      3,
	HashParallelism:     4,
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validate(values *Config) error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := validate.RegisterValidation("filepath", validateFilePath); err != nil {
		return err
	}

	return validate.Struct(values)
}

func applyDefaults(values *Config, defaults Config) {
	merge(values, &defaults)
}

// merge copies every non-zero field of src over dst.
func merge(dst, src *Config) {
	if src.RunAddr != "" {
		dst.RunAddr = src.RunAddr
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.DatabaseDSN != "" {
		dst.DatabaseDSN = src.DatabaseDSN
	}
	if src.DBFileName != "" {
		dst.DBFileName = src.DBFileName
	}
	if src.MigrationsDir != "" {
		dst.MigrationsDir = src.MigrationsDir
	}
	if src.DBConnectionTimeout != 0 {
		dst.DBConnectionTimeout = src.DBConnectionTimeout
	}
	if src.JWTSecret != "" {
		dst.JWTSecret = src.JWTSecret
	}
	if src.AccessTokenTTL != 0 {
		dst.AccessTokenTTL = src.AccessTokenTTL
	}
	if src.TrustedSubnet != "" {
		dst.TrustedSubnet = src.TrustedSubnet
	}
	if src.HashMemory != 0 {
		dst.HashMemory = src.HashMemory
	}
	if src.HashIterations != 0 {
		dst.HashIterations = src.HashIterations
	}
	if src.HashParallelism != 0 {
		dst.HashParallelism = src.HashParallelism
	}
}

func applyJSONFile(values *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var valuesFromJSON Config
	if err := json.Unmarshal(data, &valuesFromJSON); err != nil {
		return err
	}

	merge(values, &valuesFromJSON)

	return nil
}

// configFilePath resolves the JSON config file location from the CONFIG
// environment variable or the -c command line argument. The flag is
// pre-scanned here because the file must be read before regular flag
// parsing overlays its values.
func configFilePath(args []string) string {
	if path := os.Getenv("CONFIG"); path != "" {
		return path
	}
	for i, arg := range args {
		if (arg == "-c" || arg == "-config") && i+1 < len(args) {
			return args[i+1]
		}
	}

	return ""
}

func parseFlags(values *Config, args []string) error {
	flags := flag.NewFlagSet("bookmarkapi", flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
	flags.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
	flags.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
	flags.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with the goose migrations")
	flags.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "trusted subnet (CIDR) for the internal stats endpoint")
	flags.String("c", "", "path to a JSON config file")

	return flags.Parse(args)
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command line parsing, which is useful in
// tests where os.Args carries the test binary's own flags.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds and validates the configuration. Sources are applied in the
// order defaults, JSON config file, environment, command line flags, so the
// later ones win.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if path := configFilePath(os.Args[1:]); path != "" {
		if err := applyJSONFile(values, path); err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}
	merge(values, &valuesFromEnv)

	if !options.disableFlagsParsing {
		if err := parseFlags(values, os.Args[1:]); err != nil {
			return nil, err
		}
	}

	if err := validate(values); err != nil {
		return nil, err
	}

	return values, nil
}
