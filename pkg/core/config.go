package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultConfigEnvironment = "development"
	defaultConfigPort        = 3000
	defaultSkipAuth          = true

	defaultOtelDisable          = false
	defaultOtelExporter         = "otlp"
	defaultOTLPExporterEndpoint = "localhost:4317"
	defaultOTLPInsecure         = false

	defaultCognitoRegion      = "us-east-1"
	defaultCognitoUserPoolID  = "UNSET"
	defaultCognitoAppClientID = "UNSET"

	defaultRedisAddr     = "localhost:6379"
	defaultRedisPassword = ""
	defaultRedisDB       = 0

	defaultCRMBaseURL        = "https://api.gohighlevel.com/v1/"
	defaultCRMAPIVersion     = "2021-07-28"
	defaultCRMStudentIDField = "student_id_"
	defaultCRMTimeout        = 10 * time.Second
)

func DefaultConfig() Config {
	return Config{
		Environment: defaultConfigEnvironment,
		Port:        defaultConfigPort,
		SkipAuth:    defaultSkipAuth,
		Otel: OtelConfig{
			Disable:  defaultOtelDisable,
			Exporter: defaultOtelExporter,
			OtlpExporter: OtlpConfig{
				Endpoint: defaultOTLPExporterEndpoint,
				Insecure: defaultOTLPInsecure,
			},
		},
		Cognito: CognitoConfig{
			Region:      defaultCognitoRegion,
			UserPoolID:  defaultCognitoUserPoolID,
			AppClientID: defaultCognitoAppClientID,
		},
		Redis: RedisConfig{
			Addr:     defaultRedisAddr,
			Password: defaultRedisPassword,
			DB:       defaultRedisDB,
		},
		CRM: CRMConfig{
			BaseURL:        defaultCRMBaseURL,
			APIVersion:     defaultCRMAPIVersion,
			StudentIDField: defaultCRMStudentIDField,
			Timeout:        defaultCRMTimeout,
		},
	}
}

func NewConfig(options ...func(*Config)) Config {
	config := DefaultConfig()
	for _, opt := range options {
		opt(&config)
	}
	return config
}

func NewConfigFromEnv(options ...func(*Config)) (Config, error) {
	config := DefaultConfig()
	err := errors.Join(
		setFromEnv(&config.Environment, "ENVIRONMENT"),
		setFromEnv(&config.Port, "PORT"),
		setFromEnv(&config.SkipAuth, "SKIP_AUTH"),
		setFromEnv(&config.Otel.Disable, "OTEL_DISABLE"),
		setFromEnv(&config.Otel.Exporter, "OTEL_EXPORTER"),
		setFromEnv(&config.Otel.OtlpExporter.Endpoint, "OTEL_OTLP_EXPORTER_ENDPOINT"),
		setFromEnv(&config.Otel.OtlpExporter.Insecure, "OTEL_OTLP_EXPORTER_INSECURE"),
		setFromEnv(&config.Cognito.Region, "COGNITO_REGION"),
		setFromEnv(&config.Cognito.UserPoolID, "COGNITO_USER_POOL_ID"),
		setFromEnv(&config.Cognito.AppClientID, "COGNITO_APP_CLIENT_ID"),
		setFromEnv(&config.Redis.Addr, "REDIS_ADDR"),
		setFromEnv(&config.Redis.Password, "REDIS_PASSWORD"),
		setFromEnv(&config.Redis.DB, "REDIS_DB"),
		setFromEnv(&config.CRM.BaseURL, "BASE_URL"),
		setFromEnv(&config.CRM.APIKey, "API_KEY"),
		setFromEnv(&config.CRM.LocationID, "LOCATION_ID"),
		setFromEnv(&config.CRM.APIVersion, "CRM_API_VERSION"),
		setFromEnv(&config.CRM.StudentIDField, "CRM_STUDENT_ID_FIELD"),
		setFromEnv(&config.CRM.Timeout, "CRM_TIMEOUT"),
	)

	for _, opt := range options {
		opt(&config)
	}

	return config, err
}

// Validate reports every setting the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.CRM.APIKey) == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if strings.TrimSpace(c.CRM.LocationID) == "" {
		errs = append(errs, errors.New("LOCATION_ID is required"))
	}
	if strings.TrimSpace(c.CRM.BaseURL) == "" {
		errs = append(errs, errors.New("BASE_URL is required"))
	}
	if strings.TrimSpace(c.CRM.StudentIDField) == "" {
		errs = append(errs, errors.New("CRM_STUDENT_ID_FIELD must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.Otel.Exporter != "otlp" && c.Otel.Exporter != "stdout" {
		errs = append(errs, fmt.Errorf("OTEL_EXPORTER must be otlp or stdout, got %q", c.Otel.Exporter))
	}

	return errors.Join(errs...)
}

func LoadEnv(environment ...string) error {
	filenames := []string{
		".env.local",
		".env",
	}

	env := getEnv("ENVIRONMENT", DefaultConfig().Environment)
	if len(environment) > 0 {
		env = environment[0]
	}

	if env != "" {
		file := ".env." + env + ".local"
		filenames = append([]string{file}, filenames...)
	}

	var errs error

	for _, filename := range filenames {
		err := loadEnvFile(filename)
		if err != nil {
			errs = errors.Join(
				errs,
				fmt.Errorf("error loading %s: %w", filename, err),
			)
		}
	}

	return errs
}
