package core

import "time"

type Config struct {
	Cognito     CognitoConfig
	Environment string
	Otel        OtelConfig
	Port        int
	SkipAuth    bool
	Redis       RedisConfig
	CRM         CRMConfig
}

type OtlpConfig struct {
	Endpoint string
	Insecure bool
}

type OtelConfig struct {
	OtlpExporter OtlpConfig
	// "otlp" ships to a collector over gRPC, "stdout" prints locally.
	Exporter string
	Disable  bool
}

type CognitoConfig struct {
	Region      string
	UserPoolID  string
	AppClientID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CRMConfig struct {
	// Root of the CRM REST API, e.g. "https://api.gohighlevel.com/v1/"
	BaseURL string
	// Bearer token. Never defaulted.
	APIKey string
	// Tenant scope every contact query is bound to. Never defaulted.
	LocationID string
	// Sent as the "Version" header on every request.
	APIVersion string
	// Custom field holding the institution's student identifier.
	StudentIDField string
	// Upper bound for a single CRM call.
	Timeout time.Duration
}
