package configuration

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	Properties struct {
		ServiceName string `env:"SERVICE_NAME" envDefault:"photo-gallery-backend"`
		LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
		LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

		Auth   AuthProperties       `envPrefix:"AUTH_"`
		S3     S3Properties         `envPrefix:"S3_"`
		Server HttpServerProperties `envPrefix:"HTTP_"`
	}

	AuthProperties struct {
		// Mode selects the identity verifier: "oidc" or "jwt".
		Mode              string `env:"MODE" envDefault:"oidc"`
		Issuer            string `env:"ISSUER"`
		ClientID          string `env:"CLIENT_ID"`
		SkipClientIDCheck bool   `env:"SKIP_CLIENT_ID_CHECK" envDefault:"false"`
		UserInfoFallback  bool   `env:"USERINFO_FALLBACK" envDefault:"false"`
		JWTSecret         string `env:"JWT_SECRET"`
	}

	HttpServerProperties struct {
		Port            string        `env:"PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
		AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://gallery-personal.vercel.app,http://localhost:5000,http://localhost:3000,http://127.0.0.1:5000,http://127.0.0.1:3000"`
		Pprof           bool          `env:"PPROF" envDefault:"false"`
		ReleaseMode     bool          `env:"RELEASE_MODE" envDefault:"true"`
	}

	S3Properties struct {
		// Driver selects the object store backend: "minio", "aws" or "memory".
		Driver    string `env:"DRIVER" envDefault:"minio"`
		Host      string `env:"HOST" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET"`
		Region    string `env:"REGION" envDefault:"us-east-1"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
		PathStyle bool   `env:"PATH_STYLE" envDefault:"true"`
	}
)

// Parse reads the properties from the environment and validates them.
func Parse() (*Properties, error) {
	config := &Properties{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ReadProperties is Parse for process start-up: a broken environment is fatal.
func ReadProperties() *Properties {
	config, err := Parse()
	if err != nil {
		panic(err)
	}
	return config
}

func (p *Properties) Validate() error {
	switch p.S3.Driver {
	case "minio", "aws":
		if p.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set for driver %q", p.S3.Driver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown S3_DRIVER %q", p.S3.Driver)
	}

	switch p.Auth.Mode {
	case "oidc":
		if p.Auth.Issuer == "" {
			return fmt.Errorf("AUTH_ISSUER must be set for oidc mode")
		}
		if p.Auth.ClientID == "" && !p.Auth.SkipClientIDCheck {
			return fmt.Errorf("AUTH_CLIENT_ID must be set unless AUTH_SKIP_CLIENT_ID_CHECK is true")
		}
	case "jwt":
		if p.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET must be set for jwt mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", p.Auth.Mode)
	}
	return nil
}
