package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

const testSecret = "this_is_a_test_secret_key_with_32_chars_minimum"

func TestLoadConfig(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("JWT_SECRET_KEY", testSecret)
	defer os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverPostgres)
	}
	if cfg.DBPassword != "test_password" {
		t.Errorf("DBPassword = %q, want %q", cfg.DBPassword, "test_password")
	}
	if cfg.StatusMessageTTL != 12*time.Hour {
		t.Errorf("StatusMessageTTL = %v, want 12h", cfg.StatusMessageTTL)
	}
	if cfg.SweepSchedule != "@every 15m" {
		t.Errorf("SweepSchedule = %q", cfg.SweepSchedule)
	}
	if cfg.DefaultRequestMessage != "Hi! Let's be friends on Hanglight!" {
		t.Errorf("DefaultRequestMessage = %q", cfg.DefaultRequestMessage)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_DRIVER", "SQLite")
	os.Setenv("DB_PATH", "/tmp/hanglight.db")
	os.Setenv("JWT_SECRET_KEY", testSecret)
	os.Setenv("STATUS_MESSAGE_TTL", "6h")
	os.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	defer os.Clearenv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.StatusMessageTTL != 6*time.Hour {
		t.Errorf("StatusMessageTTL = %v, want 6h", cfg.StatusMessageTTL)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing DB_PASSWORD",
			envVars: map[string]string{
				"JWT_SECRET_KEY": testSecret,
			},
		},
		{
			name: "Missing JWT_SECRET_KEY",
			envVars: map[string]string{
				"DB_PASSWORD": "password",
			},
		},
		{
			name: "Unknown driver",
			envVars: map[string]string{
				"DB_DRIVER":      "oracle",
				"DB_PASSWORD":    "password",
				"JWT_SECRET_KEY": testSecret,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			defer os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Error("LoadConfig() expected error for missing required field, got nil")
			}
		})
	}
}

func TestValidate_JWTSecretTooShort(t *testing.T) {
	cfg := &Config{
		DBDriver:         DriverPostgres,
		DBPassword:       "password",
		JWTSecret:        "short",
		StatusMessageTTL: time.Hour,
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for short JWT secret, got nil")
	}
}

func TestValidateProductionSecurity(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "Valid production config",
			cfg: &Config{
				AppEnv:             "production",
				DBDriver:           DriverPostgres,
				DBSSLMode:          "require",
				JWTSecret:          "production_secret_key_different_from_default",
				CORSAllowedOrigins: []string{"https://hanglight.app"},
			},
			shouldErr: false,
		},
		{
			name: "Development mode - no validation",
			cfg: &Config{
				AppEnv:    "development",
				DBDriver:  DriverSQLite,
				DBSSLMode: "disable",
			},
			shouldErr: false,
		},
		{
			name: "Production without SSL",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverPostgres,
				DBSSLMode: "disable",
				JWTSecret: "production_secret",
			},
			shouldErr: true,
		},
		{
			name: "Production on sqlite",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverSQLite,
				DBSSLMode: "require",
				JWTSecret: "production_secret",
			},
			shouldErr: true,
		},
		{
			name: "Production with default JWT secret",
			cfg: &Config{
				AppEnv:    "production",
				DBDriver:  DriverPostgres,
				DBSSLMode: "require",
				JWTSecret: defaultJWTSecret,
			},
			shouldErr: true,
		},
		{
			name: "Production with wildcard CORS",
			cfg: &Config{
				AppEnv:             "production",
				DBDriver:           DriverPostgres,
				DBSSLMode:          "require",
				JWTSecret:          "production_secret_key_different_from_default",
				CORSAllowedOrigins: []string{"*"},
			},
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateProductionSecurity()
			if tt.shouldErr && err == nil {
				t.Error("ValidateProductionSecurity() expected error, got nil")
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("ValidateProductionSecurity() unexpected error = %v", err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "testuser",
		DBPassword: "testpass",
		DBName:     "testdb",
		DBSSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.GetDSN(); dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}
