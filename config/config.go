package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	GinPort                string `config:"PORT"`
	LogLevel               string `config:"LOG_LEVEL"`
	PVEHost                string `config:"PVE_HOST"`
	PVEPort                int    `config:"PVE_PORT"`
	PVEUser                string `config:"PVE_USER"`
	PVERealm               string `config:"PVE_REALM"`
	PVEPassword            string `config:"PVE_PASSWORD"`
	PVEVerifyTLS           bool   `config:"PVE_VERIFY_TLS"`
	PVETimeoutSeconds      int    `config:"PVE_TIMEOUT_SECONDS"`
	DBDriver               string `config:"DB_DRIVER"`
	DBPath                 string `config:"DB_PATH"`
	DBName                 string `config:"POSTGRES_NAME"`
	DBHost                 string `config:"POSTGRES_HOST"`
	DBPort                 string `config:"POSTGRES_PORT"`
	DBUser                 string `config:"POSTGRES_USER"`
	DBPassword             string `config:"POSTGRES_PWD"`
	LegacyFoldersFile      string `config:"LEGACY_FOLDERS_FILE"`
	MQTTBroker             string `config:"MQTT_BROKER"`
	MQTTTopic              string `config:"MQTT_TOPIC"`
	MQTTUser               string `config:"MQTT_USER"`
	MQTTPassword           string `config:"MQTT_PASSWORD"`
	RefreshIntervalSeconds int    `config:"REFRESH_INTERVAL_SECONDS"`
}

// Timeout is the per-request deadline applied to Proxmox API calls.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.PVETimeoutSeconds) * time.Second
}

// RefreshInterval is the delay between two inventory refreshes in serve mode.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// loadDotEnv load the configuration inside the application taking care
// if the running OS is Windows making the necessary adaptations for this case.
// There is a precedence order: exported env var > .env file >  default config
func loadDotEnv(environmentFile string) {
	if environmentFile == "" {
		environmentFile = ".env"
	}
	envFile, hasPath := os.LookupEnv("PVELIST_DIR")
	if hasPath {
		log.Debugf("Looking for Settings File at %v...", envFile)
		godotenv.Load(filepath.Join(envFile, environmentFile))
	} else if runtime.GOOS == "windows" {
		executable, _ := os.Executable()
		executable = filepath.FromSlash(executable)
		directory := filepath.Dir(executable)
		log.Debugf("Looking for Settings File at %v...", directory)
		godotenv.Load(filepath.Join(directory, environmentFile))
	} else {
		godotenv.Load(environmentFile)
	}
}

// setField writes a raw string value into an int, bool or string field.
func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.Int:
		valInt, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%v is not a valid int: %w", raw, err)
		}
		field.SetInt(int64(valInt))
	case reflect.Bool:
		valBool, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%v is not a valid bool: %w", raw, err)
		}
		field.SetBool(valBool)
	default:
		field.SetString(raw)
	}
	return nil
}

// populateConfig check environment variables
// to set to the current configuration
func populateConfig(config *Config) error {
	loadDotEnv("")
	value := reflect.ValueOf(config)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}
	for i := 0; i < value.NumField(); i++ {
		fieldType := value.Type().Field(i)
		tag := fieldType.Tag.Get("config")
		if tag == "" {
			continue
		}
		if env, exists := os.LookupEnv(tag); exists {
			if err := setField(value.Field(i), env); err != nil {
				return fmt.Errorf("%s env: %w", tag, err)
			}
		}
	}
	return nil
}

// LoadConfig return the Configuration based on the current environment.
// The preset is copied so callers never mutate the package level values.
func LoadConfig() (*Config, error) {
	var preset *Config
	switch os.Getenv("ENVIRONMENT") {
	case "DEVELOPMENT":
		preset = DevConfig
	case "TESTING":
		preset = TestConfig
	case "PRODUCTION":
		preset = ProdConfig
	default:
		preset = ProdConfig
	}
	conf := *preset
	if err := populateConfig(&conf); err != nil {
		return nil, err
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) validate() error {
	if c.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must be positive, got %d", c.RefreshIntervalSeconds)
	}
	if c.PVETimeoutSeconds < 0 {
		return fmt.Errorf("PVE_TIMEOUT_SECONDS must not be negative, got %d", c.PVETimeoutSeconds)
	}
	return nil
}
