package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type JWTConfig struct {
	SecretKey       string        `mapstructure:"secretKey"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessTokenTTL  time.Duration `mapstructure:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `mapstructure:"refreshTokenTTL"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | gemini
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"maxTokens"`
	OpenAI      struct {
		APIKey  string `mapstructure:"apiKey"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"baseURL"`
	} `mapstructure:"openai"`
	Gemini struct {
		APIKey string `mapstructure:"apiKey"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`
}

type BookingConfig struct {
	BaseURL           string        `mapstructure:"baseURL"`
	Host              string        `mapstructure:"host"`
	APIKey            string        `mapstructure:"apiKey"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type MapsConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OAuthConfig struct {
	SessionSecret string `mapstructure:"sessionSecret"`
	Google        struct {
		ClientID     string `mapstructure:"clientID"`
		ClientSecret string `mapstructure:"clientSecret"`
		CallbackURL  string `mapstructure:"callbackURL"`
	} `mapstructure:"google"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Log    struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"` // text | json
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"maxSizeMB"`
		MaxBackups int    `mapstructure:"maxBackups"`
	} `mapstructure:"log"`
	Handlers struct {
		Prometheus struct {
			Enabled bool   `mapstructure:"enabled"`
			Path    string `mapstructure:"path"`
		} `mapstructure:"prometheus"`
		Swagger struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"swagger"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort     string        `mapstructure:"HTTPPort"`
		Timeout      time.Duration `mapstructure:"HTTPTimeout"`
		ReadTimeout  time.Duration `mapstructure:"readTimeout"`
		WriteTimeout time.Duration `mapstructure:"writeTimeout"`
		CORSOrigins  []string      `mapstructure:"corsOrigins"`
		// GenerateRateLimit is the number of plan generations allowed per IP per minute.
		GenerateRateLimit int `mapstructure:"generateRateLimit"`
	} `mapstructure:"server"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Booking BookingConfig `mapstructure:"booking"`
	Maps    MapsConfig    `mapstructure:"maps"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// LLM_OPENAI_APIKEY overrides llm.openai.apiKey, and so on.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.SecretKey == "" {
		missing = append(missing, "jwt.secretKey")
	}
	if c.Repositories.Postgres.Host == "" {
		missing = append(missing, "repositories.postgres.host")
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported llm.provider %q (want openai or gemini)", c.LLM.Provider)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
