package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Cors struct {
		// Origin is the single frontend origin allowed to send
		// credentialed requests.
		Origin string
	}
	Session struct {
		CookieName   string
		TTLMinutes   int
		SecureCookie bool
	}
	Web struct {
		Dir string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("POWERBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/powerbill.db")
	v.SetDefault("cors.origin", "http://localhost")
	v.SetDefault("session.cookiename", "powerbill_session")
	v.SetDefault("session.ttlminutes", 30)
	v.SetDefault("session.securecookie", false)
	v.SetDefault("web.dir", "web")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
