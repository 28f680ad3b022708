package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string        `mapstructure:"address"`
		DebugAddress    string        `mapstructure:"debugAddress"`
		Host            string        `mapstructure:"host"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	}

	SessionConfig struct {
		TTL          time.Duration `mapstructure:"ttl"`
		CookieName   string        `mapstructure:"cookieName"`
		CookieSecure bool          `mapstructure:"cookieSecure"`
		Store        string        `mapstructure:"store"` // memory | redis
		RedisAddr    string        `mapstructure:"redisAddr"`
		RedisDB      int           `mapstructure:"redisDB"`
		KeyPrefix    string        `mapstructure:"keyPrefix"`
	}

	DatabaseConfig struct {
		Driver     string `mapstructure:"driver"` // memory | postgres | mongo
		Engine     string `mapstructure:"engine"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
		DisableTLS bool   `mapstructure:"disableTLS"`
		MongoURI   string `mapstructure:"mongoURI"`
		MongoName  string `mapstructure:"mongoName"`
		SeedDemo   bool   `mapstructure:"seedDemo"`
	}

	Config struct {
		Env          string         `mapstructure:"-"`
		WorkDir      string         `mapstructure:"-"`
		Debug        bool           `mapstructure:"debug"`
		TestMode     bool           `mapstructure:"testMode"`
		AppName      string         `mapstructure:"appName"`
		Build        string         `mapstructure:"build"`
		SecretKey    string         `mapstructure:"secretKey"`
		LogLevel     string         `mapstructure:"logLevel"`
		RollbarToken string         `mapstructure:"rollbarToken"`
		Server       ServerConfig   `mapstructure:"server"`
		Session      SessionConfig  `mapstructure:"session"`
		Database     DatabaseConfig `mapstructure:"database"`
	}
)

func (dbc DatabaseConfig) Address() string {
	if dbc.Port == "" {
		return dbc.Host
	}
	return dbc.Host + ":" + dbc.Port
}

// Persistent reports whether identities outlive the process with this driver.
func (dbc DatabaseConfig) Persistent() bool {
	return dbc.Driver == "postgres" || dbc.Driver == "mongo"
}

// SeedsDemo reports whether demo identities are provisioned at startup.
// Persistent stores are only seeded when database.seedDemo is set explicitly.
func (c *Config) SeedsDemo() bool {
	return c.Database.SeedDemo || (c.Debug && !c.Database.Persistent())
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("logLevel", "debug")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("session.ttl", 8*time.Hour)
	v.SetDefault("session.cookieName", "masomo_session")
	v.SetDefault("session.cookieSecure", false)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.redisAddr", "localhost:6379")
	v.SetDefault("session.redisDB", 0)
	v.SetDefault("session.keyPrefix", "masomo:session:")

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "masomo")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "masomo")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	v.SetDefault("database.mongoName", "masomo")
	v.SetDefault("database.seedDemo", false)
}

// NewConfig loads the app configuration.
// Values are read from (lowest to highest priority): defaults, `config/.env.<env>`, environment.
// Environment variables are prefixed with the upper-cased env name, e.g. `DEV_SESSION_TTL=1h`.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	conf.Env = env
	conf.WorkDir = workDir
	return &conf
}
