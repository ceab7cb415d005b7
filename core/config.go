package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DataAvailability selects what the roster builder does when a teacher
// resolves to no classes at all.
type DataAvailability string

const (
	// DataLive returns whatever the repositories hold, even if empty.
	DataLive DataAvailability = "live"
	// DataFallbackDemo substitutes the fixed demo roster on total unavailability.
	DataFallbackDemo DataAvailability = "fallback-demo"
	// DataEmpty always returns an empty roster on total unavailability.
	DataEmpty DataAvailability = "empty"
)

type (
	Config struct {
		Debug     bool
		TestMode  bool
		Env       string // DEV (local; default), TEST, QA, PROD
		Build     string
		AppName   string
		SecretKey string

		FrontendBaseURL string
		DefaultFromName string
		DefaultFromAddr string
		SendgridApiKey  string
		RollbarToken    string

		Server       ServerConfig
		Database     DatabaseConfig
		Care         CareConfig
		Canvas       CanvasConfig
		Notification NotificationConfig
	}

	ServerConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	CareConfig struct {
		// AcademicProvider selects the academic data source: "mock" or "canvas".
		AcademicProvider string
		// Availability is the roster builder's behavior when a teacher has no
		// resolvable classes.
		Availability DataAvailability
		// PulseWindow is the trailing window of pulse checks fed to the
		// emotional analyzer.
		PulseWindow time.Duration
		// AlertWindow is the trailing window for outstanding care alerts.
		AlertWindow time.Duration
		// RosterTimeout bounds a full roster build at the API boundary.
		RosterTimeout time.Duration
	}

	// CanvasConfig configures the live LMS academic provider. The provider is
	// selected explicitly in main via Care.AcademicProvider; an empty BaseURL
	// means Canvas is not wired in this deployment.
	CanvasConfig struct {
		BaseURL        string
		Token          string
		RequestTimeout time.Duration
	}

	NotificationConfig struct {
		// DigestHour is the local hour the nightly sweep targets for teacher digests.
		DigestHour int
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and `<ENV>_`-prefixed environment variables.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Hapi")
	v.SetDefault("secretKey", "x#f2$je7-p0qt)wne&b$+57=dz&uoxh2(h!x)9mc2(#yg4h^")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Hapi Care")
	v.SetDefault("defaultFromEmail", "care@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", hostname())
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "hapi")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "hapi")
	v.SetDefault("database.password", "hapi")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("care.academicProvider", "mock")
	v.SetDefault("care.availability", string(DataFallbackDemo))
	v.SetDefault("care.pulseWindow", 7*24*time.Hour)
	v.SetDefault("care.alertWindow", 7*24*time.Hour)
	v.SetDefault("care.rosterTimeout", 10*time.Second)

	v.SetDefault("canvas.baseURL", "")
	v.SetDefault("canvas.token", "")
	v.SetDefault("canvas.requestTimeout", 5*time.Second)

	v.SetDefault("notification.digestHour", 7)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromEmail"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Care: CareConfig{
			AcademicProvider: v.GetString("care.academicProvider"),
			Availability:     DataAvailability(v.GetString("care.availability")),
			PulseWindow:      v.GetDuration("care.pulseWindow"),
			AlertWindow:      v.GetDuration("care.alertWindow"),
			RosterTimeout:    v.GetDuration("care.rosterTimeout"),
		},
		Canvas: CanvasConfig{
			BaseURL:        v.GetString("canvas.baseURL"),
			Token:          v.GetString("canvas.token"),
			RequestTimeout: v.GetDuration("canvas.requestTimeout"),
		},
		Notification: NotificationConfig{
			DigestHour: v.GetInt("notification.digestHour"),
		},
	}

	switch conf.Care.Availability {
	case DataLive, DataFallbackDemo, DataEmpty:
	default:
		log.Fatalf("config: unknown care.availability %q", conf.Care.Availability)
	}
	return conf
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}
