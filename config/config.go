package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr    string `default:"" env:"APP_HOST"`
		Port          int    `default:"8080"  env:"APP_PORT"`
		ErrNotifyAddr string `default:"" env:"APP_ERR_NOTIFY_ADDR"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"approvals" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		SeedOnStart    *bool  `default:"false" env:"DB_SEED_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret      string `default:"" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int    `default:"86400" env:"AUTH_JWT_EXPIRE_IN_SEC"`
	}
	Approvals struct {
		ItemsPerPage int    `default:"10" env:"APPROVALS_ITEMS_PER_PAGE"`
		OrderBy      string `default:"ASC" env:"APPROVALS_ORDER_BY"` // ASC/DESC по дате подачи
		ExternalURL  string `default:"" env:"APPROVALS_EXTERNAL_URL"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
	}
	Telemetry struct {
		Enabled      *bool  `default:"false" env:"TELEMETRY_ENABLED"`
		OTLPEndpoint string `default:"127.0.0.1:4318" env:"TELEMETRY_OTLP_ENDPOINT"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
