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

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (local; default), TEST, QA, PROD
	Build    string
	AppName  string

	API struct {
		URL             string
		SubscriptionURL string
		Timeout         time.Duration
	}

	Web struct {
		Addr    string
		DistDir string
	}

	CredentialsPath string
	RollbarToken    string
}

// NewConfig loads the app configuration from the environment,
// with an optional config/.env.<env> file on top.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Darasa")
	v.SetDefault("apiUrl", "http://localhost:8000/graphql")
	v.SetDefault("apiSubscriptionUrl", "ws://localhost:8000/graphql")
	v.SetDefault("apiTimeout", 30*time.Second)
	v.SetDefault("webAddr", ":8080")
	v.SetDefault("webDistDir", "dist")
	v.SetDefault("credentialsPath", defaultCredentialsPath())
	v.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
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
		CredentialsPath: v.GetString("credentialsPath"),
		RollbarToken:    v.GetString("rollbarToken"),
	}
	conf.API.URL = v.GetString("apiUrl")
	conf.API.SubscriptionURL = v.GetString("apiSubscriptionUrl")
	conf.API.Timeout = v.GetDuration("apiTimeout")
	conf.Web.Addr = v.GetString("webAddr")
	conf.Web.DistDir = v.GetString("webDistDir")
	return conf
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "darasa", "credentials.json")
}
