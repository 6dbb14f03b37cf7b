package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable, e.g. GOPHAUTH_DATABASE_DSN.
const envPrefix = "GOPHAUTH_"

// parseEnv overlays environment variables onto config. A dotenv file (-env,
// default ".env") is loaded first when it exists; variables already present in
// the process environment win over the file. Unset variables keep the current
// value.
func parseEnv(config *Config) {
	if err := godotenv.Load(flagx.EnvFileFlags()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: envPrefix}); err != nil {
		panic(err)
	}
}
