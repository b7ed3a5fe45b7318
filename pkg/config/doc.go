// Package config loads configuration structs from environment variables.
//
// Every relay package that needs settings owns a Config struct annotated with
// caarlos0/env tags; main loads each of them through Load:
//
//	var pgCfg pg.Config
//	config.MustLoad(&pgCfg)
//
// Values from a `.env` file in the working directory are applied before the
// first parse. Parsed structs are cached per type.
package config
