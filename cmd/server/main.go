package main

import (
	"github.com/eldarhac/GraphMind/internal/server"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	server.Init()
}
