package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hbomb79/Riptide/internal"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

const riptideConfigSuffix = ".config/riptide/config.yaml"

// main is the entry point to the program. The user configuration is loaded
// from their home directory (or the path provided via -config), merged with
// any overriding environment variables, before the server is started.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	configPath := flag.String("config", "", "Path to the YAML configuration file")
	flag.Parse()

	if *configPath == "" {
		home, err := homedir.Dir()
		if err != nil {
			log.Panicf("Failed to derive user home directory - %v\n", err.Error())
		}

		*configPath = filepath.Join(home, riptideConfigSuffix)
	}

	config := internal.RiptideConfig{}
	if _, err := os.Stat(*configPath); err == nil {
		if err := config.LoadFromFile(*configPath); err != nil {
			log.Panicf("Failed to initialise Riptide - %v\n", err.Error())
		}
	} else if err := config.LoadFromEnv(); err != nil {
		log.Panicf("Failed to initialise Riptide - %v\n", err.Error())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	riptide := internal.New(config)
	if err := riptide.Run(ctx); err != nil {
		log.Panicf("Riptide stopped with error - %v\n", err.Error())
	}
}
