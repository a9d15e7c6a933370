package main

import "os"

func main() {
	configureLogging(styleWire)

	args := getArgs()
	if args == nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(args.ConfigFile)
	if err != nil {
		log.Errorf("unable to load configuration: %s", err)
		os.Exit(1)
	}

	s := newServer(cfg)
	if err := s.run(); err != nil {
		log.Errorf("server exited with error: %s", err)
		os.Exit(1)
	}

	log.Info("Server shutdown cleanly.")
}
