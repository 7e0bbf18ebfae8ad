package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"bookListings/internal/config"
	"bookListings/internal/db"
	"bookListings/internal/logging"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down, status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log.WithField("config", cfg.String()).Debug("configuration loaded")

	if err := run(*command, cfg.Database.Path, os.Stdout, log); err != nil {
		log.WithError(err).Fatal("migrate")
	}
}

func run(command, path string, out io.Writer, log logrus.FieldLogger) error {
	d, err := db.OpenNoMigrate(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.WithError(err).Warn("close db")
		}
	}()

	switch command {
	case "up":
		if err := db.Migrate(d); err != nil {
			return err
		}
		log.WithField("db", path).Info("migrations applied")
	case "down":
		v, err := db.RollbackLast(d)
		if err != nil {
			return err
		}
		if v == 0 {
			log.WithField("db", path).Info("nothing to roll back")
			return nil
		}
		log.WithFields(logrus.Fields{"db": path, "version": v}).Info("migration rolled back")
	case "status":
		st, err := db.Status(d)
		if err != nil {
			return err
		}
		for _, m := range st {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%04d_%s\t%s\n", m.Version, m.Name, state)
		}
	default:
		return fmt.Errorf("unknown command %q: use up, down or status", command)
	}
	return nil
}
