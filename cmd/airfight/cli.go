package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OCAP2/airfight/internal/api"
	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/database"
	"github.com/OCAP2/airfight/internal/storage/memory"
	"github.com/OCAP2/airfight/pkg/core"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const usage = `usage: airfight [command]

  run                       run the configured campaign (default)
  version                   print version information
  healthcheck               check that the web frontend answers
  upload <file> [tag]       upload an exported campaign to the web frontend
  migrate [sqlite-file]     create or update the database schema
  backups <dir>             list SQLite dumps in dir
  inspect <export-file>     summarize a memory backend export`

// runCLI serves the one-shot subcommands.
func runCLI(args []string) error {
	if err := config.Load(configDir()); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch strings.ToLower(args[0]) {
	case "version":
		fmt.Printf("%s %s (built %s)\n", binaryName, Version, BuildDate)
		return nil

	case "healthcheck":
		client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
		if err := client.Healthcheck(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "upload":
		if len(args) < 2 {
			return errors.New("upload needs a file")
		}
		return uploadFile(ctx, args[1], args[2:])

	case "migrate":
		return migrate(args[1:])

	case "backups":
		if len(args) < 2 {
			return errors.New("backups needs a directory")
		}
		paths, err := database.GetBackupDBPaths(args[1])
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil

	case "inspect":
		if len(args) < 2 {
			return errors.New("inspect needs an export file")
		}
		return inspect(args[1])

	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func uploadFile(ctx context.Context, path string, rest []string) error {
	meta := core.UploadMetadata{}
	if len(rest) > 0 {
		meta.Tag = rest[0]
	}
	if export, err := memory.ReadExport(path); err == nil && len(export.Campaigns) > 0 {
		c := export.Campaigns[0]
		meta.Campaign = c.Name
		if c.Latest != nil {
			meta.Clock = c.Latest.Clock
		}
	}

	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Upload(ctx, path, meta); err != nil {
		return err
	}
	fmt.Printf("uploaded %s\n", path)
	return nil
}

// migrate connects like the postgres backend does, falling back to the
// given SQLite file, and applies the schema.
func migrate(args []string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	m := database.NewManager(log)
	if len(args) > 0 {
		m.SqliteFilePath = args[0]
	}
	if err := m.Connect(); err != nil {
		return err
	}
	defer m.SqlDB.Close()
	return m.Setup()
}

func inspect(path string) error {
	export, err := memory.ReadExport(path)
	if err != nil {
		return err
	}
	for _, c := range export.Campaigns {
		fmt.Printf("%s: %d saves, %d combat events\n", c.Name, c.Saves, len(c.Events))
		if last := c.Latest; last != nil {
			fmt.Printf("  latest save at clock %d: %d aircraft, %d bases, %d projectiles\n",
				last.Clock, len(last.Aircraft), len(last.Bases), len(last.Projectiles))
		}
	}
	return nil
}
