package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OCAP2/airfight/internal/api"
	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/internal/storage/memory"
	pgstorage "github.com/OCAP2/airfight/internal/storage/postgres"
	sqlitestorage "github.com/OCAP2/airfight/internal/storage/sqlite"
	wsstorage "github.com/OCAP2/airfight/internal/storage/websocket"
	"github.com/OCAP2/airfight/pkg/core"
	"github.com/spf13/viper"
)

func (a *app) setupStorage() error {
	storageCfg := config.GetStorageConfig()

	backend, err := a.createStorageBackend(storageCfg)
	if err != nil {
		a.logger.Error("Failed to create storage backend", "error", err)
		return err
	}
	if err := backend.Init(); err != nil {
		a.logger.Error("Failed to initialize storage backend", "type", storageCfg.Type, "error", err)
		return err
	}
	a.backend = backend

	if ws, ok := backend.(*wsstorage.Backend); ok {
		var name string
		var clock int64
		a.engine.Do(func() {
			name, clock = a.engine.State().Name, a.engine.State().Clock
		})
		if err := ws.StartCampaign(name, clock); err != nil {
			a.logger.Warn("Live feed did not acknowledge the campaign", "error", err)
		}
	}
	a.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

func (a *app) createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		backend, err := pgstorage.New(a.slog)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		return backend, nil

	case "sqlite":
		sqliteCfg := storageCfg.SQLite
		if sqliteCfg.DumpPath == "" {
			sqliteCfg.DumpPath = filepath.Join(viper.GetString("logsDir"),
				fmt.Sprintf("%s_%s.db", binaryName, a.start.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqliteCfg, a.slog)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		return backend, nil

	case "websocket":
		wsCfg := storageCfg.WebSocket
		if wsCfg.URL == "" {
			wsCfg.URL = httpToWS(viper.GetString("api.serverUrl")) + "/api/live"
		}
		if wsCfg.Secret == "" {
			wsCfg.Secret = viper.GetString("api.apiKey")
		}
		a.logger.Info("WebSocket storage backend selected", "url", wsCfg.URL)
		return wsstorage.New(wsCfg, a.logger), nil

	case "memory", "":
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// uploadExport sends the file written by an exporting backend on Close to
// the web frontend when api.uploadOnExit is set.
func (a *app) uploadExport() {
	exp, ok := a.backend.(storage.Exportable)
	if !ok {
		return
	}
	path := exp.GetExportedFilePath()
	if path == "" {
		return
	}
	a.logger.Info("Campaign exported", "path", path)
	if !viper.GetBool("api.uploadOnExit") {
		return
	}

	var meta core.UploadMetadata
	a.engine.Do(func() {
		meta = core.UploadMetadata{Campaign: a.engine.State().Name, Clock: a.engine.State().Clock}
	})
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Upload(context.Background(), path, meta); err != nil {
		a.logger.Error("Failed to upload export", "path", path, "error", err)
		return
	}
	a.logger.Info("Export uploaded", "path", path)
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
