package model_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nvu/chatdeck/internal/model"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, "/ws", cfg.Server.SocketPath)
	require.Equal(t, 50, cfg.Feed.PageSize)
	require.Equal(t, 10, cfg.Display.DropdownLimit)
	require.Empty(t, cfg.Server.BaseURL)
}

func TestSaveAndLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &model.AppConfig{
		Server: model.ServerConfig{
			BaseURL:    "https://chat.example.com",
			SocketPath: "/events",
		},
		Feed: model.FeedConfig{
			PageSize:           25,
			RefreshIntervalSec: 60,
		},
		Display: model.DisplayConfig{
			Theme:         "default",
			DropdownLimit: 5,
		},
	}

	require.NoError(t, model.SaveConfig(path, cfg))

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
