// Package where resolves the directories skipsync reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/anisan-cli/skipsync/constant"
	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "SKIPSYNC_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory: $SKIPSYNC_CONFIG_PATH, or skipsync under the
// user config dir.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	return mkdir(filepath.Join(lo.Must(os.UserConfigDir()), constant.App))
}

// Cache is the cache directory. It falls back to ./cache when the user cache dir is unknown.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return mkdir(filepath.Join(base, constant.App))
}

// Logs is where log files are written.
func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// Segments is the directory searched for local segment files.
func Segments() string {
	if custom := viper.GetString(key.SegmentsDir); custom != "" {
		return mkdir(custom)
	}
	return mkdir(filepath.Join(Config(), "segments"))
}

// Temp holds the mpv IPC sockets of running sessions.
func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.App))
}
