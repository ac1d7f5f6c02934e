// Package version checks whether a newer skipsync release is available.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/network"
	"github.com/anisan-cli/skipsync/util"
	"github.com/anisan-cli/skipsync/where"
	"github.com/metafates/gache"
)

// Repository is the GitHub repository releases are published to.
const Repository = "anisan-cli/skipsync"

// ReleasesURL answers with the latest release of Repository.
var ReleasesURL = "https://api.github.com/repos/" + Repository + "/releases/latest"

var (
	cacherOnce sync.Once
	cacher     *gache.Cache[string]
)

func versionCacher() *gache.Cache[string] {
	cacherOnce.Do(func() {
		cacher = gache.New[string](&gache.Options{
			Path:       filepath.Join(where.Cache(), "version.json"),
			Lifetime:   time.Hour * 24 * 2,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return cacher
}

// Latest returns the version of the latest release, without the v prefix.
// Answers are cached for two days.
func Latest() (string, error) {
	version, expired, err := versionCacher().Get()
	if err != nil {
		return "", err
	}
	if !expired && version != "" {
		return version, nil
	}

	version, err = fetchLatest(context.Background())
	if err != nil {
		return "", err
	}

	_ = versionCacher().Set(version)
	return version, nil
}

func fetchLatest(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases: unexpected status %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}
