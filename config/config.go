// Package config registers skipsync's settings with viper and checks them before a
// session starts.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/anisan-cli/skipsync/aniskip"
	"github.com/anisan-cli/skipsync/constant"
	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/icon"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps config keys to environment variable names, notice.advance_lead to
// SKIPSYNC_NOTICE_ADVANCE_LEAD.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup reads skipsync.toml from the config directory on top of the defaults and the
// SKIPSYNC_ environment. A missing file is not an error.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read %s: %w", viper.ConfigFileUsed(), err)
	}

	return nil
}

// categoryKeys hold category names.
var categoryKeys = []string{
	key.SkipNoticeCategories,
	key.SkipIgnoreCategories,
	key.SkipLockedCategories,
}

// Validate reports every setting a session cannot run with: unknown categories,
// AniSkip types or icon variants and negative durations.
func Validate() error {
	var errs []error

	for _, k := range categoryKeys {
		for _, name := range viper.GetStringSlice(k) {
			if _, err := segment.ParseCategory(name); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", k, err))
			}
		}
	}
	if _, err := segment.ParseCategory(viper.GetString(key.SubmitCategory)); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", key.SubmitCategory, err))
	}

	for _, t := range viper.GetStringSlice(key.AniskipTypes) {
		if _, ok := aniskip.SkipType(t).Category(); !ok {
			errs = append(errs, fmt.Errorf("%s: unknown type %q", key.AniskipTypes, t))
		}
	}

	if v := viper.GetString(key.IconsVariant); !lo.Contains(icon.AvailableVariants(), v) {
		errs = append(errs, fmt.Errorf("%s: unknown variant %q", key.IconsVariant, v))
	}

	keys := lo.Keys(Default)
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := Default[k].Value.(time.Duration); ok && viper.GetDuration(k) < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", k))
		}
	}

	return errors.Join(errs...)
}
