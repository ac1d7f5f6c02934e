// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/anisan-cli/skipsync/color"
	"github.com/anisan-cli/skipsync/constant"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case time.Duration:
		return "duration"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.SkipMinDuration, 0.0, "Ignore segments shorter than this many seconds")
	register(key.SkipCheckInterval, time.Second, "How often to check whether playback landed inside a segment.\n0 disables the check")
	register(key.SkipNoticeCategories, []string{}, "Categories that are announced instead of skipped.\nType \"skipsync segments categories\" to list them")
	register(key.SkipIgnoreCategories, []string{}, "Categories that are never acted on automatically")
	register(key.SkipLockedCategories, []string{}, "Categories locked for every video.\nLocked categories are never skipped automatically")
	register(key.VirtualTimeRefresh, 250*time.Millisecond, "How often the estimated playback position is re-evaluated while playing")
	register(key.NoticeDuration, 4*time.Second, "How long skip notices stay on screen")
	register(key.NoticeAdvanceLead, 3*time.Second, "Show a notice this long before a segment is skipped.\n0 disables advance notices")
	register(key.NoticeAdvanceRefresh, 500*time.Millisecond, "How often the advance notice countdown is refreshed")
	register(key.SegmentsDir, "", "Directory with <media name>.json segment files.\nDefaults to the segments directory under the config path")
	register(key.AniskipEnable, true, "Fetch opening and ending segments from AniSkip when a MAL id is given")
	register(key.AniskipTypes, []string{"op", "ed", "recap"}, "AniSkip segment types to fetch.\nAvailable options are: op, ed, mixed-op, mixed-ed, recap")
	register(key.AniskipCacheTTL, 7*24*time.Hour, "How long AniSkip answers are kept in the cache.\n0 disables the cache")
	register(key.SubmitCategory, "sponsor", "Category of segments marked from the player")
	register(key.SubmitDefaultSpan, 30*time.Second, "Length of a marked segment when no end is marked")
	register(key.PlayerPath, "mpv", "Path to the mpv executable")
	register(key.PlayerArgs, []string{}, "Extra arguments passed to mpv")
	register(key.PlayerSampleInterval, time.Second, "Minimum time between playback position samples taken from mpv")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")

	if len(Default) != key.DefinedFieldsCount {
		panic(fmt.Sprintf("config: %d fields registered, %d keys defined", len(Default), key.DefinedFieldsCount))
	}
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
