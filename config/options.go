package config

import (
	"github.com/anisan-cli/skipsync/coordinator"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/spf13/viper"
)

// CoordinatorOptions builds the scheduling options from the current configuration.
// Unknown category names are logged and skipped.
func CoordinatorOptions() coordinator.Options {
	opts := coordinator.Options{
		MinDuration:          viper.GetFloat64(key.SkipMinDuration),
		AdvanceNoticeLead:    viper.GetDuration(key.NoticeAdvanceLead),
		AdvanceNoticeRefresh: viper.GetDuration(key.NoticeAdvanceRefresh),
		SkipCheckInterval:    viper.GetDuration(key.SkipCheckInterval),
		VirtualTimeRefresh:   viper.GetDuration(key.VirtualTimeRefresh),
		CategoryActions:      make(map[segment.Category]segment.Action),
	}

	for _, c := range Categories(key.SkipNoticeCategories) {
		opts.CategoryActions[c] = segment.ActionNotice
	}
	for _, c := range Categories(key.SkipIgnoreCategories) {
		opts.CategoryActions[c] = segment.ActionPOI
	}

	return opts
}

// Categories parses the category list stored under k.
func Categories(k string) []segment.Category {
	var categories []segment.Category
	for _, name := range viper.GetStringSlice(k) {
		c, err := segment.ParseCategory(name)
		if err != nil {
			log.Warnf("config: %s: %v", k, err)
			continue
		}
		categories = append(categories, c)
	}
	return categories
}
