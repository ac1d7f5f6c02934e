package config

import (
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/skipsync/filesystem"
	"github.com/anisan-cli/skipsync/key"
	"github.com/anisan-cli/skipsync/segment"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should register every defined key", func() {
			So(Default, ShouldHaveLength, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("notice.advance_lead")
			So(result, ShouldEqual, "notice_advance_lead")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Should be valid", func() {
			So(Validate(), ShouldBeNil)
		})

		Convey("Should report every bad setting", func() {
			viper.Set(key.SkipLockedCategories, []string{"intro", "intr"})
			viper.Set(key.AniskipTypes, []string{"op", "credits"})
			viper.Set(key.NoticeAdvanceLead, -time.Second)
			Reset(func() {
				viper.Set(key.SkipLockedCategories, []string{})
				viper.Set(key.AniskipTypes, []string{"op", "ed", "recap"})
				viper.Set(key.NoticeAdvanceLead, 3*time.Second)
			})

			err := Validate()
			So(errors.Is(err, segment.ErrUnknownCategory), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, key.SkipLockedCategories)
			So(err.Error(), ShouldContainSubstring, `"credits"`)
			So(err.Error(), ShouldContainSubstring, key.NoticeAdvanceLead)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.NoticeAdvanceLead]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "SKIPSYNC_NOTICE_ADVANCE_LEAD")
		})

		Convey("Durations should report their own type", func() {
			So(field.typeName(), ShouldEqual, "duration")
		})
	})
}

func TestCoordinatorOptions(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		_ = Setup()

		Convey("Options should mirror the configured timings", func() {
			opts := CoordinatorOptions()
			So(opts.AdvanceNoticeLead, ShouldEqual, 3*time.Second)
			So(opts.AdvanceNoticeRefresh, ShouldEqual, 500*time.Millisecond)
			So(opts.SkipCheckInterval, ShouldEqual, time.Second)
			So(opts.VirtualTimeRefresh, ShouldEqual, 250*time.Millisecond)
			So(opts.CategoryActions, ShouldBeEmpty)
		})

		Convey("Notice and ignored categories should map to actions", func() {
			viper.Set(key.SkipNoticeCategories, []string{"Outro", "nonsense"})
			viper.Set(key.SkipIgnoreCategories, []string{"filler"})
			defer viper.Set(key.SkipNoticeCategories, []string{})
			defer viper.Set(key.SkipIgnoreCategories, []string{})

			opts := CoordinatorOptions()
			So(opts.CategoryActions, ShouldResemble, map[segment.Category]segment.Action{
				segment.Outro:  segment.ActionNotice,
				segment.Filler: segment.ActionPOI,
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Parsing command line values", t, func() {
		Convey("Should follow the type of the default", func() {
			v, err := Parse(key.NoticeAdvanceLead, []string{"5s"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 5*time.Second)

			v, err = Parse(key.SkipMinDuration, []string{"1.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1.5)

			v, err = Parse(key.LogsWrite, []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			v, err = Parse(key.PlayerPath, []string{"/usr/bin/mpv"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "/usr/bin/mpv")
		})

		Convey("Should reject malformed values", func() {
			_, err := Parse(key.NoticeAdvanceLead, []string{"soon"})
			So(err, ShouldNotBeNil)

			_, err = Parse(key.LogsWrite, []string{"true", "false"})
			So(err, ShouldNotBeNil)
		})

		Convey("Should split lists on commas", func() {
			v, err := Parse(key.PlayerArgs, []string{"--mute=yes, --fs", "--volume=50"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--mute=yes", "--fs", "--volume=50"})
		})

		Convey("Should normalize category names", func() {
			v, err := Parse(key.SkipLockedCategories, []string{"Intro,OUTRO"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"intro", "outro"})

			_, err = Parse(key.SkipLockedCategories, []string{"intr"})
			So(errors.Is(err, segment.ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("Should reject unknown keys", func() {
			_, err := Parse("skip.everything", []string{"yes"})
			So(errors.Is(err, ErrUnknownKey), ShouldBeTrue)
		})
	})
}
