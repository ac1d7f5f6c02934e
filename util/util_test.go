package util

import (
	"testing"

	"github.com/anisan-cli/skipsync/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("file__name.txt"), ShouldEqual, "file_name.txt")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
		Convey("Should turn spaces into underscores", func() {
			So(SanitizeFilename("Episode 01"), ShouldEqual, "Episode_01")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "segment", "segments"), ShouldEqual, "1 segment")
		So(Quantify(0, "segment", "segments"), ShouldEqual, "0 segments")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestFileStem(t *testing.T) {
	Convey("FileStem", t, func() {
		So(FileStem("path/to/file.txt"), ShouldEqual, "file")
		So(FileStem("file"), ShouldEqual, "file")
		So(FileStem("show.s01e01.mkv"), ShouldEqual, "show.s01e01")
		So(FileStem("https://example.com/watch/ep1.m3u8?token=abc.def"), ShouldEqual, "ep1")
	})
}

func TestDelete(t *testing.T) {
	Convey("Given files on the backend", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		api := filesystem.API()
		So(api.WriteFile("/tmp/skipsync/a.sock", []byte{}, 0o644), ShouldBeNil)
		So(api.WriteFile("/tmp/skipsync/nested/b.json", []byte("{}"), 0o644), ShouldBeNil)

		Convey("Deleting a directory should remove its contents", func() {
			So(Delete("/tmp/skipsync"), ShouldBeNil)
			exists, _ := api.Exists("/tmp/skipsync/nested/b.json")
			So(exists, ShouldBeFalse)
		})

		Convey("Deleting a file should keep its siblings", func() {
			So(Delete("/tmp/skipsync/a.sock"), ShouldBeNil)
			exists, _ := api.Exists("/tmp/skipsync/nested/b.json")
			So(exists, ShouldBeTrue)
		})

		Convey("Deleting a missing path should fail", func() {
			So(Delete("/nowhere"), ShouldNotBeNil)
		})
	})
}
