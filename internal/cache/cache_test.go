package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/anisan-cli/skipsync/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

type document struct {
	Name  string
	Count int
}

func TestCache(t *testing.T) {
	Convey("Given a cache", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		c := New("/cache", time.Hour)
		key := Key("aniskip", "21", "1")

		Convey("Keys should ignore case and spaces", func() {
			So(Key("One Piece", "1"), ShouldEqual, Key("onepiece", "1"))
			So(Key("a", "b"), ShouldNotEqual, Key("ab"))
			So(key, ShouldHaveLength, 64)
		})

		Convey("A missing document should not be read", func() {
			var d document
			So(c.Read(key, &d), ShouldBeFalse)
		})

		Convey("A written document should be read back", func() {
			So(c.Write(key, document{"op", 2}), ShouldBeNil)

			var d document
			So(c.Read(key, &d), ShouldBeTrue)
			So(d, ShouldResemble, document{"op", 2})

			exists, _ := filesystem.API().Exists(filepath.Join("/cache", key+".tmp"))
			So(exists, ShouldBeFalse)
		})

		Convey("An expired document should be ignored and collected", func() {
			So(c.Write(key, document{"op", 2}), ShouldBeNil)
			So(c.Write("fresh", document{"ed", 1}), ShouldBeNil)

			old := time.Now().Add(-2 * time.Hour)
			So(filesystem.API().Chtimes(filepath.Join("/cache", key), old, old), ShouldBeNil)

			var d document
			So(c.Read(key, &d), ShouldBeFalse)

			So(c.CollectGarbage(), ShouldBeNil)
			exists, _ := filesystem.API().Exists(filepath.Join("/cache", key))
			So(exists, ShouldBeFalse)
			exists, _ = filesystem.API().Exists(filepath.Join("/cache", "fresh"))
			So(exists, ShouldBeTrue)
		})

		Convey("A corrupt document should not be read", func() {
			So(filesystem.API().WriteFile(filepath.Join("/cache", key), []byte("{"), 0o644), ShouldBeNil)

			var d document
			So(c.Read(key, &d), ShouldBeFalse)
		})
	})
}
