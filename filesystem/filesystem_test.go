package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestBackend(t *testing.T) {
	Convey("Filesystem backend", t, func() {
		Convey("Should default to the OS", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to memory", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("Should accept any afero filesystem", func() {
			Set(afero.NewReadOnlyFs(afero.NewMemMapFs()))
			_, err := API().Create("segments.json")
			So(err, ShouldNotBeNil)
		})

		Convey("GacheFs should write through the backend", func() {
			SetMemMapFs()
			fs := GacheFs{}
			So(fs.MkdirAll("/cache", os.ModePerm), ShouldBeNil)

			f, err := fs.OpenFile("/cache/version.json", os.O_CREATE|os.O_RDWR, 0o644)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte(`"0.3.0"`))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/cache/version.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `"0.3.0"`)
		})
	})
}
