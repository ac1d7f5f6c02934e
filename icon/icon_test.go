package icon

import (
	"testing"

	"github.com/anisan-cli/skipsync/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the registered icons", t, func() {
		Convey("Every icon renders in every variant", func() {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			}
		})

		Convey("Plain icons are distinct", func() {
			viper.Set(key.IconsVariant, "plain")
			seen := make(map[string]bool)
			for i := range icons {
				So(seen[Get(i)], ShouldBeFalse)
				seen[Get(i)] = true
			}
		})

		Convey("An unknown variant renders nothing", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Skip), ShouldBeEmpty)
		})

		Convey("An unknown icon renders nothing", func() {
			viper.Set(key.IconsVariant, "plain")
			So(Get(Icon(-1)), ShouldBeEmpty)
		})
	})
}
