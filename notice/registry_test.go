package notice

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeNotice struct {
	name   string
	closed *[]string
}

func (f *fakeNotice) Close() {
	*f.closed = append(*f.closed, f.name)
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with three notices", t, func() {
		var closed []string
		registry := NewRegistry()
		a := &fakeNotice{"a", &closed}
		b := &fakeNotice{"b", &closed}
		c := &fakeNotice{"c", &closed}

		registry.Register(a)
		registry.Register(b)
		registry.Register(c)
		registry.Register(b)

		So(registry.Len(), ShouldEqual, 3)

		Convey("CloseAll should close in insertion order and empty the registry", func() {
			registry.CloseAll()
			So(closed, ShouldResemble, []string{"a", "b", "c"})
			So(registry.Len(), ShouldEqual, 0)

			registry.CloseAll()
			So(closed, ShouldHaveLength, 3)
		})

		Convey("Unregister should remove by identity without closing", func() {
			registry.Unregister(b)
			So(registry.Contains(b), ShouldBeFalse)
			So(closed, ShouldBeEmpty)

			registry.Unregister(&fakeNotice{"b", &closed})
			So(registry.Len(), ShouldEqual, 2)

			registry.CloseAll()
			So(closed, ShouldResemble, []string{"a", "c"})
		})

		Convey("A notice closing itself should not disturb CloseAll", func() {
			self := &selfUnregistering{registry: registry, closed: &closed}
			registry.Register(self)
			registry.CloseAll()
			So(closed, ShouldResemble, []string{"a", "b", "c", "self"})
		})
	})
}

type selfUnregistering struct {
	registry *Registry
	closed   *[]string
}

func (s *selfUnregistering) Close() {
	s.registry.Unregister(s)
	*s.closed = append(*s.closed, "self")
}
