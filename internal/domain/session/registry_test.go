package session_test

import (
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/session"
	"github.com/smartystreets/goconvey/convey"
)

func TestRegistryCreateResolve(t *testing.T) {
	convey.Convey("Given an empty registry", t, func() {
		registry := session.NewRegistry()

		convey.Convey("When a session is created", func() {
			id := registry.Create("puns", "alpha", "beta")

			convey.Convey("Then the id is opaque and non-empty", func() {
				convey.So(id, convey.ShouldNotBeEmpty)
			})

			convey.Convey("And Resolve returns the stored pair", func() {
				s, err := registry.Resolve(id)
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Category, convey.ShouldEqual, "puns")
				convey.So(s.ModelA, convey.ShouldEqual, "alpha")
				convey.So(s.ModelB, convey.ShouldEqual, "beta")
			})

			convey.Convey("And Resolve does not consume the session", func() {
				_, err := registry.Resolve(id)
				convey.So(err, convey.ShouldBeNil)
				_, err = registry.Resolve(id)
				convey.So(err, convey.ShouldBeNil)
				convey.So(registry.Len(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When resolving an unknown id", func() {
			_, err := registry.Resolve("no-such-battle")

			convey.Convey("Then it fails with ErrNotFound", func() {
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
			})
		})

		convey.Convey("When two sessions are created for the same pair", func() {
			first := registry.Create("puns", "alpha", "beta")
			second := registry.Create("puns", "alpha", "beta")

			convey.Convey("Then the ids never collide", func() {
				convey.So(first, convey.ShouldNotEqual, second)
				convey.So(registry.Len(), convey.ShouldEqual, 2)
			})
		})
	})
}

func TestRegistryConsume(t *testing.T) {
	convey.Convey("Given a registry with one session", t, func() {
		registry := session.NewRegistry()
		id := registry.Create("anti", "alpha", "beta")

		convey.Convey("When the session is consumed", func() {
			s, err := registry.Consume(id)
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.ID, convey.ShouldEqual, id)

			convey.Convey("Then a second consume fails with ErrNotFound", func() {
				_, err := registry.Consume(id)
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
			})

			convey.Convey("And the registry is empty again", func() {
				convey.So(registry.Len(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestRegistryExpiry(t *testing.T) {
	convey.Convey("Given a registry with an injectable clock", t, func() {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		registry := session.NewRegistry(
			session.WithTTL(time.Minute),
			session.WithClock(clock),
		)

		id := registry.Create("puns", "alpha", "beta")

		convey.Convey("When the TTL has not elapsed", func() {
			now = now.Add(59 * time.Second)

			convey.Convey("Then the session still resolves", func() {
				_, err := registry.Resolve(id)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the TTL has elapsed", func() {
			now = now.Add(61 * time.Second)

			convey.Convey("Then the session is gone", func() {
				_, err := registry.Resolve(id)
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
			})

			convey.Convey("And the lazy expiry removed it from storage", func() {
				_, _ = registry.Resolve(id)
				convey.So(registry.Len(), convey.ShouldEqual, 0)
			})

			convey.Convey("And Consume reports the same not-found error", func() {
				_, err := registry.Consume(id)
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
			})
		})
	})
}

func TestRegistrySweep(t *testing.T) {
	convey.Convey("Given a registry holding fresh and stale sessions", t, func() {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		registry := session.NewRegistry(
			session.WithTTL(time.Minute),
			session.WithClock(clock),
		)

		stale1 := registry.Create("puns", "alpha", "beta")
		stale2 := registry.Create("anti", "beta", "gamma")
		now = now.Add(2 * time.Minute)
		fresh := registry.Create("puns", "alpha", "gamma")

		convey.Convey("When sweeping", func() {
			removed := registry.Sweep()

			convey.Convey("Then only the stale sessions are dropped", func() {
				convey.So(removed, convey.ShouldEqual, 2)
				convey.So(registry.Len(), convey.ShouldEqual, 1)

				_, err := registry.Resolve(fresh)
				convey.So(err, convey.ShouldBeNil)
				_, err = registry.Resolve(stale1)
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
				_, err = registry.Resolve(stale2)
				convey.So(err, convey.ShouldEqual, session.ErrNotFound)
			})
		})
	})
}
