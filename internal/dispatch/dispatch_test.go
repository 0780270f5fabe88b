package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/bsamaha/draftlab/internal/adapters/cache"
	"github.com/bsamaha/draftlab/internal/domain/query"
	"github.com/bsamaha/draftlab/internal/domain/types"
	"github.com/bsamaha/draftlab/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeEngine answers every operation after a fixed delay, tagging results
// with its marker so tests can tell which engine won.
type fakeEngine struct {
	name   string
	delay  time.Duration
	err    error
	marker int
	calls  int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) answer() error {
	f.calls++
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func (f *fakeEngine) ListPlayers(ctx context.Context, p query.ListPlayersParams) (types.PlayerPage, error) {
	if err := f.answer(); err != nil {
		return types.PlayerPage{}, err
	}
	return types.PlayerPage{PageInfo: types.PageInfo{TotalCount: f.marker}}, nil
}

func (f *fakeEngine) PlayerDetails(ctx context.Context, p query.PlayerDetailsParams) (types.PlayerDetails, error) {
	if err := f.answer(); err != nil {
		return types.PlayerDetails{}, err
	}
	return types.PlayerDetails{TotalDrafts: f.marker}, nil
}

func (f *fakeEngine) PositionStats(ctx context.Context) ([]types.PositionStats, error) {
	if err := f.answer(); err != nil {
		return nil, err
	}
	return []types.PositionStats{{TotalDrafted: f.marker}}, nil
}

func (f *fakeEngine) FirstPlayerStats(ctx context.Context) ([]types.FirstPickStats, error) {
	if err := f.answer(); err != nil {
		return nil, err
	}
	return []types.FirstPickStats{{MinFirstPick: f.marker}}, nil
}

func (f *fakeEngine) RoundCounts(ctx context.Context, p query.RoundCountsParams) (types.RoundCounts, error) {
	if err := f.answer(); err != nil {
		return types.RoundCounts{}, err
	}
	return types.RoundCounts{Position: p.Position}, nil
}

func (f *fakeEngine) RosterConstructionCounts(ctx context.Context) ([]types.RosterConstruction, error) {
	if err := f.answer(); err != nil {
		return nil, err
	}
	return []types.RosterConstruction{{Count: f.marker}}, nil
}

func (f *fakeEngine) DraftSlotCorrelation(ctx context.Context, p query.SlotCorrelationParams) (types.SlotCorrelation, error) {
	if err := f.answer(); err != nil {
		return types.SlotCorrelation{}, err
	}
	return types.SlotCorrelation{Slot: p.Slot}, nil
}

func (f *fakeEngine) HeatMap(ctx context.Context) (types.HeatMap, error) {
	if err := f.answer(); err != nil {
		return types.HeatMap{}, err
	}
	return types.HeatMap{TotalPicks: f.marker}, nil
}

func listParams() query.ListPlayersParams {
	return query.ListPlayersParams{}.Normalize()
}

func TestEngineSelection(t *testing.T) {
	ctx := context.Background()
	policy := Policy{AbsoluteThreshold: 15 * time.Millisecond, RelativeMargin: 0.20}

	Convey("Given a fast primary engine", t, func() {
		primary := &fakeEngine{name: "sql", marker: 1}
		secondary := &fakeEngine{name: "frame", marker: 2}
		d := New(primary, secondary, WithPolicy(policy))

		Convey("When the primary answers inside the absolute threshold", func() {
			page, err := d.ListPlayers(ctx, listParams())

			Convey("Then its result is accepted without a race", func() {
				So(err, ShouldBeNil)
				So(page.PageInfo.TotalCount, ShouldEqual, 1)
				So(secondary.calls, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a slow primary and a much faster secondary", t, func() {
		primary := &fakeEngine{name: "sql", marker: 1, delay: 40 * time.Millisecond}
		secondary := &fakeEngine{name: "frame", marker: 2, delay: time.Millisecond}
		d := New(primary, secondary, WithPolicy(policy))

		Convey("When the secondary beats the primary by over the margin", func() {
			page, err := d.ListPlayers(ctx, listParams())

			Convey("Then the secondary's result wins", func() {
				So(err, ShouldBeNil)
				So(page.PageInfo.TotalCount, ShouldEqual, 2)
				So(secondary.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a slow primary and a slower secondary", t, func() {
		primary := &fakeEngine{name: "sql", marker: 1, delay: 40 * time.Millisecond}
		secondary := &fakeEngine{name: "frame", marker: 2, delay: 55 * time.Millisecond}
		d := New(primary, secondary, WithPolicy(policy))

		Convey("When the secondary fails to clear the relative margin", func() {
			page, err := d.ListPlayers(ctx, listParams())

			Convey("Then the primary's result is kept", func() {
				So(err, ShouldBeNil)
				So(page.PageInfo.TotalCount, ShouldEqual, 1)
				So(secondary.calls, ShouldEqual, 1)
			})
		})
	})
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	boom := fmt.Errorf("database locked")

	Convey("Given a failing primary engine", t, func() {
		primary := &fakeEngine{name: "sql", marker: 1, err: boom}
		secondary := &fakeEngine{name: "frame", marker: 2}
		d := New(primary, secondary)

		Convey("When the primary errors on an infrastructure fault", func() {
			page, err := d.ListPlayers(ctx, listParams())

			Convey("Then the secondary serves the request", func() {
				So(err, ShouldBeNil)
				So(page.PageInfo.TotalCount, ShouldEqual, 2)
				So(secondary.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given both engines failing", t, func() {
		primary := &fakeEngine{name: "sql", err: boom}
		secondary := &fakeEngine{name: "frame", err: errors.New("also broken")}
		d := New(primary, secondary)

		Convey("When a query runs", func() {
			_, err := d.ListPlayers(ctx, listParams())

			Convey("Then the primary's error surfaces", func() {
				So(err, ShouldEqual, boom)
				So(secondary.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a primary returning a domain error", t, func() {
		primary := &fakeEngine{
			name: "sql",
			err:  fmt.Errorf("%w: player missing", query.ErrNotFound),
		}
		secondary := &fakeEngine{name: "frame", marker: 2}
		d := New(primary, secondary)

		Convey("When a query runs", func() {
			_, err := d.PlayerDetails(ctx, query.PlayerDetailsParams{})

			Convey("Then the error surfaces without consulting the secondary", func() {
				So(err, ShouldWrap, query.ErrNotFound)
				So(secondary.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestResultCaching(t *testing.T) {
	ctx := context.Background()

	Convey("Given a dispatcher with a result cache", t, func() {
		primary := &fakeEngine{name: "sql", marker: 1}
		secondary := &fakeEngine{name: "frame", marker: 2}
		results, err := cache.New(8)
		So(err, ShouldBeNil)
		d := New(primary, secondary, WithCache(results))

		Convey("When the same query runs twice", func() {
			first, err1 := d.ListPlayers(ctx, listParams())
			second, err2 := d.ListPlayers(ctx, listParams())

			Convey("Then the second call is served from the cache", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldResemble, second)
				So(primary.calls, ShouldEqual, 1)
				So(d.CachedResults(), ShouldEqual, 1)
			})
		})

		Convey("When queries differ only in parameters", func() {
			_, err1 := d.ListPlayers(ctx, listParams())
			_, err2 := d.ListPlayers(ctx, query.ListPlayersParams{SearchTerm: "x"}.Normalize())

			Convey("Then each gets its own cache entry", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(primary.calls, ShouldEqual, 2)
				So(d.CachedResults(), ShouldEqual, 2)
			})
		})

		Convey("When parameterless operations run", func() {
			_, err1 := d.PositionStats(ctx)
			_, err2 := d.HeatMap(ctx)
			_, err3 := d.PositionStats(ctx)

			Convey("Then they cache under distinct operation keys", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldBeNil)
				So(primary.calls, ShouldEqual, 2)
				So(d.CachedResults(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a failing primary with a working fallback and a cache", t, func() {
		primary := &fakeEngine{name: "sql", err: errors.New("broken")}
		secondary := &fakeEngine{name: "frame", marker: 2}
		results, err := cache.New(8)
		So(err, ShouldBeNil)
		d := New(primary, secondary, WithCache(results))

		Convey("When the same query runs twice", func() {
			_, err1 := d.ListPlayers(ctx, listParams())
			_, err2 := d.ListPlayers(ctx, listParams())

			Convey("Then the fallback result was cached after the first call", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(primary.calls, ShouldEqual, 1)
				So(secondary.calls, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a dispatcher whose every query fails", t, func() {
		boom := errors.New("broken")
		primary := &fakeEngine{name: "sql", err: boom}
		secondary := &fakeEngine{name: "frame", err: boom}
		results, err := cache.New(8)
		So(err, ShouldBeNil)
		d := New(primary, secondary, WithCache(results))

		Convey("When the same query runs twice", func() {
			_, err1 := d.ListPlayers(ctx, listParams())
			_, err2 := d.ListPlayers(ctx, listParams())

			Convey("Then failures are never cached", func() {
				So(err1, ShouldNotBeNil)
				So(err2, ShouldNotBeNil)
				So(d.CachedResults(), ShouldEqual, 0)
				So(primary.calls, ShouldEqual, 2)
			})
		})
	})
}
