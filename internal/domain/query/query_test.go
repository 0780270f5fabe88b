package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/bsamaha/draftlab/internal/domain/model"
)

func TestListPlayersParams(t *testing.T) {
	Convey("Given list parameters", t, func() {
		Convey("When normalizing zero values", func() {
			p := ListPlayersParams{}.Normalize()

			So(p.Limit, ShouldEqual, DefaultPageLimit)
			So(p.SortBy, ShouldEqual, SortByAvgPick)
			So(p.SortOrder, ShouldEqual, Asc)
		})

		Convey("When validating good parameters", func() {
			p := ListPlayersParams{
				Positions: []model.Position{model.QB, model.TE},
				Limit:     10,
				SortBy:    SortByName,
				SortOrder: Desc,
			}
			So(p.Validate(), ShouldBeNil)
		})

		Convey("When validating bad parameters", func() {
			bad := []ListPlayersParams{
				{Positions: []model.Position{"FB"}, Limit: 10, SortBy: SortByName, SortOrder: Asc},
				{Limit: 0, SortBy: SortByName, SortOrder: Asc},
				{Limit: MaxPageLimit + 1, SortBy: SortByName, SortOrder: Asc},
				{Limit: 10, Offset: -1, SortBy: SortByName, SortOrder: Asc},
				{Limit: 10, SortBy: "height", SortOrder: Asc},
				{Limit: 10, SortBy: SortByName, SortOrder: "sideways"},
			}
			for _, p := range bad {
				So(p.Validate(), ShouldWrap, ErrInvalidQuery)
			}
		})
	})
}

func TestSlotCorrelationParams(t *testing.T) {
	Convey("Given slot correlation parameters", t, func() {
		Convey("When normalizing zero values", func() {
			p := SlotCorrelationParams{Slot: 3}.Normalize()

			So(p.Metric, ShouldEqual, MetricPercent)
			So(p.TopN, ShouldEqual, DefaultTopN)
		})

		Convey("When validating bad parameters", func() {
			bad := []SlotCorrelationParams{
				{Slot: 0, Metric: MetricCount, TopN: 5},
				{Slot: 13, Metric: MetricCount, TopN: 5},
				{Slot: 3, Metric: "lift", TopN: 5},
				{Slot: 3, Metric: MetricCount, TopN: 0},
				{Slot: 3, Metric: MetricCount, TopN: MaxTopN + 1},
				{Slot: 3, Metric: MetricCount, TopN: 5, MinSlotTeams: -1},
			}
			for _, p := range bad {
				So(p.Validate(), ShouldWrap, ErrInvalidQuery)
			}
		})
	})
}

func TestRoundCountsParams(t *testing.T) {
	Convey("Given round count parameters", t, func() {
		Convey("Then the default aggregation is mean", func() {
			So(RoundCountsParams{Position: model.RB}.Normalize().Aggregation, ShouldEqual, Mean)
		})

		Convey("And unknown positions or aggregations are rejected", func() {
			So(RoundCountsParams{Position: "FB", Aggregation: Mean}.Validate(), ShouldWrap, ErrInvalidQuery)
			So(RoundCountsParams{Position: model.RB, Aggregation: "mode"}.Validate(), ShouldWrap, ErrInvalidQuery)
		})
	})
}

func TestMedians(t *testing.T) {
	Convey("Given integer sequences", t, func() {
		Convey("Then odd-length medians pick the middle", func() {
			So(MedianInts([]int{3, 1, 2}), ShouldEqual, 2)
		})

		Convey("And even-length medians average the middles", func() {
			So(MedianInts([]int{4, 1, 3, 2}), ShouldEqual, 2.5)
		})

		Convey("And empty input yields zero", func() {
			So(MedianFloat64(nil), ShouldEqual, 0)
		})

		Convey("And the input is not reordered", func() {
			xs := []float64{3, 1, 2}
			_ = MedianFloat64(xs)
			So(xs, ShouldResemble, []float64{3, 1, 2})
		})
	})
}

func TestPageOf(t *testing.T) {
	Convey("Given pagination arithmetic", t, func() {
		Convey("When the total divides evenly", func() {
			info := PageOf(100, 25, 25)

			So(info.TotalPages, ShouldEqual, 4)
			So(info.CurrentPage, ShouldEqual, 2)
			So(info.HasNext, ShouldBeTrue)
			So(info.HasPrevious, ShouldBeTrue)
		})

		Convey("When the last page is partial", func() {
			info := PageOf(101, 25, 100)

			So(info.TotalPages, ShouldEqual, 5)
			So(info.CurrentPage, ShouldEqual, 5)
			So(info.HasNext, ShouldBeFalse)
		})

		Convey("When there are no rows", func() {
			info := PageOf(0, 25, 0)

			So(info.TotalPages, ShouldEqual, 0)
			So(info.HasNext, ShouldBeFalse)
			So(info.HasPrevious, ShouldBeFalse)
		})
	})
}
