package binning

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func sumCounts(bins []Bin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}

func sumPercentages(bins []Bin) float64 {
	total := 0.0
	for _, b := range bins {
		total += b.Percentage
	}
	return total
}

func TestHistogramInvariants(t *testing.T) {
	Convey("Given a set of pick sequences", t, func() {
		sequences := [][]int{
			{1, 1, 2, 3, 36, 40},
			{1, 2, 3, 4, 5, 6},
			{7, 7, 7, 7},
			{1, 50, 100, 150, 200},
			{12, 24, 36, 48, 60, 72, 84},
			{5, 5, 6, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17},
		}

		Convey("Then every histogram preserves the structural invariants", func() {
			for _, picks := range sequences {
				bins := Histogram(picks)

				// Counts sum to the input length and percentages to ~100.
				So(sumCounts(bins), ShouldEqual, len(picks))
				So(sumPercentages(bins), ShouldAlmostEqual, 100, 0.5)

				// No empty bins; bins ordered and non-overlapping.
				for i, b := range bins {
					So(b.Count, ShouldBeGreaterThan, 0)
					if i > 0 {
						So(b.Lo, ShouldBeGreaterThan, bins[i-1].Hi)
					}
				}

				// Bins cover the min and max of the input.
				lo, hi := picks[0], picks[0]
				for _, p := range picks {
					if p < lo {
						lo = p
					}
					if p > hi {
						hi = p
					}
				}
				So(bins[0].Lo, ShouldEqual, lo)
				So(bins[len(bins)-1].Hi, ShouldEqual, hi)
			}
		})
	})
}

func TestHistogramTierWidths(t *testing.T) {
	Convey("Given tightly clustered picks (range 5)", t, func() {
		tight := Histogram([]int{1, 2, 3, 4, 5, 6})

		Convey("And widely dispersed picks (range 39)", func() {
			wide := Histogram([]int{1, 1, 2, 3, 36, 40})

			Convey("Then the dispersed data gets coarser buckets", func() {
				tightWidth := tight[0].Hi - tight[0].Lo + 1
				wideWidth := wide[0].Hi - wide[0].Lo + 1
				So(wideWidth, ShouldBeGreaterThan, tightWidth)
			})
		})
	})

	Convey("Given a range of 5 (tier <= 12)", t, func() {
		bins := Histogram([]int{1, 2, 3, 4, 5, 6})

		Convey("Then bucket width is 1", func() {
			for _, b := range bins {
				So(b.Hi-b.Lo, ShouldEqual, 0)
			}
		})
	})

	Convey("Given a large range (tier > 84)", t, func() {
		bins := Histogram([]int{1, 250})

		Convey("Then bucket width is at least 12 and at most 20 buckets exist", func() {
			So(bins[0].Hi-bins[0].Lo+1, ShouldBeGreaterThanOrEqualTo, 12)
			So(len(bins), ShouldBeLessThanOrEqualTo, 20)
		})
	})
}

func TestHistogramEdgeCases(t *testing.T) {
	Convey("Given empty input", t, func() {
		Convey("Then the result is empty", func() {
			So(Histogram(nil), ShouldBeEmpty)
			So(Histogram([]int{}), ShouldBeEmpty)
		})
	})

	Convey("Given single-point input", t, func() {
		bins := Histogram([]int{7, 7, 7, 7})

		Convey("Then one bin holds every pick at 100%", func() {
			So(len(bins), ShouldEqual, 1)
			So(bins[0].Label, ShouldEqual, "7")
			So(bins[0].Count, ShouldEqual, 4)
			So(bins[0].Percentage, ShouldEqual, 100.0)
		})
	})

	Convey("Given a value exactly on a bucket boundary", t, func() {
		// Range 9, tier <= 12: width 2 from min=1; value 3 lands in [3,4],
		// the bin it opens, not in [1,2].
		bins := Histogram([]int{1, 3, 10})

		Convey("Then it resolves to its inclusive lower bin", func() {
			var found *Bin
			for i := range bins {
				if bins[i].Lo <= 3 && 3 <= bins[i].Hi {
					found = &bins[i]
				}
			}
			So(found, ShouldNotBeNil)
			So(found.Lo, ShouldEqual, 3)
		})
	})

	Convey("Given determinism requirements", t, func() {
		a := Histogram([]int{4, 9, 1, 16, 25})
		b := Histogram([]int{4, 9, 1, 16, 25})

		Convey("Then repeated runs produce identical bins", func() {
			So(a, ShouldResemble, b)
		})
	})
}
