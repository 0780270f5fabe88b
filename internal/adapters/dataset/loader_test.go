package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/bsamaha/draftlab/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const validCSV = `draft,team_id,draft_position,round,pick,player,Position,Team
1,11,1,1,1,Justin Jefferson,WR,MIN
1,11,1,2,4,Travis Kelce,TE,KC
1,12,2,1,2,Christian McCaffrey,RB,SF
2,21,1,1,1,Justin Jefferson,WR,MIN
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "picks.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a valid picks CSV", t, func() {
		path := writeTemp(t, validCSV)

		Convey("When loading it", func() {
			rel, err := Load(context.Background(), path)

			Convey("Then the relation and metadata are populated", func() {
				So(err, ShouldBeNil)
				So(rel.NumRows(), ShouldEqual, 4)
				So(rel.TotalDrafts(), ShouldEqual, 2)
				So(rel.TotalTeams(), ShouldEqual, 3)

				meta := rel.Metadata()
				So(meta.TotalPlayers, ShouldEqual, 3)
				So(meta.AllPlayers, ShouldResemble, []string{
					"Christian McCaffrey", "Justin Jefferson", "Travis Kelce",
				})
			})

			Convey("And row accessors return the parsed values", func() {
				So(err, ShouldBeNil)
				So(rel.Player(1), ShouldEqual, "Travis Kelce")
				So(rel.Round(1), ShouldEqual, 2)
				So(rel.OverallPick(1), ShouldEqual, 4)
				So(string(rel.Position(1)), ShouldEqual, "TE")
				So(rel.Row(2).Team, ShouldEqual, "SF")
			})
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

		Convey("Then loading fails with ErrDataLoad", func() {
			So(err, ShouldWrap, ErrDataLoad)
		})
	})

	Convey("Given a CSV without a required column", t, func() {
		path := writeTemp(t, "draft,team_id,round,pick,player,Position,Team\n1,11,1,1,A,QB,KC\n")
		_, err := Load(context.Background(), path)

		Convey("Then loading fails with ErrDataLoad naming the column", func() {
			So(err, ShouldWrap, ErrDataLoad)
			So(err.Error(), ShouldContainSubstring, "draft_position")
		})
	})

	Convey("Given a CSV with a malformed integer cell", t, func() {
		path := writeTemp(t, "draft,team_id,draft_position,round,pick,player,Position,Team\n1,11,1,one,1,A,QB,KC\n")
		_, err := Load(context.Background(), path)

		Convey("Then loading fails with the offending line", func() {
			So(err, ShouldWrap, ErrDataLoad)
			So(err.Error(), ShouldContainSubstring, "line 2")
		})
	})

	Convey("Given a CSV with a pick beyond the storable range", t, func() {
		path := writeTemp(t, "draft,team_id,draft_position,round,pick,player,Position,Team\n1,11,1,1,40000,A,QB,KC\n")
		_, err := Load(context.Background(), path)

		Convey("Then loading fails instead of storing a corrupted value", func() {
			So(err, ShouldWrap, ErrDataLoad)
			So(err.Error(), ShouldContainSubstring, "pick")
			So(err.Error(), ShouldContainSubstring, "out of range")
		})
	})

	Convey("Given a CSV with a negative team identifier", t, func() {
		path := writeTemp(t, "draft,team_id,draft_position,round,pick,player,Position,Team\n1,-5,1,1,1,A,QB,KC\n")
		_, err := Load(context.Background(), path)

		Convey("Then loading fails with ErrDataLoad", func() {
			So(err, ShouldWrap, ErrDataLoad)
		})
	})

	Convey("Given a CSV with an unknown position", t, func() {
		path := writeTemp(t, "draft,team_id,draft_position,round,pick,player,Position,Team\n1,11,1,1,1,A,FB,KC\n")
		_, err := Load(context.Background(), path)

		Convey("Then loading fails with ErrDataLoad", func() {
			So(err, ShouldWrap, ErrDataLoad)
		})
	})
}
