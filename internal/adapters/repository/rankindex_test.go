package repository

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorecard/internal/domain/model"
)

func TestRankIndex(t *testing.T) {
	Convey("Given a rank index with random scores", t, func() {
		ix := NewRankIndex()
		rng := rand.New(rand.NewSource(7))
		want := map[string]int{}
		for i := 0; i < 500; i++ {
			id := fmt.Sprintf("e%03d", rng.Intn(300))
			score := rng.Intn(101)
			kind := model.EntityLead
			if i%3 == 0 {
				kind = model.EntityDeal
			}
			rec := model.ScoreRecord{EntityType: kind, EntityID: id, Score: score}
			ix.Upsert(rec)
			want[rec.Key()] = score
		}

		Convey("Then every key is indexed once", func() {
			So(ix.Len(), ShouldEqual, len(want))
			So(nsize(ix.all), ShouldEqual, len(want))
		})

		Convey("Then a full page matches a sort by score desc, key asc", func() {
			keys := make([]string, 0, len(want))
			for k := range want {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return before(want[keys[i]], keys[i], want[keys[j]], keys[j]) })

			page, total, err := ix.Page("", 0, 0, len(want)+10)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, len(want))
			for i, r := range page {
				So(r.Key(), ShouldEqual, keys[i])
			}

			Convey("And offsets seek into the same order", func() {
				mid, _, err := ix.Page("", 0, 17, 5)
				So(err, ShouldBeNil)
				So(len(mid), ShouldEqual, 5)
				for i, r := range mid {
					So(r.Key(), ShouldEqual, keys[17+i])
				}
			})
		})

		Convey("Then per-type counts add up", func() {
			_, leads, _ := ix.Page(model.EntityLead, 0, 0, 1)
			_, deals, _ := ix.Page(model.EntityDeal, 0, 0, 1)
			So(leads+deals, ShouldEqual, len(want))
		})
	})

	Convey("Given tied scores", t, func() {
		ix := NewRankIndex()
		for _, rec := range []model.ScoreRecord{
			{EntityType: "lead", EntityID: "b", Score: 50},
			{EntityType: "lead", EntityID: "a", Score: 50},
			{EntityType: "lead", EntityID: "c", Score: 70},
			{EntityType: "lead", EntityID: "d", Score: 10},
		} {
			ix.Upsert(rec)
		}

		Convey("Then ties share a rank and order by key", func() {
			page, total, err := ix.Page("", 20, 0, 10)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 3)
			So(page[0].Rank, ShouldEqual, 1)
			So(page[1].EntityID, ShouldEqual, "a")
			So(page[1].Rank, ShouldEqual, 2)
			So(page[2].Rank, ShouldEqual, 2)

			r, err := ix.Rank("lead:d")
			So(err, ShouldBeNil)
			So(r.Rank, ShouldEqual, 4)
		})

		Convey("Then an offset past the end yields an empty page", func() {
			page, total, err := ix.Page("", 0, 9, 10)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 4)
			So(page, ShouldBeEmpty)
		})

		Convey("Then bad limits and unknown keys fail", func() {
			_, _, err := ix.Page("", 0, 0, 0)
			So(err, ShouldEqual, ErrInvalidLimit)
			_, err = ix.Rank("lead:zzz")
			So(err, ShouldEqual, ErrNotFound)
		})
	})
}
