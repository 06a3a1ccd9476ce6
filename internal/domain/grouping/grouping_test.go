package grouping_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/okian/firstlevel/internal/domain/grouping"
	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/internal/paradigm"
	. "github.com/smartystreets/goconvey/convey"
)

func rec(onset, duration float64, label string) model.TrialRecord {
	return model.TrialRecord{Onset: onset, Duration: duration, TrialType: label}
}

func TestGroup(t *testing.T) {
	Convey("Given the motor localizer example", t, func() {
		records := []model.TrialRecord{
			rec(10, 15, "Finger"),
			rec(40, 15, "Foot"),
			rec(70, 15, "Lips"),
			rec(100, 15, "Finger"),
			rec(130, 15, "Foot"),
		}

		Convey("When grouping", func() {
			m, err := grouping.Group(records)

			Convey("Then conditions, onsets and durations are grouped by first appearance", func() {
				So(err, ShouldBeNil)
				So(m.Conditions(), ShouldResemble, []string{"Finger", "Foot", "Lips"})
				So(m.Onsets(), ShouldResemble, [][]float64{{10, 100}, {40, 130}, {70}})
				So(m.Durations(), ShouldResemble, [][]float64{{15, 15}, {15, 15}, {15}})
			})
		})
	})

	Convey("Given empty input", t, func() {
		for _, in := range [][]model.TrialRecord{nil, {}} {
			m, err := grouping.Group(in)

			So(err, ShouldBeNil)
			So(m.Conditions(), ShouldNotBeNil)
			So(m.Conditions(), ShouldBeEmpty)
			So(m.Onsets(), ShouldBeEmpty)
			So(m.Durations(), ShouldBeEmpty)
		}
	})

	Convey("Given records out of time order within a condition", t, func() {
		records := []model.TrialRecord{
			rec(50, 1, "B"),
			rec(30, 2, "A"),
			rec(10, 3, "B"),
			rec(20, 4, "A"),
		}

		Convey("Then input order is kept, not sorted by onset or label", func() {
			m, err := grouping.Group(records)
			So(err, ShouldBeNil)
			So(m.Conditions(), ShouldResemble, []string{"B", "A"})
			So(m.Onsets(), ShouldResemble, [][]float64{{50, 10}, {30, 20}})
			So(m.Durations(), ShouldResemble, [][]float64{{1, 3}, {2, 4}})
		})
	})

	Convey("Given records with weights", t, func() {
		w := 2.0
		records := []model.TrialRecord{{Onset: 1, Duration: 1, TrialType: "A", Weight: &w}}

		Convey("Then weights do not affect the model", func() {
			m, err := grouping.Group(records)
			So(err, ShouldBeNil)
			So(m.Onsets(), ShouldResemble, [][]float64{{1}})
			So(m.Durations(), ShouldResemble, [][]float64{{1}})
		})
	})
}

func TestGroupErrors(t *testing.T) {
	Convey("Given a record without a trial type", t, func() {
		records := []model.TrialRecord{rec(10, 15, "Finger"), rec(40, 15, "")}

		Convey("When grouping", func() {
			m, err := grouping.Group(records)

			Convey("Then it fails with a malformed record error and no partial output", func() {
				So(errors.Is(err, grouping.ErrMalformedRecord), ShouldBeTrue)
				var recErr *grouping.RecordError
				So(errors.As(err, &recErr), ShouldBeTrue)
				So(recErr.Index, ShouldEqual, 1)
				So(recErr.Field, ShouldEqual, grouping.FieldTrialType)
				So(m.Len(), ShouldEqual, 0)
				So(m.TrialCount(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given non-finite onsets or durations", t, func() {
		cases := []struct {
			record model.TrialRecord
			field  string
		}{
			{rec(math.NaN(), 1, "A"), grouping.FieldOnset},
			{rec(math.Inf(1), 1, "A"), grouping.FieldOnset},
			{rec(1, math.NaN(), "A"), grouping.FieldDuration},
			{rec(1, math.Inf(-1), "A"), grouping.FieldDuration},
		}

		Convey("Then each fails with a not-numeric error naming the field", func() {
			for _, c := range cases {
				m, err := grouping.Group([]model.TrialRecord{c.record})
				So(errors.Is(err, grouping.ErrNotNumeric), ShouldBeTrue)
				So(errors.Is(err, grouping.ErrMalformedRecord), ShouldBeFalse)
				var recErr *grouping.RecordError
				So(errors.As(err, &recErr), ShouldBeTrue)
				So(recErr.Field, ShouldEqual, c.field)
				So(err.Error(), ShouldContainSubstring, c.field)
				So(m.Len(), ShouldEqual, 0)
			}
		})
	})
}

func TestGroupProperties(t *testing.T) {
	Convey("Given shuffled paradigms across several seeds", t, func() {
		for seed := int64(1); seed <= 25; seed++ {
			records := paradigm.New(
				paradigm.WithConditions("A", "B", "C", "D", "E"),
				paradigm.WithCycles(int(seed%6)),
				paradigm.WithShuffle(true),
				paradigm.WithJitter(3),
				paradigm.WithSeed(seed),
			).Records()

			m, err := grouping.Group(records)
			So(err, ShouldBeNil)

			conds := m.Conditions()
			onsets := m.Onsets()
			durations := m.Durations()

			// alignment
			So(len(onsets), ShouldEqual, len(conds))
			So(len(durations), ShouldEqual, len(conds))

			// per-condition counts and order
			for i, label := range conds {
				var want []float64
				for _, r := range records {
					if r.TrialType == label {
						want = append(want, r.Onset)
					}
				}
				So(len(onsets[i]), ShouldEqual, len(want))
				So(len(durations[i]), ShouldEqual, len(want))
				So(onsets[i], ShouldResemble, want)
			}

			// first-occurrence ordering
			var firstSeen []string
			seen := map[string]bool{}
			for _, r := range records {
				if !seen[r.TrialType] {
					seen[r.TrialType] = true
					firstSeen = append(firstSeen, r.TrialType)
				}
			}
			if len(records) > 0 {
				So(conds[0], ShouldEqual, records[0].TrialType)
				So(conds, ShouldResemble, firstSeen)
			}

			// idempotence
			again, err := grouping.Group(m.Flatten())
			So(err, ShouldBeNil)
			So(again.Conditions(), ShouldResemble, conds)
			So(again.Onsets(), ShouldResemble, onsets)
			So(again.Durations(), ShouldResemble, durations)
		}
	})
}

func TestGroupConcurrent(t *testing.T) {
	Convey("Given many goroutines grouping the same input", t, func() {
		records := paradigm.New(paradigm.WithCycles(10), paradigm.WithShuffle(true)).Records()
		want, err := grouping.Group(records)
		So(err, ShouldBeNil)

		const n = 16
		results := make([]model.ConditionModel, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = grouping.Group(records)
			}(i)
		}
		wg.Wait()

		Convey("Then every result is identical", func() {
			for _, got := range results {
				So(got.Conditions(), ShouldResemble, want.Conditions())
				So(got.Onsets(), ShouldResemble, want.Onsets())
			}
		})
	})
}
