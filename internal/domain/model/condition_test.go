package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/firstlevel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConditionModel(t *testing.T) {
	Convey("Given a condition model", t, func() {
		m := model.NewConditionModel(
			[]string{"Finger", "Foot"},
			[][]float64{{10, 100}, {40}},
			[][]float64{{15, 15}, {15}},
		)

		Convey("Then the accessors expose aligned data", func() {
			So(m.Len(), ShouldEqual, 2)
			So(m.Conditions(), ShouldResemble, []string{"Finger", "Foot"})
			So(m.Onsets(), ShouldResemble, [][]float64{{10, 100}, {40}})
			So(m.Durations(), ShouldResemble, [][]float64{{15, 15}, {15}})
			So(m.TrialCount(), ShouldEqual, 3)
		})

		Convey("When a caller mutates returned slices", func() {
			conds := m.Conditions()
			conds[0] = "Changed"
			onsets := m.Onsets()
			onsets[0][0] = -1

			Convey("Then the model is unchanged", func() {
				So(m.Conditions()[0], ShouldEqual, "Finger")
				So(m.Onsets()[0][0], ShouldEqual, 10)
			})
		})

		Convey("When the constructor input is mutated afterwards", func() {
			labels := []string{"A"}
			onsets := [][]float64{{1}}
			built := model.NewConditionModel(labels, onsets, [][]float64{{2}})
			labels[0] = "B"
			onsets[0][0] = 99

			Convey("Then the model keeps its own copy", func() {
				So(built.Conditions(), ShouldResemble, []string{"A"})
				So(built.Onsets(), ShouldResemble, [][]float64{{1}})
			})
		})

		Convey("When flattened", func() {
			recs := m.Flatten()

			Convey("Then records come out condition by condition", func() {
				So(len(recs), ShouldEqual, 3)
				So(recs[0], ShouldResemble, model.TrialRecord{Onset: 10, Duration: 15, TrialType: "Finger"})
				So(recs[1].Onset, ShouldEqual, 100)
				So(recs[2].TrialType, ShouldEqual, "Foot")
			})
		})
	})
}

func TestConditionModelJSON(t *testing.T) {
	Convey("Given the zero condition model", t, func() {
		var m model.ConditionModel

		Convey("When marshalled", func() {
			data, err := json.Marshal(m)

			Convey("Then all three fields are empty arrays", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"conditions":[],"onsets":[],"durations":[]}`)
			})
		})
	})

	Convey("Given a populated model", t, func() {
		m := model.NewConditionModel([]string{"Lips"}, [][]float64{{70}}, [][]float64{{15}})

		Convey("When marshalled", func() {
			data, err := json.Marshal(m)

			Convey("Then regressors are omitted", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"conditions":["Lips"],"onsets":[[70]],"durations":[[15]]}`)
			})

			Convey("And it decodes back to the same model", func() {
				var back model.ConditionModel
				So(json.Unmarshal(data, &back), ShouldBeNil)
				So(back.Conditions(), ShouldResemble, m.Conditions())
				So(back.Onsets(), ShouldResemble, m.Onsets())
				So(back.Durations(), ShouldResemble, m.Durations())
			})
		})
	})
}

func TestTrialRecordWeight(t *testing.T) {
	Convey("Given trial records", t, func() {
		w := 0.5
		with := model.TrialRecord{TrialType: "A", Weight: &w}
		without := model.TrialRecord{TrialType: "A"}

		Convey("Then HasWeight reflects the optional column", func() {
			So(with.HasWeight(), ShouldBeTrue)
			So(without.HasWeight(), ShouldBeFalse)
		})
	})
}
