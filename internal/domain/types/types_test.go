package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/firstlevel/internal/domain/model"
	types "github.com/okian/firstlevel/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDesignView(t *testing.T) {
	Convey("Given a pending design view", t, func() {
		ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		v := types.DesignView{ID: "d1", Status: "pending", CreatedAt: ts, UpdatedAt: ts}

		Convey("When encoded", func() {
			data, err := json.Marshal(v)
			So(err, ShouldBeNil)
			var raw map[string]any
			So(json.Unmarshal(data, &raw), ShouldBeNil)

			Convey("Then the model and error fields are omitted", func() {
				So(raw, ShouldNotContainKey, "model")
				So(raw, ShouldNotContainKey, "error")
				So(raw["status"], ShouldEqual, "pending")
				So(raw["created_at"], ShouldEqual, "2026-01-02T03:04:05Z")
			})
		})
	})

	Convey("Given a ready design view", t, func() {
		m := model.NewConditionModel([]string{"Finger"}, [][]float64{{10}}, [][]float64{{15}})
		v := types.DesignView{ID: "d2", Status: "ready", Trials: 1, Model: &m}

		Convey("When encoded", func() {
			data, err := json.Marshal(v)
			So(err, ShouldBeNil)
			var raw struct {
				Model map[string]any `json:"model"`
			}
			So(json.Unmarshal(data, &raw), ShouldBeNil)

			Convey("Then the model uses the bunch shape", func() {
				So(raw.Model["conditions"], ShouldResemble, []any{"Finger"})
				So(raw.Model["onsets"], ShouldResemble, []any{[]any{10.0}})
			})
		})
	})
}

func TestReceipt(t *testing.T) {
	Convey("Given a duplicate receipt", t, func() {
		r := types.Receipt{ID: "d1", Status: "ready", Duplicate: true}

		Convey("Then it encodes all three fields", func() {
			data, err := json.Marshal(r)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"id":"d1","status":"ready","duplicate":true}`)
		})
	})
}
