package service

import (
	"bytes"
	"context"

	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/internal/domain/grouping"
	"github.com/okian/firstlevel/internal/domain/model"
)

// tableBuilder parses an event table and groups it.
type tableBuilder struct {
	opts []eventfile.Option
}

func (b tableBuilder) Build(ctx context.Context, payload []byte) (model.ConditionModel, error) {
	recs, err := eventfile.Read(ctx, bytes.NewReader(payload), b.opts...)
	if err != nil {
		return model.ConditionModel{}, err
	}
	return grouping.Group(recs)
}
