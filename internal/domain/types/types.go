// Package types contains read shapes shared by the service and the API.
package types

import (
	"time"

	"github.com/okian/firstlevel/internal/domain/model"
)

// Receipt acknowledges an accepted upload.
type Receipt struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// DesignView is the read shape of a stored design. Model is set only for
// ready designs.
type DesignView struct {
	ID        string                `json:"id"`
	Subject   string                `json:"subject,omitempty"`
	Run       string                `json:"run,omitempty"`
	Status    string                `json:"status"`
	Trials    int                   `json:"trials"`
	Model     *model.ConditionModel `json:"model,omitempty"`
	Error     string                `json:"error,omitempty"`
	ErrorKind string                `json:"error_kind,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
