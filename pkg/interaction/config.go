package interaction

import (
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// ViewConfig is the externally supplied configuration of a chart view.
type ViewConfig struct {
	OrganizationID string             `json:"organization_id" yaml:"organization_id" toml:"organization_id"`
	ViewMode       hierarchy.ViewMode `json:"view_mode" yaml:"view_mode" toml:"view_mode" validate:"required"`
	DetailLevel    int                `json:"detail_level" yaml:"detail_level" toml:"detail_level" validate:"min=1,max=64"`
	ZoomPercent    float64            `json:"zoom_percent" yaml:"zoom_percent" toml:"zoom_percent" validate:"gt=0,lte=1000"`
	ReadOnly       bool               `json:"read_only" yaml:"read_only" toml:"read_only"`
}

// DefaultViewConfig returns a read-only business view showing two levels.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		ViewMode:    hierarchy.ViewBusiness,
		DetailLevel: 2,
		ZoomPercent: 100,
		ReadOnly:    true,
	}
}

// Validate rejects malformed configuration before it reaches the controller.
// An empty organization id is allowed and means "nothing selected yet".
func (c ViewConfig) Validate() error {
	if _, err := hierarchy.ParseViewMode(string(c.ViewMode)); err != nil {
		return err
	}
	if c.OrganizationID != "" {
		if err := errors.ValidateOrganizationID(c.OrganizationID); err != nil {
			return err
		}
	}
	return errors.ValidateStruct(errors.ErrCodeInvalidConfig, c)
}

// Status is the load state of the controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// DisplayMode selects between the chart and the flat list.
type DisplayMode string

const (
	DisplayTree DisplayMode = "tree"
	DisplayList DisplayMode = "list"
)

// Request describes a hierarchy fetch issued by the controller.
type Request struct {
	Token          uint64
	OrganizationID string
	ViewMode       hierarchy.ViewMode
}
