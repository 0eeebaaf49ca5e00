// internal/app/features/roles/payload.go
package roles

import (
	"github.com/taskhubhq/taskhub/internal/app/system/sanitize"
	"github.com/taskhubhq/taskhub/internal/domain/models"
)

// conditionsPayload mirrors models.Conditions with validation tags.
type conditionsPayload struct {
	Own      bool                `json:"own"`
	Assigned bool                `json:"assigned"`
	Status   []models.TaskStatus `json:"status" validate:"omitempty,dive,taskstatus"`
}

// permissionPayload is one resource rule in a role create/update request.
type permissionPayload struct {
	Resource   models.ResourceName `json:"resource" validate:"required,resourcename"`
	Actions    models.Actions      `json:"actions"`
	Conditions conditionsPayload   `json:"conditions"`
}

type rolePayload struct {
	Name        string              `json:"name" validate:"required,max=100"`
	Description string              `json:"description" validate:"max=500"`
	Permissions []permissionPayload `json:"permissions" validate:"dive"`
}

func (p *rolePayload) sanitize() {
	p.Name = sanitize.Text(p.Name)
	p.Description = sanitize.Text(p.Description)
}

func (p *rolePayload) toPermissions() []models.Permission {
	out := make([]models.Permission, 0, len(p.Permissions))
	for _, pp := range p.Permissions {
		out = append(out, models.Permission{
			Resource: pp.Resource,
			Actions:  pp.Actions,
			Conditions: models.Conditions{
				Own:      pp.Conditions.Own,
				Assigned: pp.Conditions.Assigned,
				Status:   pp.Conditions.Status,
			},
		})
	}
	return out
}
