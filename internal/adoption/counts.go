package adoption

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// ServiceCount is the live per-service configured counter.
type ServiceCount struct {
	Service    string `json:"service"`
	Configured int    `json:"configured"`
	Total      int    `json:"total"`
}

// Counts derives configured/total per service, in the order of services.
// Services present in rows but not listed are appended in first-seen order.
func Counts(rows []models.AppAdoption, services []string) []ServiceCount {
	index := map[string]int{}
	out := make([]ServiceCount, 0, len(services))
	for _, svc := range services {
		index[svc] = len(out)
		out = append(out, ServiceCount{Service: svc})
	}
	for _, row := range rows {
		i, ok := index[row.Service]
		if !ok {
			i = len(out)
			index[row.Service] = i
			out = append(out, ServiceCount{Service: row.Service})
		}
		out[i].Total++
		if row.Status == enums.AdoptionStatusConfigured {
			out[i].Configured++
		}
	}
	return out
}

// Totals sums configured and total records across services.
func Totals(rows []models.AppAdoption) (configured, total int) {
	for _, row := range rows {
		total++
		if row.Status == enums.AdoptionStatusConfigured {
			configured++
		}
	}
	return configured, total
}

// ServiceStatus is one outstanding service for a member.
type ServiceStatus struct {
	Service string               `json:"service"`
	Status  enums.AdoptionStatus `json:"status"`
}

// PendingMember lists the services a member still has to finish.
type PendingMember struct {
	MemberID uuid.UUID        `json:"member_id"`
	Name     string           `json:"name"`
	Role     enums.FamilyRole `json:"role"`
	Contact  string           `json:"contact_address,omitempty"`
	Services []ServiceStatus  `json:"services"`
}

// Pending returns members with at least one service not yet configured, in
// member order.
func Pending(members []models.FamilyMember, rows []models.AppAdoption) []PendingMember {
	byMember := map[uuid.UUID][]ServiceStatus{}
	for _, row := range rows {
		if row.Status == enums.AdoptionStatusConfigured {
			continue
		}
		byMember[row.MemberID] = append(byMember[row.MemberID], ServiceStatus{Service: row.Service, Status: row.Status})
	}

	out := []PendingMember{}
	for _, member := range members {
		outstanding := byMember[member.ID]
		if len(outstanding) == 0 {
			continue
		}
		out = append(out, PendingMember{
			MemberID: member.ID,
			Name:     member.Name,
			Role:     member.Role,
			Contact:  member.ContactAddress,
			Services: outstanding,
		})
	}
	return out
}
