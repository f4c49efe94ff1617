package records

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/thehopecrystal/verify-properties/internal/models"
)

const recentLimit = 5

type Dashboard struct {
	TotalProperties    int                           `json:"totalProperties"`
	TotalRequests      int                           `json:"totalRequests"`
	PropertiesByStatus map[models.PropertyStatus]int `json:"propertiesByStatus"`
	RequestsByStatus   map[models.RequestStatus]int  `json:"requestsByStatus"`
	RecentProperties   []models.Property             `json:"recentProperties"`
	RecentRequests     []models.PropertyRequest      `json:"recentRequests"`
}

// Dashboard summarizes the actor's scoped view: totals, counts per status and
// the most recent submissions first.
func (s *Store) Dashboard(ctx context.Context, actor *models.Account) (Dashboard, error) {
	properties, err := s.ScopedProperties(ctx, actor)
	if err != nil {
		return Dashboard{}, err
	}
	requests, err := s.ScopedRequests(ctx, actor)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		TotalProperties:    len(properties),
		TotalRequests:      len(requests),
		PropertiesByStatus: make(map[models.PropertyStatus]int),
		RequestsByStatus:   make(map[models.RequestStatus]int),
	}

	for _, status := range models.PropertyStatuses() {
		d.PropertiesByStatus[status] = 0
	}
	for _, status := range models.RequestStatuses() {
		d.RequestsByStatus[status] = 0
	}
	for _, p := range properties {
		d.PropertiesByStatus[p.Status]++
	}
	for _, r := range requests {
		d.RequestsByStatus[r.Status]++
	}

	slices.SortStableFunc(properties, func(a, b models.Property) int {
		return b.SubmissionDate.Compare(a.SubmissionDate)
	})
	slices.SortStableFunc(requests, func(a, b models.PropertyRequest) int {
		return b.SubmissionDate.Compare(a.SubmissionDate)
	})

	d.RecentProperties = properties[:min(recentLimit, len(properties))]
	d.RecentRequests = requests[:min(recentLimit, len(requests))]

	return d, nil
}
