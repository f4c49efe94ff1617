package records

import (
	"strings"

	"github.com/thehopecrystal/verify-properties/internal/models"
)

// PropertyFilter narrows a property list. Zero fields match everything.
type PropertyFilter struct {
	Search string
	Status models.PropertyStatus
	Type   models.PropertyType
}

type RequestFilter struct {
	Search  string
	Status  models.RequestStatus
	Purpose models.RequestPurpose
}

func containsFold(term string, fields ...string) bool {
	if term == `` {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterProperties matches Search against title, location, description and
// type.
func FilterProperties(properties []models.Property, f PropertyFilter) []models.Property {
	out := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if !containsFold(f.Search, p.Title, p.Location, p.Description, string(p.Type)) {
			continue
		}
		if f.Status != `` && p.Status != f.Status {
			continue
		}
		if f.Type != `` && p.Type != f.Type {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterRequests matches Search against location, preferred type and
// additional info.
func FilterRequests(requests []models.PropertyRequest, f RequestFilter) []models.PropertyRequest {
	out := make([]models.PropertyRequest, 0, len(requests))
	for _, r := range requests {
		if !containsFold(f.Search, r.Location, string(r.PreferredType), r.AdditionalInfo) {
			continue
		}
		if f.Status != `` && r.Status != f.Status {
			continue
		}
		if f.Purpose != `` && r.Purpose != f.Purpose {
			continue
		}
		out = append(out, r)
	}
	return out
}
