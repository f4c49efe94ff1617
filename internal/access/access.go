// Package access decides which records an actor may see and whether the
// actor may change their status. It holds no state; callers evaluate it on
// every retrieval.
package access

import "github.com/thehopecrystal/verify-properties/internal/models"

type Owned interface {
	OwnerId() string
}

// Visible returns every record for an admin and only the actor's own records
// otherwise. Order is preserved.
func Visible[T Owned](actor models.Account, records []T) []T {
	switch actor.Role {
	case models.RoleAdmin:
		out := make([]T, len(records))
		copy(out, records)
		return out
	case models.RoleUser:
		out := make([]T, 0, len(records))
		for _, record := range records {
			if record.OwnerId() == actor.Id {
				out = append(out, record)
			}
		}
		return out
	}
	return []T{}
}

func CanView[T Owned](actor models.Account, record T) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return record.OwnerId() == actor.Id
	}
	return false
}

func CanMutateStatus(actor models.Account) bool {
	return actor.IsAdmin()
}
