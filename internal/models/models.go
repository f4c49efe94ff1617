package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type AuthorizationToken struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

type CustomClaims struct {
	Type   Role   `json:"type"`
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

type Account struct {
	Id       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

// Public returns a copy safe to hand out or keep in session data.
func (a Account) Public() Account {
	a.Password = ``
	return a
}

func (a Account) IsAdmin() bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	}
	return false
}

type Property struct {
	Id             string         `json:"id"`
	UserId         string         `json:"userId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Type           PropertyType   `json:"type"`
	Location       string         `json:"location"`
	Documents      []string       `json:"documents"`
	Status         PropertyStatus `json:"status"`
	SubmissionDate time.Time      `json:"submissionDate"`
	UpdatedDate    time.Time      `json:"updatedDate"`
}

func (p Property) OwnerId() string { return p.UserId }

type PropertyRequest struct {
	Id             string         `json:"id"`
	UserId         string         `json:"userId"`
	PreferredType  PropertyType   `json:"preferredType"`
	Location       string         `json:"location"`
	Purpose        RequestPurpose `json:"purpose"`
	AdditionalInfo string         `json:"additionalInfo"`
	Status         RequestStatus  `json:"status"`
	SubmissionDate time.Time      `json:"submissionDate"`
	UpdatedDate    time.Time      `json:"updatedDate"`
}

func (r PropertyRequest) OwnerId() string { return r.UserId }

type StatusUpdate struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}
