package models

import "fmt"

type Role string

const (
	RoleUser  Role = `user`
	RoleAdmin Role = `admin`
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type PropertyType string

const (
	TypeResidential  PropertyType = `Residential`
	TypeCommercial   PropertyType = `Commercial`
	TypeLand         PropertyType = `Land`
	TypeVehicle      PropertyType = `Vehicle`
	TypeIndustrial   PropertyType = `Industrial`
	TypeAgricultural PropertyType = `Agricultural`
)

func PropertyTypes() []PropertyType {
	return []PropertyType{TypeResidential, TypeCommercial, TypeLand, TypeVehicle, TypeIndustrial, TypeAgricultural}
}

func (t PropertyType) Valid() bool {
	switch t {
	case TypeResidential, TypeCommercial, TypeLand, TypeVehicle, TypeIndustrial, TypeAgricultural:
		return true
	}
	return false
}

func ParsePropertyType(s string) (PropertyType, error) {
	t := PropertyType(s)
	if !t.Valid() {
		return ``, fmt.Errorf(`unknown property type %q`, s)
	}
	return t, nil
}

type PropertyStatus string

const (
	PropertyPending   PropertyStatus = `Pending`
	PropertyReviewing PropertyStatus = `Reviewing`
	PropertyVerified  PropertyStatus = `Verified`
	PropertyRejected  PropertyStatus = `Rejected`
)

func PropertyStatuses() []PropertyStatus {
	return []PropertyStatus{PropertyPending, PropertyReviewing, PropertyVerified, PropertyRejected}
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyPending, PropertyReviewing, PropertyVerified, PropertyRejected:
		return true
	}
	return false
}

func ParsePropertyStatus(s string) (PropertyStatus, error) {
	status := PropertyStatus(s)
	if !status.Valid() {
		return ``, fmt.Errorf(`unknown property status %q`, s)
	}
	return status, nil
}

type RequestStatus string

const (
	RequestPending   RequestStatus = `Pending`
	RequestReviewing RequestStatus = `Reviewing`
	RequestCompleted RequestStatus = `Completed`
	RequestRejected  RequestStatus = `Rejected`
)

func RequestStatuses() []RequestStatus {
	return []RequestStatus{RequestPending, RequestReviewing, RequestCompleted, RequestRejected}
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestReviewing, RequestCompleted, RequestRejected:
		return true
	}
	return false
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	status := RequestStatus(s)
	if !status.Valid() {
		return ``, fmt.Errorf(`unknown request status %q`, s)
	}
	return status, nil
}

type RequestPurpose string

const (
	PurposePurchase    RequestPurpose = `Purchase`
	PurposeRent        RequestPurpose = `Rent`
	PurposeInvestment  RequestPurpose = `Investment`
	PurposeInformation RequestPurpose = `Information`
)

func (p RequestPurpose) Valid() bool {
	switch p {
	case PurposePurchase, PurposeRent, PurposeInvestment, PurposeInformation:
		return true
	}
	return false
}

func ParseRequestPurpose(s string) (RequestPurpose, error) {
	p := RequestPurpose(s)
	if !p.Valid() {
		return ``, fmt.Errorf(`unknown request purpose %q`, s)
	}
	return p, nil
}
