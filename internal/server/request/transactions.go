package request

import (
	"fmt"
	"net/http"
)

// Sort directions accepted by ListTransactions.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// ListTransactions describes a paginated transactions listing.
type ListTransactions struct {
	Base

	Page      int
	PageSize  int
	SortBy    string
	Direction string

	// Optional filters.
	TypeIs     string
	DateAfter  string
	DateBefore string
	DepositID  string
}

func (r *ListTransactions) Method() string     { return http.MethodGet }
func (r *ListTransactions) Route() string      { return "/transactions" }
func (r *ListTransactions) SiteSpecific() bool { return true }
func (r *ListTransactions) UseUserToken() bool { return false }

func (r *ListTransactions) Validate() error {
	if r.Page < 0 {
		return &ValidationError{Field: "page", Reason: "must not be negative"}
	}
	if r.PageSize < 0 {
		return &ValidationError{Field: "pagesize", Reason: "must not be negative"}
	}
	if r.Direction != "" && r.Direction != SortAscending && r.Direction != SortDescending {
		return &ValidationError{Field: "direction", Reason: "must be asc or desc"}
	}
	return nil
}

func (r *ListTransactions) Parameters() map[string]string {
	params := make(map[string]string)
	if r.Page > 0 {
		params["page"] = fmt.Sprintf("%d", r.Page)
	}
	if r.PageSize > 0 {
		params["pagesize"] = fmt.Sprintf("%d", r.PageSize)
	}
	if r.SortBy != "" {
		params["sort"] = r.SortBy
	}
	if r.Direction != "" {
		params["direction"] = r.Direction
	}
	if r.TypeIs != "" {
		params["type_is"] = r.TypeIs
	}
	if r.DateAfter != "" {
		params["date_after"] = r.DateAfter
	}
	if r.DateBefore != "" {
		params["date_before"] = r.DateBefore
	}
	if r.DepositID != "" {
		params["deposit_id"] = r.DepositID
	}
	return params
}

// CreateCustomer describes creating a remote customer record for a shopper.
type CreateCustomer struct {
	Base

	Name  string
	Email string
}

func (r *CreateCustomer) Method() string     { return http.MethodPost }
func (r *CreateCustomer) Route() string      { return "/customers" }
func (r *CreateCustomer) SiteSpecific() bool { return true }
func (r *CreateCustomer) UseUserToken() bool { return false }

func (r *CreateCustomer) Validate() error {
	return requireString("name", r.Name)
}

func (r *CreateCustomer) Parameters() map[string]string {
	params := map[string]string{"name": r.Name}
	if r.Email != "" {
		params["email"] = r.Email
	}
	return params
}
