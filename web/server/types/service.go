package types

import (
	"net/http"
	"strconv"
	"time"

	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/xtime"
)

// Service is the API representation of a service.
type Service struct {
	ID                uint64         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	Port              uint16         `json:"port"`
	MaxAccessDuration xtime.Duration `json:"max_access_duration"`
	CreatedAt         time.Time      `json:"created_at,omitzero"`
	UpdatedAt         time.Time      `json:"updated_at,omitzero"`
}

// NewService returns the API representation of the service model.
func NewService(svc models.Service) Service {
	return Service{
		ID:                svc.ID,
		Name:              svc.Name,
		Description:       svc.Description,
		Port:              svc.Port,
		MaxAccessDuration: xtime.Duration(svc.MaxAccessDuration),
		CreatedAt:         svc.CreatedAt,
		UpdatedAt:         svc.UpdatedAt,
	}
}

// ServiceIDRequest is a request that refers to a single service by the ID in
// the URL path.
type ServiceIDRequest struct {
	BaseRequest
	ID uint64 `json:"-"`
}

// Validate parses the service ID from the request path.
func (r *ServiceIDRequest) Validate() error {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return NewError(http.StatusBadRequest, "invalid service ID")
	}
	r.ID = id

	return nil
}

// ServiceData is the service data sent in create and update requests. Only
// the set fields are passed on to the service handlers.
type ServiceData struct {
	Name              *string         `json:"name"`
	Description       *string         `json:"description"`
	Port              *int            `json:"port"`
	MaxAccessDuration *xtime.Duration `json:"max_access_duration"`
}

// Payload returns the set fields of the service data.
func (d ServiceData) Payload() crud.Payload {
	data := crud.Payload{}
	if d.Name != nil {
		data["name"] = *d.Name
	}
	if d.Description != nil {
		data["description"] = *d.Description
	}
	if d.Port != nil {
		data["port"] = *d.Port
	}
	if d.MaxAccessDuration != nil {
		data["max_access_duration"] = *d.MaxAccessDuration
	}

	return data
}

// ServiceCreateRequest is the request to create a new service.
type ServiceCreateRequest struct {
	BaseRequest
	ServiceData
}

// ServiceUpdateRequest is the request to update an existing service.
type ServiceUpdateRequest struct {
	ServiceIDRequest
	ServiceData
}

// ServiceListRequest is the request to list services. Filters are read from
// the URL query.
type ServiceListRequest struct {
	BaseRequest
	Filters crud.Payload `json:"-"`
}

// Validate reads the list filters from the URL query. Values are validated by
// the service handlers.
func (r *ServiceListRequest) Validate() error {
	r.Filters = crud.Payload{}
	query := r.URL.Query()
	for _, key := range []string{"name", "port", "limit", "offset", "order"} {
		if query.Has(key) {
			r.Filters[key] = query.Get(key)
		}
	}

	return nil
}

// ServiceResponse is the response to a request for a single service.
type ServiceResponse struct {
	BaseResponse
	Data *Service `json:"data,omitempty"`
}

// NewServiceResponse returns a response with the given status code and service.
func NewServiceResponse(statusCode int, svc models.Service) *ServiceResponse {
	data := NewService(svc)
	return &ServiceResponse{
		BaseResponse: NewBaseResponse(statusCode, nil),
		Data:         &data,
	}
}

// ServiceListResponse is the response to a request to list services.
type ServiceListResponse struct {
	BaseResponse
	Data []Service `json:"data"`
}

// NewServiceListResponse returns a response with the given services.
func NewServiceListResponse(services []models.Service) *ServiceListResponse {
	data := make([]Service, 0, len(services))
	for _, svc := range services {
		data = append(data, NewService(svc))
	}
	return &ServiceListResponse{
		BaseResponse: NewBaseResponse(http.StatusOK, nil),
		Data:         data,
	}
}
