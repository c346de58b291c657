package catalog

import "github.com/janisto/provider-profile/internal/platform/pagination"

// ListInput defines query parameters for listing catalog services.
type ListInput struct {
	pagination.Params
	Category string `query:"category" doc:"Only services in this category" example:"Home"`
}
