package catalog

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/provider-profile/internal/platform/logging"
	"github.com/janisto/provider-profile/internal/platform/pagination"
	catalogsvc "github.com/janisto/provider-profile/internal/service/catalog"
)

const cursorType = "catalog"

// Register wires the catalog route. prefix is the API mount path used in
// pagination links.
func Register(api huma.API, svc catalogsvc.Service, prefix string) {
	huma.Register(api, huma.Operation{
		OperationID: "list-catalog",
		Method:      http.MethodGet,
		Path:        "/catalog",
		Summary:     "List predefined services",
		Description: "Returns a page of predefined services and every category. Follow the Link header for more.",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *ListInput) (*ListOutput, error) {
		cursor, err := pagination.Decode(input.Cursor, cursorType)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid cursor")
		}

		items, err := svc.Items(ctx)
		if err != nil {
			applog.LogError(ctx, "listing catalog", err)
			return nil, huma.Error500InternalServerError("internal error")
		}
		categories, err := svc.Categories(ctx)
		if err != nil {
			applog.LogError(ctx, "listing categories", err)
			return nil, huma.Error500InternalServerError("internal error")
		}

		query := url.Values{}
		if input.Category != "" {
			query.Set("category", input.Category)
			items = slices.DeleteFunc(items, func(it catalogsvc.Item) bool {
				return it.Category != input.Category
			})
		}
		if cursor.After != "" && !slices.ContainsFunc(items, func(it catalogsvc.Item) bool {
			return it.ID == cursor.After
		}) {
			return nil, huma.Error400BadRequest("cursor references unknown service")
		}

		page := pagination.Paginate(items, cursor, input.PageSize(),
			func(it catalogsvc.Item) string { return it.ID },
			prefix+"/catalog", query)

		out := &ListOutput{
			Link: page.Link,
			Body: ListData{
				Items:      make([]Item, 0, len(page.Items)),
				Categories: categories,
				Total:      page.Total,
			},
		}
		for _, it := range page.Items {
			out.Body.Items = append(out.Body.Items, Item(it))
		}
		return out, nil
	})
}
