package catalog

// Item is a predefined service a provider can add to their profile.
type Item struct {
	ID       string `json:"id"       doc:"Catalog identifier" example:"home-cleaning"`
	Name     string `json:"name"     doc:"Service name"       example:"Cleaning"`
	Category string `json:"category" doc:"Category"           example:"Home"`
}

// ListData is one catalog page plus every category.
type ListData struct {
	Items      []Item   `json:"items"      doc:"Services on this page"`
	Categories []string `json:"categories" doc:"All categories, including the one for custom services"`
	Total      int      `json:"total"      doc:"Services matching the filter" example:"18"`
}

// ListOutput carries the RFC 8288 next link.
type ListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body ListData
}
