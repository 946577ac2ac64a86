package models

// Pagination mirrors the pagination block upstream services attach to lists.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
