package response

import (
	"fmt"
	"net/url"
	"strconv"

	"cinehub/internal/models"
)

// PaginationConfig holds pagination configuration
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	PageParam       string
	SizeParam       string
}

// DefaultPaginationConfig returns default pagination configuration
func DefaultPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
		PageParam:       "page",
		SizeParam:       "page_size",
	}
}

// Page is a parsed page request
type Page struct {
	Number int
	Size   int
}

// PaginationMeta contains pagination information. The total is not counted,
// so HasNext is a guess from a full page.
type PaginationMeta struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// Params converts the page to limit and offset
func (p *Page) Params() models.PaginationParams {
	return models.PaginationParams{Limit: p.Size, Offset: (p.Number - 1) * p.Size}
}

// Meta describes the page given how many rows it returned
func (p *Page) Meta(count int) *PaginationMeta {
	return &PaginationMeta{
		Page:     p.Number,
		PageSize: p.Size,
		HasNext:  count >= p.Size,
		HasPrev:  p.Number > 1,
	}
}

// ParsePage reads page and page_size from the query string
func ParsePage(query url.Values, config *PaginationConfig) (*Page, error) {
	if config == nil {
		config = DefaultPaginationConfig()
	}
	page := &Page{Number: 1, Size: config.DefaultPageSize}

	if raw := query.Get(config.PageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer", config.PageParam)
		}
		page.Number = n
	}

	if raw := query.Get(config.SizeParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer", config.SizeParam)
		}
		if n > config.MaxPageSize {
			return nil, fmt.Errorf("%s cannot exceed %d", config.SizeParam, config.MaxPageSize)
		}
		page.Size = n
	}

	return page, nil
}
