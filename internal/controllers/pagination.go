package controllers

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page is the envelope of every paginated list
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest is the resolved page window of a list request
type pageRequest struct {
	Page   int
	Limit  int
	Offset int
}

// Paginator reads page/limit query parameters within the configured bounds
type Paginator struct {
	defaultSize int
	maxSize     int
}

func NewPaginator(defaultSize, maxSize int) Paginator {
	return Paginator{defaultSize: defaultSize, maxSize: maxSize}
}

// parse never fails: malformed values fall back to the defaults
func (p Paginator) parse(c *gin.Context) pageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = p.defaultSize
	}
	if limit > p.maxSize {
		limit = p.maxSize
	}
	return pageRequest{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// newPage wraps results with absolute links to the neighbouring pages
func newPage[T any](c *gin.Context, req pageRequest, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}
	if int64(req.Offset+len(results)) < total {
		page.Next = pageLink(c, req.Page+1)
	}
	if req.Page > 1 {
		page.Previous = pageLink(c, req.Page-1)
	}
	return page
}

func pageLink(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}

	query := c.Request.URL.Query()
	if page == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	link := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	s := link.String()
	return &s
}
