package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/cloudyy74/teams-api/internal/models"
)

func parsePageRequest(r *http.Request) (models.PageRequest, error) {
	var (
		page models.PageRequest
		err  error
	)
	q := r.URL.Query()
	if page.Page, err = positiveParam(q, "page"); err != nil {
		return page, err
	}
	if page.PageSize, err = positiveParam(q, "page_size"); err != nil {
		return page, err
	}
	return page, nil
}

func positiveParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, newFieldError(name, "A valid positive integer is required.")
	}
	return n, nil
}

func newPage[T any](r *http.Request, l *models.Listing[T]) models.Page[T] {
	results := l.Items
	if results == nil {
		results = []T{}
	}
	p := models.Page[T]{
		Count:   l.Total,
		Results: results,
	}
	if int64(l.Page.Page)*int64(l.Page.PageSize) < l.Total {
		next := pageURL(r, l.Page.Page+1)
		p.Next = &next
	}
	if l.Page.Page > 1 {
		prev := pageURL(r, l.Page.Page-1)
		p.Previous = &prev
	}
	return p
}

// pageURL rebuilds the absolute request URL pointing at another page.
// The first page is addressed without a page parameter.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
