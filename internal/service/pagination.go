package service

import (
	"errors"
	"math"

	"github.com/cloudyy74/teams-api/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// maxPage keeps pageOffset within int for every allowed page size.
const maxPage = math.MaxInt / MaxPageSize

var ErrPageNotFound = errors.New("invalid page")

func normalizePage(p models.PageRequest) (models.PageRequest, error) {
	verr := &ValidationError{}
	if p.Page < 0 {
		verr.add("page", "Ensure this value is greater than or equal to 1.")
	}
	if p.PageSize < 0 {
		verr.add("page_size", "Ensure this value is greater than or equal to 1.")
	}
	if len(verr.Fields) > 0 {
		return p, verr
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Page > maxPage {
		return p, ErrPageNotFound
	}
	return p, nil
}

func pageOffset(p models.PageRequest) int {
	return (p.Page - 1) * p.PageSize
}

// checkPageInRange allows the first page of an empty collection only.
func checkPageInRange(p models.PageRequest, total int64) error {
	if p.Page > 1 && int64(p.Page-1) > (total-1)/int64(p.PageSize) {
		return ErrPageNotFound
	}
	return nil
}
