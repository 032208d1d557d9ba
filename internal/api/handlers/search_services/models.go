package search_services

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// parseQuery собирает SearchRequest из query параметров
// type, resortId, name, minPrice, maxPrice, minStars, maxStars, rating,
// days (через запятую), sort (name_asc|name_desc), dateFrom, dateTo, guests, perPage, page
func parseQuery(r *http.Request) (*models.SearchRequest, error) {
	q := r.URL.Query()
	req := &models.SearchRequest{
		Name:     q.Get("name"),
		NameDesc: q.Get("sort") == "name_desc",
	}

	if v := q.Get("type"); v != "" {
		req.Type = &v
	}
	if v := q.Get("rating"); v != "" {
		req.Rating = &v
	}
	if v := q.Get("days"); v != "" {
		req.Weekdays = strings.Split(v, ",")
	}

	var err error
	if req.ResortID, err = handlers.QueryInt64Ptr(r, "resortId"); err != nil {
		return nil, err
	}
	if req.MinPrice, err = handlers.QueryInt64Ptr(r, "minPrice"); err != nil {
		return nil, err
	}
	if req.MaxPrice, err = handlers.QueryInt64Ptr(r, "maxPrice"); err != nil {
		return nil, err
	}
	if req.MinStars, err = queryIntPtr(r, "minStars"); err != nil {
		return nil, err
	}
	if req.MaxStars, err = queryIntPtr(r, "maxStars"); err != nil {
		return nil, err
	}
	if req.Guests, err = handlers.QueryInt(r, "guests", 1); err != nil {
		return nil, err
	}
	if req.PerPage, err = handlers.QueryInt(r, "perPage", domain.DefaultPerPage); err != nil {
		return nil, err
	}
	if req.Page, err = handlers.QueryInt(r, "page", 1); err != nil {
		return nil, err
	}

	if v := q.Get("dateFrom"); v != "" {
		from, err := daterange.Parse(v)
		if err != nil {
			return nil, err
		}
		req.DateFrom = &from
	}
	if v := q.Get("dateTo"); v != "" {
		to, err := daterange.Parse(v)
		if err != nil {
			return nil, err
		}
		req.DateTo = &to
	}

	return req, nil
}

func queryIntPtr(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
