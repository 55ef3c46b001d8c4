package catalog

import (
	"context"

	"github.com/tariffnom/tariffnom/internal/api"
)

// CountrySource provides the country option list.
type CountrySource interface {
	Countries(ctx context.Context) ([]api.Country, error)
}

// ProductSource provides the product catalog.
type ProductSource interface {
	Products(ctx context.Context) ([]api.Product, error)
}

// CountryLoader adapts the API client to the selector's Loader shape.
func CountryLoader(src CountrySource) Loader {
	return func(ctx context.Context) ([]Option, error) {
		countries, err := src.Countries(ctx)
		if err != nil {
			return nil, err
		}
		options := make([]Option, 0, len(countries))
		for _, c := range countries {
			options = append(options, Option{Code: c.Code, Name: c.Name})
		}
		return options, nil
	}
}

// ProductLoader adapts the API client to the selector's Loader shape.
// Products are keyed by HS code, with description and category searchable.
func ProductLoader(src ProductSource) Loader {
	return func(ctx context.Context) ([]Option, error) {
		products, err := src.Products(ctx)
		if err != nil {
			return nil, err
		}
		options := make([]Option, 0, len(products))
		for _, p := range products {
			options = append(options, Option{
				Code:        p.HsCode,
				Description: p.Description,
				Category:    p.Category,
			})
		}
		return options, nil
	}
}
