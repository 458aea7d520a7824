package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"partpulse/internal"
	"partpulse/internal/util"
)

var ErrMalformedPrices = errors.New("malformed prices")

// Expand flattens one lookup result into request x offer x price-break rows.
// Offers that cannot be read are skipped and reported in the returned errors;
// the rest of the response is still expanded.
func Expand(req internal.PartRequest, res internal.LookupResult, currency string) ([]internal.OfferRow, []error) {
	if res.Status != internal.LookupSuccess || res.Payload == nil {
		return nil, nil
	}
	stock, ok := res.Payload["stock"].([]any)
	if !ok || len(stock) == 0 {
		return nil, nil
	}

	var rows []internal.OfferRow
	var errs []error
	for i, item := range stock {
		raw, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("stock[%d]: unexpected offer shape %T", i, item))
			continue
		}
		offer, err := parseOffer(raw, currency)
		if err != nil {
			errs = append(errs, fmt.Errorf("stock[%d]: %w", i, err))
			continue
		}
		if len(offer.Prices) == 0 {
			rows = append(rows, internal.OfferRow{
				Request: req,
				Offer:   offer,
				Price:   internal.PriceBreak{UnitBreakQty: internal.Unknown, UnitPrice: internal.Unknown},
			})
			continue
		}
		for _, price := range offer.Prices {
			rows = append(rows, internal.OfferRow{Request: req, Offer: offer, Price: price})
		}
	}
	return rows, errs
}

func parseOffer(m map[string]any, currency string) (internal.StockOffer, error) {
	prices, err := parsePrices(m["prices"], currency)
	if err != nil {
		return internal.StockOffer{}, err
	}

	dist, _ := m["distributor"].(map[string]any)
	return internal.StockOffer{
		Manufacturer:         field(m, "manufacturer"),
		Description:          field(m, "description"),
		Category:             field(m, "category"),
		QuantityInStock:      field(m, "quantity_in_stock"),
		FactoryStockQuantity: field(m, "factory_stock_quantity"),
		OnOrderQuantity:      field(m, "on_order_quantity"),
		PartnerStockQuantity: field(m, "partner_stock_quantity"),
		Distributor: internal.Distributor{
			Name:    field(dist, "distributor_name"),
			Region:  field(dist, "distributor_region"),
			Country: field(dist, "distributor_country"),
		},
		LeadTime:       field(m, "lead_time"),
		LeadTimeWeeks:  field(m, "lead_time_weeks"),
		LeadTimeFormat: field(m, "lead_time_format"),
		ImageURL:       field(m, "image_url"),
		BuyNowURL:      field(m, "buy_now_url"),
		Prices:         prices,
	}, nil
}

// parsePrices reads prices[currency]. A missing prices object means no price
// breaks; a prices value of any other shape is malformed.
func parsePrices(v any, currency string) ([]internal.PriceBreak, error) {
	if v == nil {
		return nil, nil
	}
	byCurrency, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMalformedPrices, v)
	}
	list, ok := byCurrency[currency].([]any)
	if !ok {
		return nil, nil
	}

	out := make([]internal.PriceBreak, 0, len(list))
	for _, entry := range list {
		pm, _ := entry.(map[string]any)
		out = append(out, internal.PriceBreak{
			UnitBreakQty: field(pm, "unit_break"),
			UnitPrice:    field(pm, "unit_price"),
		})
	}
	return out, nil
}

// field projects m[key] to a string, substituting internal.Unknown for
// absent and null values.
func field(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return internal.Unknown
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return util.FormatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		blob, err := json.Marshal(t)
		if err != nil {
			return internal.Unknown
		}
		return string(blob)
	}
}
