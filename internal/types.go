package internal

import "time"

// Unknown is substituted for every field the part-search API leaves out.
const Unknown = "unknown"

type PartRequest struct {
	PartNumber     string
	Categories     string
	SubCategories  string
	SubCategories2 string
}

type LookupStatus string

const (
	LookupSuccess              LookupStatus = "success"
	LookupNotFound             LookupStatus = "not_found"
	LookupCredentialsExhausted LookupStatus = "credentials_exhausted"
	LookupTransientError       LookupStatus = "transient_error"
)

type LookupResult struct {
	Status     LookupStatus
	Payload    map[string]any
	StatusCode int
	Err        error
}

type Distributor struct {
	Name    string
	Region  string
	Country string
}

type PriceBreak struct {
	UnitBreakQty string
	UnitPrice    string
}

// StockOffer holds one entry of the "stock" array with every field
// projected to a string; absent fields carry Unknown.
type StockOffer struct {
	Manufacturer         string
	Description          string
	Category             string
	QuantityInStock      string
	FactoryStockQuantity string
	OnOrderQuantity      string
	PartnerStockQuantity string
	Distributor          Distributor
	LeadTime             string
	LeadTimeWeeks        string
	LeadTimeFormat       string
	ImageURL             string
	BuyNowURL            string
	Prices               []PriceBreak
}

// OfferRow is one (request, offer, price break) pairing before normalization.
type OfferRow struct {
	Request PartRequest
	Offer   StockOffer
	Price   PriceBreak
}

type ProductRow struct {
	Categories           string
	SubCategories        string
	SubCategories2       string
	PartNumber           string
	Manufacturer         string
	UnitBreakQty         int
	UnitPriceEUR         float64
	LeadTime             string
	LeadTimeWeeks        string
	LeadTimeFormat       string
	QuantityInStock      int
	FactoryStockQuantity int
	OnOrderQuantity      int
	PartnerStockQuantity int
	DistributorName      string
	DistributorRegion    string
	DistributorCountry   string
	ImageURL             string
	BuyNowURL            string
	Category             string
	Description          string
	NewLeadTime          int
	DataPulledTime       time.Time
}

// PulledBatch is the output of one pipeline run. Every row shares PulledAt.
type PulledBatch struct {
	PulledAt time.Time
	Rows     []ProductRow
}

// RowFilter narrows the read side. Empty lists do not filter.
type RowFilter struct {
	Categories           []string
	SubCategories        []string
	SubCategories2       []string
	PartNumbers          []string
	Manufacturers        []string
	Distributors         []string
	DistributorRegions   []string
	DistributorCountries []string
	UnitBreakQtys        []int
	LatestOnly           bool
}

// ProductColumns is the column order of the observation table.
var ProductColumns = []string{
	"Categories", "Sub_Categories", "Sub_Categories2", "Part_Number", "Manufacturer",
	"Unit_break_QTY", "Unit_price_EUR", "Lead_time", "Lead_time_weeks", "Lead_time_format",
	"Quantity_in_stock", "Factory_stock_quantity", "On_order_quantity",
	"Partner_stock_quantity", "Distributor_name", "Distributor_region",
	"Distributor_country", "Image_URL", "Buy_now_URL", "Category",
	"Description", "New_Lead_Time", "DataPulledTime",
}

// Values returns the row in ProductColumns order.
func (r ProductRow) Values() []any {
	return []any{
		r.Categories, r.SubCategories, r.SubCategories2, r.PartNumber, r.Manufacturer,
		r.UnitBreakQty, r.UnitPriceEUR, r.LeadTime, r.LeadTimeWeeks, r.LeadTimeFormat,
		r.QuantityInStock, r.FactoryStockQuantity, r.OnOrderQuantity,
		r.PartnerStockQuantity, r.DistributorName, r.DistributorRegion,
		r.DistributorCountry, r.ImageURL, r.BuyNowURL, r.Category,
		r.Description, r.NewLeadTime, r.DataPulledTime,
	}
}
