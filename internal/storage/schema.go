package storage

import (
	"fmt"
	"regexp"
	"strings"

	"partpulse/internal"
)

// pulledTimeLayout is fixed width so stored timestamps sort as text.
const pulledTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

type column struct {
	name       string
	sqliteType string
	pgType     string
}

var productSchema = []column{
	{"Categories", "TEXT", "TEXT"},
	{"Sub_Categories", "TEXT", "TEXT"},
	{"Sub_Categories2", "TEXT", "TEXT"},
	{"Part_Number", "TEXT NOT NULL", "TEXT NOT NULL"},
	{"Manufacturer", "TEXT", "TEXT"},
	{"Unit_break_QTY", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"Unit_price_EUR", "REAL NOT NULL", "DOUBLE PRECISION NOT NULL"},
	{"Lead_time", "TEXT", "TEXT"},
	{"Lead_time_weeks", "TEXT", "TEXT"},
	{"Lead_time_format", "TEXT", "TEXT"},
	{"Quantity_in_stock", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"Factory_stock_quantity", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"On_order_quantity", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"Partner_stock_quantity", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"Distributor_name", "TEXT", "TEXT"},
	{"Distributor_region", "TEXT", "TEXT"},
	{"Distributor_country", "TEXT", "TEXT"},
	{"Image_URL", "TEXT", "TEXT"},
	{"Buy_now_URL", "TEXT", "TEXT"},
	{"Category", "TEXT", "TEXT"},
	{"Description", "TEXT", "TEXT"},
	{"New_Lead_Time", "INTEGER NOT NULL", "BIGINT NOT NULL"},
	{"DataPulledTime", "TEXT NOT NULL", "TIMESTAMPTZ NOT NULL"},
}

func validateTable(table string) error {
	if !reIdentifier.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func createTableSQL(table string, postgres bool) []string {
	defs := make([]string, 0, len(productSchema))
	for _, c := range productSchema {
		typ := c.sqliteType
		if postgres {
			typ = c.pgType
		}
		defs = append(defs, "  "+quote(c.name)+" "+typ)
	}
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", quote(table), strings.Join(defs, ",\n")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", quote("idx_"+table+"_pulled"), quote(table), quote("DataPulledTime")),
	}
}

func quotedColumns() string {
	cols := make([]string, len(internal.ProductColumns))
	for i, c := range internal.ProductColumns {
		cols[i] = quote(c)
	}
	return strings.Join(cols, ", ")
}

// selectRowsSQL builds the read-side query. placeholder renders the n-th
// (1-based) bind parameter for the target driver.
func selectRowsSQL(table string, f internal.RowFilter, placeholder func(n int) string) (string, []any) {
	var where []string
	var args []any

	in := func(col string, values []any) {
		if len(values) == 0 {
			return
		}
		marks := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			marks[i] = placeholder(len(args))
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", quote(col), strings.Join(marks, ", ")))
	}
	in("Categories", anySlice(f.Categories))
	in("Sub_Categories", anySlice(f.SubCategories))
	in("Sub_Categories2", anySlice(f.SubCategories2))
	in("Part_Number", anySlice(f.PartNumbers))
	in("Manufacturer", anySlice(f.Manufacturers))
	in("Distributor_name", anySlice(f.Distributors))
	in("Distributor_region", anySlice(f.DistributorRegions))
	in("Distributor_country", anySlice(f.DistributorCountries))
	in("Unit_break_QTY", anySlice(f.UnitBreakQtys))
	if f.LatestOnly {
		where = append(where, fmt.Sprintf("%s = (SELECT MAX(%s) FROM %s)", quote("DataPulledTime"), quote("DataPulledTime"), quote(table)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", quotedColumns(), quote(table))
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s, %s", quote("DataPulledTime"), quote("Part_Number"))
	return query, args
}

func anySlice[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// rowDest returns scan targets in ProductColumns order; pulled receives the
// timestamp column in the driver's native representation.
func rowDest(r *internal.ProductRow, pulled any) []any {
	return []any{
		&r.Categories, &r.SubCategories, &r.SubCategories2, &r.PartNumber, &r.Manufacturer,
		&r.UnitBreakQty, &r.UnitPriceEUR, &r.LeadTime, &r.LeadTimeWeeks, &r.LeadTimeFormat,
		&r.QuantityInStock, &r.FactoryStockQuantity, &r.OnOrderQuantity,
		&r.PartnerStockQuantity, &r.DistributorName, &r.DistributorRegion,
		&r.DistributorCountry, &r.ImageURL, &r.BuyNowURL, &r.Category,
		&r.Description, &r.NewLeadTime, pulled,
	}
}
