package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"partpulse/internal"
	"partpulse/internal/util"
)

// manufacturerAliases maps known variant spellings to canonical names.
var manufacturerAliases = map[string]string{
	"white-rodgers":                    "white-rodgers",
	"whiterodgers":                     "white-rodgers",
	"american power conversion":        "american power conversion",
	"american power conversion apc":    "american power conversion",
	"apex tool group mfr.":             "apex tool group",
	"apex tool group":                  "apex tool group",
	"cal":                              "cal controls",
	"cal controls":                     "cal controls",
	"bud industries inc.":              "bud industries",
	"bud industries":                   "bud industries",
	"bud":                              "bud industries",
	"eaton hac":                        "eaton",
	"eaton":                            "eaton",
	"semikron danfoss":                 "semikron",
	"semikron":                         "semikron",
	"sick, inc.":                       "sick electronics",
	"sick electronics":                 "sick electronics",
	"tallysman":                        "tallysman",
	"tallysman wireless":               "tallysman",
	"visaton":                          "visaton",
	"visaton gmbh & co":                "visaton",
	"schneider electric-legacy relays": "schneider electric",
	"schneider electric":               "schneider electric",
	"qualtek electronics":              "qualtek electronics",
	"qualtek electronics corp":         "qualtek electronics",
}

// legalSuffixes is ordered longest first so "corp" wins over "co".
var legalSuffixes = []string{"corporation", "company", "gmbh", "corp", "llc", "inc", "ltd", "s.a", "srl", "plc", "pvt", "mfr", "co"}

var rePunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// NormalizeManufacturer canonicalizes a manufacturer name. The cleaned name
// is looked up in the alias table once more so canonical names that carry
// punctuation (white-rodgers) survive the punctuation strip, and the whole
// pass repeats until the output is stable.
func NormalizeManufacturer(name string) string {
	out := name
	for i := 0; i < 4; i++ {
		next := cleanManufacturer(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanManufacturer(name string) string {
	s := strings.ToLower(name)
	s = alias(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSpace(stripLegalSuffixes(s))
	s = rePunctuation.ReplaceAllString(s, "")
	s = util.CollapseSpaces(s)
	return alias(s)
}

// stripLegalSuffixes removes legal-form tokens that stand as whole words,
// each with one trailing dot. Word boundaries are Unicode aware: the "co"
// in "hüco" is not a token.
func stripLegalSuffixes(s string) string {
	var b strings.Builder
	prevWord := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !prevWord && isWordRune(r) {
			if n := legalSuffixAt(s[i:]); n > 0 {
				i += n
				continue
			}
		}
		b.WriteString(s[i : i+size])
		prevWord = isWordRune(r)
		i += size
	}
	return b.String()
}

// legalSuffixAt returns the byte length of the suffix token at the start of
// s, or 0 when s does not start with one.
func legalSuffixAt(s string) int {
	for _, suffix := range legalSuffixes {
		if len(s) < len(suffix) || !strings.EqualFold(s[:len(suffix)], suffix) {
			continue
		}
		rest := s[len(suffix):]
		if r, _ := utf8.DecodeRuneInString(rest); rest != "" && isWordRune(r) {
			continue
		}
		if strings.HasPrefix(rest, ".") {
			return len(suffix) + 1
		}
		return len(suffix)
	}
	return 0
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func alias(s string) string {
	if canonical, ok := manufacturerAliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizeRow coerces numeric fields, lowercases lead-time text and derives
// NewLeadTime. It never fails: unparsable numbers become 0.
func NormalizeRow(in internal.OfferRow) internal.ProductRow {
	leadTime := strings.ToLower(in.Offer.LeadTime)
	leadTimeWeeks := strings.ToLower(in.Offer.LeadTimeWeeks)
	leadTimeFormat := strings.ToLower(in.Offer.LeadTimeFormat)

	return internal.ProductRow{
		Categories:           in.Request.Categories,
		SubCategories:        in.Request.SubCategories,
		SubCategories2:       in.Request.SubCategories2,
		PartNumber:           in.Request.PartNumber,
		Manufacturer:         NormalizeManufacturer(in.Offer.Manufacturer),
		UnitBreakQty:         util.ToInt(in.Price.UnitBreakQty),
		UnitPriceEUR:         util.ToFloat(in.Price.UnitPrice),
		LeadTime:             leadTime,
		LeadTimeWeeks:        leadTimeWeeks,
		LeadTimeFormat:       leadTimeFormat,
		QuantityInStock:      util.ToInt(in.Offer.QuantityInStock),
		FactoryStockQuantity: util.ToInt(in.Offer.FactoryStockQuantity),
		OnOrderQuantity:      util.ToInt(in.Offer.OnOrderQuantity),
		PartnerStockQuantity: util.ToInt(in.Offer.PartnerStockQuantity),
		DistributorName:      in.Offer.Distributor.Name,
		DistributorRegion:    in.Offer.Distributor.Region,
		DistributorCountry:   in.Offer.Distributor.Country,
		ImageURL:             in.Offer.ImageURL,
		BuyNowURL:            in.Offer.BuyNowURL,
		Category:             in.Offer.Category,
		Description:          in.Offer.Description,
		NewLeadTime:          ResolveLeadTime(leadTime, leadTimeWeeks, leadTimeFormat),
	}
}
