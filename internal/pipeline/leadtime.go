package pipeline

import (
	"strings"

	"partpulse/internal"
	"partpulse/internal/util"
)

// ResolveLeadTime reconciles the three lead-time fields into a day count.
// Inputs are expected lowercased; branch order matters for ambiguous inputs.
func ResolveLeadTime(leadTime, leadTimeWeeks, leadTimeFormat string) int {
	days := resolveLeadTime(leadTime, leadTimeWeeks, leadTimeFormat)
	if days < 0 {
		// overflowed multiplication on absurd digit runs
		return 0
	}
	return days
}

func resolveLeadTime(leadTime, leadTimeWeeks, leadTimeFormat string) int {
	formatKnown := leadTimeFormat != internal.Unknown
	weeksKnown := leadTimeWeeks != internal.Unknown

	switch {
	case formatKnown && weeksKnown:
		n := util.FirstInt(leadTime)
		w := util.FirstInt(leadTimeWeeks) * 7
		switch leadTimeFormat {
		case "weeks":
			return max(n*7, w)
		case "days":
			return max(n, w)
		default:
			return 0
		}

	case formatKnown:
		if strings.TrimSpace(leadTime) == "" || leadTime == internal.Unknown {
			return 0
		}
		n := util.FirstInt(leadTime)
		if leadTimeFormat == "days" {
			return n
		}
		// "weeks" and unrecognized formats both count weeks.
		return n * 7

	case weeksKnown:
		n := util.FirstInt(leadTime)
		if strings.Contains(leadTime, "day") {
			return n
		}
		return n * 7

	default:
		n := util.FirstInt(leadTime)
		switch {
		case strings.Contains(leadTime, "day"):
			return n
		case strings.Contains(leadTime, "week"):
			return n * 7
		case util.IsDigits(leadTime):
			return n
		default:
			return 0
		}
	}
}
