package agent

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a dollar amount with thousands separators: 1234567
// becomes "$1,234,567" and 0 becomes "$0". Numeric strings are accepted;
// anything unparseable is returned as-is, matching the tolerant behavior
// the prompt builder needs for partially filled records.
func FormatUSD(amount interface{}) string {
	switch v := amount.(type) {
	case int:
		return usdPrinter.Sprintf("$%d", v)
	case int64:
		return usdPrinter.Sprintf("$%d", v)
	case float64:
		return usdPrinter.Sprintf("$%d", int64(math.Round(v)))
	case string:
		trimmed := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return usdPrinter.Sprintf("$%d", n)
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return usdPrinter.Sprintf("$%d", int64(math.Round(f)))
		}
		return v
	default:
		return fmt.Sprintf("%v", amount)
	}
}
