package alert

import (
	"regexp"
	"strings"

	"signal-desk/internal/domain"
)

var (
	// The trailing-USD rule intentionally matches any symbol ending in USD
	// that earlier branches did not claim. It mirrors the upstream provider's
	// classification, including its overlap with USD-quoted forex pairs.
	cryptoRe      = regexp.MustCompile(`^BTC|^ETH|^XRP|^ADA|^SOL|^BNB|^DOGE|USD$`)
	commoditiesRe = regexp.MustCompile(`^XAU|^XAG|^WTI|^BRENT|^NG|^CL|OIL|GAS|GOLD|SILVER`)
	indicesRe     = regexp.MustCompile(`^US|^UK|^DE|^FR|^JP|^CN|^IN|^100|^500|^2000|^NDX|^DAX|^FTSE`)
)

// Categorize classifies a symbol into an asset category. FOREX is the
// fallback for anything unrecognized.
func Categorize(symbol string) domain.Category {
	upper := strings.ToUpper(symbol)

	if cryptoRe.MatchString(upper) {
		return domain.CategoryCrypto
	}
	if commoditiesRe.MatchString(upper) {
		return domain.CategoryCommodities
	}
	if indicesRe.MatchString(upper) {
		return domain.CategoryIndices
	}
	return domain.CategoryForex
}
