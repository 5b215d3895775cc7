package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnknownCurrency = errors.New("no provider credentials for currency")

// Credentials is what a provider integration needs for one currency.
// Factor converts provider amounts into ledger units.
type Credentials struct {
	Currency   string
	VendorID   string
	Factor     decimal.Decimal
	APIURL     string
	OperatorID string
	LaunchURL  string
}

type ProviderConfig struct {
	Name       string
	Timeout    time.Duration
	ByCurrency map[string]Credentials
}

// CredentialsByCurrency is a pure lookup of the credentials configured for
// currency.
func (p ProviderConfig) CredentialsByCurrency(currency string) (Credentials, error) {
	c, ok := p.ByCurrency[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		return Credentials{}, fmt.Errorf("%s %q: %w", p.Name, currency, ErrUnknownCurrency)
	}
	return c, nil
}

// Currencies lists the configured currencies.
func (p ProviderConfig) Currencies() []string {
	out := make([]string, 0, len(p.ByCurrency))
	for c := range p.ByCurrency {
		out = append(out, c)
	}
	return out
}

func (p ProviderConfig) Validate() error {
	if len(p.ByCurrency) == 0 {
		return fmt.Errorf("%s: no currency configured", p.Name)
	}
	var errs []error
	for ccy, c := range p.ByCurrency {
		if c.VendorID == "" {
			errs = append(errs, fmt.Errorf("%s %s: vendor id must be set", p.Name, ccy))
		}
		if c.Factor.Sign() <= 0 {
			errs = append(errs, fmt.Errorf("%s %s: rate must be positive", p.Name, ccy))
		}
	}
	return errors.Join(errs...)
}

// DefaultRate is the provider-to-ledger factor for currencies quoted in
// thousands by the sportsbooks.
func DefaultRate(currency string) decimal.Decimal {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "IDR", "VND":
		return decimal.NewFromInt(1000)
	default:
		return decimal.NewFromInt(1)
	}
}

// SABA_CURRENCIES=IDR,USD with SABA_<CCY>_VENDOR_ID, SABA_<CCY>_RATE,
// SABA_<CCY>_API_URL and SABA_<CCY>_OPERATOR_ID; the last two fall back to
// SABA_API_URL and SABA_OPERATOR_ID.
func loadSaba() (ProviderConfig, error) {
	p := ProviderConfig{
		Name:       "saba",
		Timeout:    getDuration("SABA_TIMEOUT", 10*time.Second),
		ByCurrency: map[string]Credentials{},
	}
	for _, ccy := range getList("SABA_CURRENCIES", "IDR") {
		prefix := "SABA_" + ccy + "_"
		rate, err := getDecimal(prefix+"RATE", DefaultRate(ccy))
		if err != nil {
			return p, err
		}
		p.ByCurrency[ccy] = Credentials{
			Currency:   ccy,
			VendorID:   getEnv(prefix+"VENDOR_ID", getEnv("SABA_VENDOR_ID", "")),
			Factor:     rate,
			APIURL:     strings.TrimRight(getEnv(prefix+"API_URL", getEnv("SABA_API_URL", "")), "/"),
			OperatorID: getEnv(prefix+"OPERATOR_ID", getEnv("SABA_OPERATOR_ID", "")),
			LaunchURL:  getEnv(prefix+"LAUNCH_URL", getEnv("SABA_LAUNCH_URL", "")),
		}
	}
	return p, nil
}

// sbo shares one company key across currencies; only the rate differs.
func loadSbo() (ProviderConfig, error) {
	p := ProviderConfig{
		Name:       "sbo",
		Timeout:    getDuration("SBO_TIMEOUT", 10*time.Second),
		ByCurrency: map[string]Credentials{},
	}
	key := getEnv("SBO_COMPANY_KEY", "")
	apiURL := strings.TrimRight(getEnv("SBO_API_URL", ""), "/")
	serverID := getEnv("SBO_SERVER_ID", "")
	for _, ccy := range getList("SBO_CURRENCIES", "IDR") {
		rate, err := getDecimal("SBO_"+ccy+"_RATE", DefaultRate(ccy))
		if err != nil {
			return p, err
		}
		p.ByCurrency[ccy] = Credentials{
			Currency:   ccy,
			VendorID:   key,
			Factor:     rate,
			APIURL:     apiURL,
			OperatorID: serverID,
			LaunchURL:  apiURL,
		}
	}
	return p, nil
}
