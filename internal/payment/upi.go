// Package payment builds the manual UPI payment handoff: deep links, per-app
// variants and the QR image URL. Nothing here talks to a payment provider.
package payment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultNote = "Order Payment"

type App string

const (
	AppGPay    App = "gpay"
	AppPaytm   App = "paytm"
	AppPhonePe App = "phonepe"
)

var Apps = []App{AppGPay, AppPaytm, AppPhonePe}

var appPrefixes = map[App]string{
	AppGPay:    "tez://upi/pay",
	AppPaytm:   "paytmmp://pay",
	AppPhonePe: "phonepe://pay",
}

const genericPrefix = "upi://pay"

type Config struct {
	PayeeVPA  string
	PayeeName string
	Currency  string
	QRBaseURL string
	QRSize    int
}

type Handoff struct {
	Amount    string         `json:"amount"`
	Note      string         `json:"note"`
	Link      string         `json:"link"`
	QRCodeURL string         `json:"qr_code_url"`
	AppLinks  map[App]string `json:"app_links"`
}

func (c Config) Handoff(amount decimal.Decimal, customerName string) Handoff {
	note := strings.TrimSpace(customerName)
	if note == "" {
		note = DefaultNote
	}

	link := c.Link(amount, note)
	apps := make(map[App]string, len(Apps))
	for _, app := range Apps {
		apps[app] = c.AppLink(app, amount, note)
	}

	return Handoff{
		Amount:    FormatAmount(amount),
		Note:      note,
		Link:      link,
		QRCodeURL: c.QRCodeURL(link),
		AppLinks:  apps,
	}
}

func (c Config) Link(amount decimal.Decimal, note string) string {
	return genericPrefix + "?" + c.query(amount, note)
}

// AppLink returns the deep link for a named app, or the generic upi:// link
// for an unknown one.
func (c Config) AppLink(app App, amount decimal.Decimal, note string) string {
	prefix, ok := appPrefixes[app]
	if !ok {
		prefix = genericPrefix
	}
	return prefix + "?" + c.query(amount, note)
}

func (c Config) QRCodeURL(link string) string {
	size := c.QRSize
	if size <= 0 {
		size = 200
	}
	return fmt.Sprintf("%s?size=%dx%d&data=%s", c.QRBaseURL, size, size, url.QueryEscape(link))
}

// Parameter order matters to some UPI apps, so the query is assembled by
// hand instead of through url.Values.
func (c Config) query(amount decimal.Decimal, note string) string {
	return fmt.Sprintf("pa=%s&pn=%s&am=%s&tn=%s&cu=%s",
		c.PayeeVPA,
		c.PayeeName,
		FormatAmount(amount),
		escapeComponent(note),
		c.Currency,
	)
}

func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func ParseApp(s string) (App, bool) {
	app := App(strings.ToLower(s))
	_, ok := appPrefixes[app]
	return app, ok
}

// componentUnescaper restores the characters QueryEscape encodes but a
// browser's encodeURIComponent leaves alone.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
