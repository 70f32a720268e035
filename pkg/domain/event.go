package domain

import "time"

// Event is one Leafwatch analytics row. Absent values serialize as null.
type Event struct {
	Actor          *string   `json:"actor"`
	Browser        *string   `json:"browser"`
	BrowserVersion *string   `json:"browser_version"`
	City           *string   `json:"city"`
	Country        *string   `json:"country"`
	Created        time.Time `json:"created"`
	Fingerprint    *string   `json:"fingerprint"`
	IP             *string   `json:"ip"`
	Name           string    `json:"name"`
	OS             *string   `json:"os"`
	Platform       *string   `json:"platform"`
	Properties     any       `json:"properties"`
	Referrer       *string   `json:"referrer"`
	Region         *string   `json:"region"`
	URL            *string   `json:"url"`
	UTMCampaign    *string   `json:"utm_campaign"`
	UTMContent     *string   `json:"utm_content"`
	UTMMedium      *string   `json:"utm_medium"`
	UTMSource      *string   `json:"utm_source"`
	UTMTerm        *string   `json:"utm_term"`
	Version        *string   `json:"version"`
	Wallet         *string   `json:"wallet"`
}

// Nullable returns nil for the empty string.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Location is the coarse geolocation of a client address.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"regionName"`
}
