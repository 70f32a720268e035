package leafwatch

import "net/url"

// UTM holds the campaign parameters of a page URL.
type UTM struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// ParseUTM reads utm_* parameters from raw. A URL that is unparsable or not
// absolute has none.
func ParseUTM(raw string) UTM {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return UTM{}
	}
	q := u.Query()
	return UTM{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Term:     q.Get("utm_term"),
		Content:  q.Get("utm_content"),
	}
}
