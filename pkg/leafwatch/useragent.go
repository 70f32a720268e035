package leafwatch

import "github.com/mssola/useragent"

// Agent is the part of a User-Agent header kept on events.
type Agent struct {
	Browser        string
	BrowserVersion string
	OS             string
}

// ParseUserAgent extracts the browser and operating system names.
func ParseUserAgent(header string) Agent {
	if header == "" {
		return Agent{}
	}
	ua := useragent.New(header)
	name, version := ua.Browser()
	return Agent{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OSInfo().Name,
	}
}
