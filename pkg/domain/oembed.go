package domain

// OEmbed is the link preview of a page, with its frame when it declares one.
type OEmbed struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Site        string `json:"site,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Frame       *Frame `json:"frame"`
}
