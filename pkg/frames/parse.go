// Package frames proxies frame button clicks and turns frame documents into
// their normalized form.
package frames

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/goodcast/goodapi/pkg/domain"
)

// Document is the meta tag index of a parsed HTML page.
type Document struct {
	names      map[string]string
	properties map[string]string
	title      string
	icon       string
}

// ParseHTML reads r and indexes its meta tags. The first tag of a given
// name or property wins.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	doc := &Document{
		names:      make(map[string]string),
		properties: make(map[string]string),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				content := attr(n, "content")
				if name := attr(n, "name"); name != "" {
					if _, ok := doc.names[name]; !ok {
						doc.names[name] = content
					}
				}
				if prop := attr(n, "property"); prop != "" {
					if _, ok := doc.properties[prop]; !ok {
						doc.properties[prop] = content
					}
				}
			case "title":
				if doc.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					doc.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "link":
				rel := strings.ToLower(attr(n, "rel"))
				if doc.icon == "" && (rel == "icon" || rel == "shortcut icon") {
					doc.icon = attr(n, "href")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Meta returns the content of meta[name=key], falling back to meta[property=key].
func (d *Document) Meta(key string) string {
	if v, ok := d.names[key]; ok {
		return v
	}
	return d.properties[key]
}

func (d *Document) first(keys ...string) string {
	for _, k := range keys {
		if v := d.Meta(k); v != "" {
			return v
		}
	}
	return ""
}

// ParseFrame extracts the frame declared by doc, fetched from pageURL.
// It returns nil when the version, image or post URL is missing.
func ParseFrame(doc *Document, pageURL string) *domain.Frame {
	version := doc.first("of:accepts:lens", "of:accepts")
	image := doc.first("of:image", "og:image")
	postURL := doc.first("of:post_url")
	if postURL == "" {
		postURL = pageURL
	}
	if version == "" || image == "" || postURL == "" {
		return nil
	}

	frame := &domain.Frame{
		AcceptsAnonymous: doc.Meta("of:accepts:anonymous") != "",
		Buttons:          []domain.FrameButton{},
		FrameURL:         pageURL,
		Image:            image,
		ImageAspectRatio: doc.Meta("of:image:aspect_ratio"),
		InputText:        doc.Meta("of:input:text"),
		LensFrameVersion: version,
		PostURL:          postURL,
		State:            doc.Meta("of:state"),
	}

	for i := 1; i <= domain.MaxFrameButtons; i++ {
		key := fmt.Sprintf("of:button:%d", i)
		label := doc.Meta(key)
		if label == "" {
			break
		}
		action := doc.Meta(key + ":action")
		if action == "" {
			action = domain.ButtonActionPost
		}
		frame.Buttons = append(frame.Buttons, domain.FrameButton{
			Action:  action,
			Button:  label,
			PostURL: doc.Meta(key + ":post_url"),
			Target:  doc.Meta(key + ":target"),
		})
	}

	return frame
}

// ParseOEmbed builds the link preview of doc, fetched from pageURL.
func ParseOEmbed(doc *Document, pageURL string) *domain.OEmbed {
	title := doc.first("og:title", "twitter:title")
	if title == "" {
		title = doc.title
	}
	return &domain.OEmbed{
		URL:         pageURL,
		Title:       title,
		Description: doc.first("og:description", "twitter:description", "description"),
		Image:       resolve(pageURL, doc.first("og:image", "twitter:image", "twitter:image:src")),
		Site:        doc.first("og:site_name", "application-name"),
		Favicon:     resolve(pageURL, faviconOf(doc, pageURL)),
		Frame:       ParseFrame(doc, pageURL),
	}
}

func faviconOf(doc *Document, pageURL string) string {
	if doc.icon != "" {
		return doc.icon
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

// resolve makes ref absolute against base. Unparsable values are returned as is.
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
