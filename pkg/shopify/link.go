package shopify

import (
	"net/url"
	"strings"
)

// LinkHeader is the response header carrying relation-tagged pagination
// links on the Admin REST API.
const LinkHeader = "Link"

// nextPageInfo extracts the page_info cursor from the link tagged
// rel="next". It returns "" when the header signals no further pages.
func nextPageInfo(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start == -1 || end == -1 || end <= start {
			continue
		}
		parsed, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		if cursor := parsed.Query().Get("page_info"); cursor != "" {
			return cursor
		}
	}
	return ""
}
