// Package service contains the business logic for posts, comments, uploads,
// ranking, and chat.
package service

import (
	"github.com/microcosm-cc/bluemonday"
)

// SanitizePolicies holds the markup allow-lists applied to user content.
// They are injected rather than global so tests can substitute restricted
// variants.
type SanitizePolicies struct {
	// Rich is applied to post bodies: a rich-text editor tag set plus
	// embedded images and video.
	Rich *bluemonday.Policy
	// Plain strips all markup; applied to comment bodies.
	Plain *bluemonday.Policy
}

// DefaultSanitizePolicies returns the production allow-lists.
func DefaultSanitizePolicies() *SanitizePolicies {
	rich := bluemonday.UGCPolicy()
	rich.AllowElements("h2", "h3", "h4", "img", "video")
	rich.AllowAttrs("src", "alt", "style", "width").OnElements("img")
	rich.AllowAttrs("src", "controls").OnElements("video")
	rich.AllowAttrs("style").Globally()
	rich.AllowRelativeURLs(true)

	return &SanitizePolicies{
		Rich:  rich,
		Plain: bluemonday.StrictPolicy(),
	}
}
