package identity

import (
	"net/url"
	"strings"
)

// validRedirectTarget reports whether target is a safe post-login
// destination. Accepted are site-relative paths ("/reading/r1") and
// absolute URLs on the site's own host; anything else (external hosts,
// protocol-relative "//evil.example" forms, non-http schemes) is rejected
// so the callback can never be abused as an open redirect.
func validRedirectTarget(target, siteBaseURL string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}

	if strings.HasPrefix(target, "/") {
		// "//host" is protocol-relative, "/\" is a browser quirk with the
		// same effect
		return !strings.HasPrefix(target, "//") && !strings.HasPrefix(target, "/\\")
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	site, err := url.Parse(siteBaseURL)
	if err != nil || site.Host == "" {
		return false
	}

	return strings.EqualFold(u.Host, site.Host)
}
