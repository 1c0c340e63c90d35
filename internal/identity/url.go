package identity

import (
	"net/url"
	"sort"
	"strings"
)

var trackingQueryKeys = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"mc_cid":  {},
	"mc_eid":  {},
	"ref":     {},
	"ref_src": {},
	"smid":    {},
	"smtyp":   {},
}

// NormalizeURL returns the comparison form of a review URL. Scheme is folded
// to https, the host is lower-cased without "www.", default ports, fragments,
// trailing slashes and tracking parameters are dropped, and the remaining
// query keys are sorted. Unparseable values are returned trimmed and
// lower-cased so equal junk still compares equal.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed.Scheme == "" && parsed.Host == "" && looksLikeHost(trimmed) {
		parsed, err = url.Parse("https://" + trimmed)
	}
	if err != nil || parsed.Host == "" {
		return strings.ToLower(trimmed)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if port := parsed.Port(); port != "" {
		defaultPort := (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
		if !defaultPort {
			host = host + ":" + port
		}
	}
	if scheme == "http" || scheme == "" {
		scheme = "https"
	}

	path := parsed.EscapedPath()
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	path = strings.TrimSuffix(path, "/")

	q := parsed.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			q.Del(key)
			continue
		}
		if _, ok := trackingQueryKeys[lower]; ok {
			q.Del(key)
		}
	}
	var query string
	if len(q) > 0 {
		keys := make([]string, 0, len(q))
		for key := range q {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			values := append([]string(nil), q[key]...)
			sort.Strings(values)
			for _, v := range values {
				parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(v))
			}
		}
		query = "?" + strings.Join(parts, "&")
	}
	return scheme + "://" + host + path + query
}

func looksLikeHost(value string) bool {
	head, _, _ := strings.Cut(value, "/")
	return strings.Contains(head, ".") && !strings.ContainsAny(value, " \t")
}
