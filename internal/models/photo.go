package models

import (
	"net/url"
	"strconv"
	"strings"
)

// CacheBustParam is the query parameter carrying the photo update token
const CacheBustParam = "updated_at"

// BustCache returns photoURL with its update token set to token. Any
// previous token is replaced so repeated changes do not pile up parameters.
func BustCache(photoURL string, token int64) string {
	if photoURL == "" {
		return ""
	}
	u, err := url.Parse(photoURL)
	if err != nil {
		// Not a URL we can rewrite; fall back to plain concatenation
		sep := "?"
		if strings.Contains(photoURL, "?") {
			sep = "&"
		}
		return photoURL + sep + CacheBustParam + "=" + strconv.FormatInt(token, 10)
	}
	q := u.Query()
	q.Set(CacheBustParam, strconv.FormatInt(token, 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// StripCacheBust removes the update token, returning the stable photo URL
func StripCacheBust(photoURL string) string {
	u, err := url.Parse(photoURL)
	if err != nil || u.RawQuery == "" {
		return photoURL
	}
	q := u.Query()
	q.Del(CacheBustParam)
	u.RawQuery = q.Encode()
	return u.String()
}
