// Package gravatar derives avatar URLs from email addresses.
package gravatar

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

const baseURL = "//www.gravatar.com/avatar/"

type Options struct {
	Size    string
	Rating  string
	Default string
}

// ProfileOptions are the options used for user avatars: 200px, PG rated,
// mystery-man fallback.
var ProfileOptions = Options{Size: "200", Rating: "pg", Default: "mm"}

func URL(email string, opts Options) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	if opts.Size != "" {
		q.Set("s", opts.Size)
	}
	if opts.Rating != "" {
		q.Set("r", opts.Rating)
	}
	if opts.Default != "" {
		q.Set("d", opts.Default)
	}

	u := baseURL + hex.EncodeToString(sum[:])
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
