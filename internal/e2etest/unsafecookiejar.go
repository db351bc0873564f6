package e2etest

import (
	"github.com/myrjola/repquiz/internal/errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// unsafeCookieJar keeps Secure cookies such as the session and CSRF cookies over plain http test servers.
type unsafeCookieJar struct {
	*cookiejar.Jar
}

func newUnsafeCookieJar() (*unsafeCookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return &unsafeCookieJar{Jar: jar}, nil
}

func (j *unsafeCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	relaxed := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		c.Secure = false
		relaxed = append(relaxed, &c)
	}
	j.Jar.SetCookies(u, relaxed)
}
