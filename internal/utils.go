package internal

import (
	"net/url"
	"strings"
)

func StringContains(s []string, e string) bool {
	for _, item := range s {
		if item == e {
			return true
		}
	}
	return false
}

// RemovePassword masks the password part of a redis-style address before it is logged.
func RemovePassword(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.User != nil && u.Host != "" {
		if _, ok := u.User.Password(); ok {
			return strings.Replace(uri, u.User.String()+"@", u.User.Username()+":****@", 1)
		}
		return uri
	}
	p := strings.Index(uri, "@")
	if p < 0 {
		return uri
	}
	sp := strings.Index(uri[:p], ":")
	if sp < 0 {
		return uri
	}
	return uri[:sp+1] + "****" + uri[p:]
}
