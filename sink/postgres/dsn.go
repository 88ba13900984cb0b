package postgres

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DSN builds the postgres connection string for the configuration.
// Parameters are emitted in sorted key order so the result is stable.
func (c Config) DSN() string {
	var dsn strings.Builder
	dsn.WriteString("postgres://")

	if c.Username != "" {
		dsn.WriteString(url.QueryEscape(c.Username))
		if c.Password != "" {
			dsn.WriteString(":")
			dsn.WriteString(url.QueryEscape(c.Password))
		}
		dsn.WriteString("@")
	}

	dsn.WriteString(c.Host)
	if c.Port > 0 {
		dsn.WriteString(":")
		dsn.WriteString(strconv.Itoa(c.Port))
	}
	if c.Database != "" {
		dsn.WriteString("/")
		dsn.WriteString(url.PathEscape(c.Database))
	}

	params := make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		if v != "" {
			params[k] = v
		}
	}
	if c.SSLMode != "" {
		params["sslmode"] = c.SSLMode
	} else if _, ok := params["sslmode"]; !ok {
		params["sslmode"] = "prefer"
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i == 0 {
			dsn.WriteString("?")
		} else {
			dsn.WriteString("&")
		}
		dsn.WriteString(url.QueryEscape(k))
		dsn.WriteString("=")
		dsn.WriteString(url.QueryEscape(params[k]))
	}
	return dsn.String()
}
