// Package search builds web search URLs for the search bar.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// Engine names a web search engine.
type Engine string

const (
	Google     Engine = "google"
	Bing       Engine = "bing"
	Yandex     Engine = "yandex"
	DuckDuckGo Engine = "duckduckgo"
)

// Default is the engine used when none is configured.
const Default = Google

// Engines lists the engines in cycling order.
var Engines = []Engine{Google, Bing, Yandex, DuckDuckGo}

var prefixes = map[Engine]string{
	Google:     "https://www.google.com/search?q=",
	Bing:       "https://www.bing.com/search?q=",
	DuckDuckGo: "https://duckduckgo.com/?q=",
	Yandex:     "https://yandex.com/search/?text=",
}

var labels = map[Engine]string{
	Google:     "Google",
	Bing:       "Bing",
	Yandex:     "Yandex",
	DuckDuckGo: "DuckDuckGo",
}

// Parse resolves an engine name, case-insensitively.
func Parse(name string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := prefixes[e]; !ok {
		return "", fmt.Errorf("unknown search engine %q (want google, bing, yandex or duckduckgo)", name)
	}
	return e, nil
}

// Next returns the engine after e in cycling order. Unknown engines cycle to
// the first.
func (e Engine) Next() Engine {
	for i, cur := range Engines {
		if cur == e {
			return Engines[(i+1)%len(Engines)]
		}
	}
	return Engines[0]
}

// Label is the display name.
func (e Engine) Label() string {
	if l, ok := labels[e]; ok {
		return l
	}
	return string(e)
}

// URL returns the results URL for query. An all-blank query reports false.
func (e Engine) URL(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}
	prefix, ok := prefixes[e]
	if !ok {
		prefix = prefixes[Default]
	}
	return prefix + encodeComponent(query), true
}

// componentFixups turns QueryEscape output into URI component form: spaces
// are %20, and the marks !'()* stay literal.
var componentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes s the way a browser escapes a URI component.
func encodeComponent(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}
