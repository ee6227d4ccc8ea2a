// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tomtom215/cinematographus/internal/models"
)

// Streaming is the client for the streaming availability provider. The
// provider is fronted by an API gateway that authenticates via key and host
// headers.
type Streaming struct {
	*baseClient
}

// NewStreaming builds a Streaming client from opts. The gateway host header
// is derived from the base URL.
func NewStreaming(opts Options) *Streaming {
	c := &Streaming{baseClient: newBaseClient(opts)}
	host := ""
	if u, err := url.Parse(opts.BaseURL); err == nil {
		host = u.Host
	}
	c.authorize = func(req *http.Request) {
		req.Header.Set("x-rapidapi-key", c.opts.APIKey)
		req.Header.Set("x-rapidapi-host", host)
	}
	return c
}

type streamingShowResponse struct {
	StreamingOptions map[string][]struct {
		Type    string `json:"type"`
		Link    string `json:"link"`
		Service struct {
			Name     string `json:"name"`
			ImageSet struct {
				LightThemeImage string `json:"lightThemeImage"`
			} `json:"imageSet"`
		} `json:"service"`
	} `json:"streamingOptions"`
}

// AvailabilityByID returns where a film can be streamed in one country,
// one entry per service. A film with no offers in that country is reported
// as a 404 StatusError.
//
// Offers are grouped by service name: the entry keeps the first link and
// logo seen and joins the distinct offer types alphabetically with "/",
// each capitalized. Entries are sorted by service name.
func (c *Streaming) AvailabilityByID(ctx context.Context, imdbID, country string) ([]models.StreamingOption, error) {
	params := url.Values{}
	params.Set("country", country)

	var resp streamingShowResponse
	if err := c.getJSON(ctx, "/shows/"+imdbID, params, &resp); err != nil {
		return nil, err
	}

	offers := resp.StreamingOptions[country]
	if len(offers) == 0 {
		return nil, &StatusError{Provider: c.opts.Provider, StatusCode: http.StatusNotFound, Body: "no streaming options for country " + country}
	}

	type grouped struct {
		option models.StreamingOption
		types  map[string]struct{}
	}
	services := make(map[string]*grouped)
	for _, offer := range offers {
		name := offer.Service.Name
		if name == "" {
			name = "Unknown"
		}
		g, ok := services[name]
		if !ok {
			g = &grouped{
				option: models.StreamingOption{
					ServiceName: name,
					Link:        offer.Link,
					Logo:        offer.Service.ImageSet.LightThemeImage,
				},
				types: make(map[string]struct{}),
			}
			services[name] = g
		}
		g.types[capitalize(offer.Type)] = struct{}{}
	}

	options := make([]models.StreamingOption, 0, len(services))
	for _, g := range services {
		types := make([]string, 0, len(g.types))
		for t := range g.types {
			types = append(types, t)
		}
		sort.Strings(types)
		g.option.ServiceType = strings.Join(types, "/")
		options = append(options, g.option)
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].ServiceName < options[j].ServiceName
	})
	return options, nil
}

func capitalize(s string) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
