// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fonts lists the font families a user can pick for document
// entries. With a Google Fonts API key the list comes from the webfonts API;
// without one, or when the API cannot be reached, a built-in catalog is used.
package fonts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/codedocx/internal/httputil"
	"github.com/pdiddy/codedocx/pkg/types"
)

// webfontsAPIBase is the Google Fonts developer API endpoint. Declared as a
// var so tests can substitute an httptest server.
var webfontsAPIBase = "https://www.googleapis.com/webfonts/v1/webfonts"

// StaticCatalog is the fallback list of families commonly installed with
// word processors.
var StaticCatalog = []string{
	"Arial",
	"Calibri",
	"Cambria",
	"Candara",
	"Consolas",
	"Courier New",
	"Garamond",
	"Georgia",
	"Helvetica",
	"Lucida Console",
	"Segoe UI",
	"Tahoma",
	"Times New Roman",
	"Trebuchet MS",
	"Verdana",
}

// Source identifies where a family list came from.
type Source string

const (
	SourceRemote Source = "google-fonts"
	SourceStatic Source = "static"
)

// Result is the outcome of a catalog lookup.
type Result struct {
	Families []string
	Source   Source

	// FallbackReason explains why the static catalog was used, empty when
	// the remote lookup succeeded or no API key was configured.
	FallbackReason string
}

// Catalog looks up available font families.
type Catalog struct {
	Client *http.Client
	Config types.FontsConfig
	Logger *zap.Logger
}

// NewCatalog returns a Catalog using cfg. A zero timeout defaults to 10s.
func NewCatalog(cfg types.FontsConfig, logger *zap.Logger) *Catalog {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		Client: &http.Client{Timeout: timeout},
		Config: cfg,
		Logger: logger,
	}
}

// Lookup returns the available font families, sorted. It never fails: a
// missing API key or a failed request yields the static catalog.
func (c *Catalog) Lookup(ctx context.Context) Result {
	if c.Config.APIKey == "" {
		return staticResult("")
	}

	families, err := c.fetch(ctx)
	if err != nil {
		c.Logger.Warn("font lookup failed, using static catalog", zap.Error(err))
		return staticResult(err.Error())
	}
	if len(families) == 0 {
		return staticResult("font API returned no families")
	}
	return Result{Families: families, Source: SourceRemote}
}

// Contains reports whether family appears in r.
func (r Result) Contains(family string) bool {
	for _, f := range r.Families {
		if f == family {
			return true
		}
	}
	return false
}

type webfontsResponse struct {
	Items []struct {
		Family string `json:"family"`
	} `json:"items"`
}

func (c *Catalog) fetch(ctx context.Context) ([]string, error) {
	base := c.Config.Endpoint
	if base == "" {
		base = webfontsAPIBase
	}
	params := url.Values{
		"key":  {c.Config.APIKey},
		"sort": {"alpha"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.Config.MaxRetries, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("font API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("font API returned HTTP %d", resp.StatusCode)
	}

	var wr webfontsResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("parsing font API response: %w", err)
	}

	seen := make(map[string]bool, len(wr.Items))
	families := make([]string, 0, len(wr.Items))
	for _, item := range wr.Items {
		if item.Family == "" || seen[item.Family] {
			continue
		}
		seen[item.Family] = true
		families = append(families, item.Family)
	}
	sort.Strings(families)
	return families, nil
}

func staticResult(reason string) Result {
	families := make([]string, len(StaticCatalog))
	copy(families, StaticCatalog)
	return Result{Families: families, Source: SourceStatic, FallbackReason: reason}
}
