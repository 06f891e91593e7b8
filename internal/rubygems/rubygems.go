// Package rubygems provides the registry metadata client for rubygems.org.
package rubygems

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/logstash-tools/plugindex/client"
	"github.com/logstash-tools/plugindex/internal/core"
	"github.com/logstash-tools/plugindex/memo"
)

const DefaultURL = "https://rubygems.org"

// Client fetches and caches the full set of published version records for
// one artifact. The registry is asked at most once per process no matter
// how many callers ask, and an answer of "no such artifact" is cached the
// same way as a list of versions.
type Client struct {
	baseURL string
	name    string
	http    *client.Client
	urls    *URLs
	idx     *memo.Lazy[*versionIndex]
}

// versionIndex is the computed, immutable result of one registry fetch.
// It is non-nil even for an empty version set, so a 404 answer is cached
// like any other.
type versionIndex struct {
	ordered  []core.VersionRecord // descending by semantic version
	byNumber map[string]*core.VersionRecord
}

// New creates a metadata client for the named artifact. An empty baseURL
// selects rubygems.org; a nil httpClient selects client.DefaultClient.
func New(name, baseURL string, httpClient *client.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = client.DefaultClient()
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		name:    name,
		http:    httpClient,
	}
	c.urls = &URLs{baseURL: c.baseURL}
	c.idx = memo.NewLazy(c.fetch)
	return c
}

// Name returns the artifact name this client serves.
func (c *Client) Name() string {
	return c.name
}

// URLs returns the URL builder for the registry.
func (c *Client) URLs() client.URLBuilder {
	return c.urls
}

// Versions returns all published records, strictly descending by semantic
// version. An artifact unknown to the registry yields an empty slice.
func (c *Client) Versions(ctx context.Context) ([]core.VersionRecord, error) {
	idx, err := c.idx.Get(ctx)
	if err != nil {
		return nil, err
	}
	return idx.ordered, nil
}

// ForVersion returns the record whose number matches exactly.
func (c *Client) ForVersion(ctx context.Context, number string) (*core.VersionRecord, error) {
	idx, err := c.idx.Get(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := idx.byNumber[number]
	if !ok {
		return nil, &core.NotFoundError{Name: c.name, Version: number}
	}
	return rec, nil
}

// Latest returns the newest published record.
func (c *Client) Latest(ctx context.Context) (*core.VersionRecord, error) {
	idx, err := c.idx.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(idx.ordered) == 0 {
		return nil, &core.NotFoundError{Name: c.name}
	}
	return &idx.ordered[0], nil
}

type versionResponse struct {
	Number     string            `json:"number"`
	CreatedAt  string            `json:"created_at"`
	Prerelease bool              `json:"prerelease"`
	Metadata   map[string]string `json:"metadata"`
}

func (c *Client) fetch(ctx context.Context) (*versionIndex, error) {
	url := fmt.Sprintf("%s/api/v1/versions/%s.json", c.baseURL, c.name)

	body, err := c.http.GetBody(ctx, url)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			// An unknown artifact is an empty version set, not an error.
			return &versionIndex{byNumber: map[string]*core.VersionRecord{}}, nil
		}
		return nil, err
	}

	var resp []versionResponse
	if err := json.Unmarshal(coerceUTF8(body), &resp); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	idx := &versionIndex{
		ordered:  make([]core.VersionRecord, 0, len(resp)),
		byNumber: make(map[string]*core.VersionRecord, len(resp)),
	}
	for _, v := range resp {
		var createdAt time.Time
		if v.CreatedAt != "" {
			createdAt, _ = time.Parse(time.RFC3339, v.CreatedAt)
		}
		rec := core.VersionRecord{
			Number:     v.Number,
			CreatedAt:  createdAt,
			Prerelease: v.Prerelease,
			Metadata:   v.Metadata,
		}
		if sv, err := semver.NewVersion(v.Number); err == nil && sv.Prerelease() != "" {
			rec.Prerelease = true
		}
		idx.ordered = append(idx.ordered, rec)
	}

	sort.SliceStable(idx.ordered, func(i, j int) bool {
		return versionLess(idx.ordered[j].Number, idx.ordered[i].Number)
	})
	for i := range idx.ordered {
		idx.byNumber[idx.ordered[i].Number] = &idx.ordered[i]
	}
	return idx, nil
}

// versionLess orders numbers ascending. Semver-parseable pairs compare as
// semver; any pair involving a number semver rejects (rubygems permits
// four-segment numbers like 4.1.2.1) compares segment-wise numerically, so
// 9.x still sorts below 10.x.
func versionLess(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.LessThan(vb)
	}
	return segmentLess(a, b)
}

// segmentLess compares dotted version numbers segment by segment. Numeric
// segments compare as integers and sort above non-numeric ones; a number
// that runs out of segments sorts below its extension.
func segmentLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			return an < bn
		case aErr == nil:
			return false
		case bErr == nil:
			return true
		default:
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}

// coerceUTF8 makes body valid UTF-8. The registry serves records for
// artifacts published with mixed encodings; invalid byte sequences are
// decoded as Latin-1 while valid sequences pass through untouched.
func coerceUTF8(body []byte) []byte {
	if utf8.Valid(body) {
		return body
	}
	out := make([]byte, 0, len(body)+utf8.UTFMax)
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, rune(body[0]))
		} else {
			out = append(out, body[:size]...)
		}
		body = body[size:]
	}
	return out
}

// URLs builds public rubygems.org URLs for an artifact.
type URLs struct {
	baseURL string
}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/gems/%s/versions/%s", u.baseURL, name, version)
	}
	return fmt.Sprintf("%s/gems/%s", u.baseURL, name)
}

func (u *URLs) Download(name, version string) string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s/downloads/%s-%s.gem", u.baseURL, name, version)
}

func (u *URLs) Documentation(name, version string) string {
	if version != "" {
		return fmt.Sprintf("http://www.rubydoc.info/gems/%s/%s", name, version)
	}
	return fmt.Sprintf("http://www.rubydoc.info/gems/%s", name)
}

func (u *URLs) PURL(name, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:gem/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:gem/%s", name)
}
