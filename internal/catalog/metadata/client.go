// Package metadata fetches title detail objects from the external movie
// metadata API.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Detail is the subset of the metadata API's movie/show object the app uses.
type Detail struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int   `json:"genre_ids"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	TrailerKey   string  `json:"trailer_key,omitempty"`
}

// Client talks to a TMDB-style metadata API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New constructs a Client. timeout bounds every request; the caller's
// context can cut them shorter.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// MovieDetail fetches the detail object for a movie by external id.
func (c *Client) MovieDetail(ctx context.Context, id int64) (*Detail, error) {
	return c.fetch(ctx, fmt.Sprintf("/movie/%d", id))
}

// SeriesDetail fetches the detail object for a show by external id.
func (c *Client) SeriesDetail(ctx context.Context, id int64) (*Detail, error) {
	return c.fetch(ctx, fmt.Sprintf("/tv/%d", id))
}

func (c *Client) fetch(ctx context.Context, path string) (*Detail, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata api returned status %d", resp.StatusCode)
	}

	var detail Detail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	// Shows use "name" instead of "title"; decode handles it via alias below.
	return &detail, nil
}

// UnmarshalJSON accepts both movie ("title") and show ("name") shapes.
func (d *Detail) UnmarshalJSON(data []byte) error {
	type alias Detail
	aux := struct {
		*alias
		Name string `json:"name"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.Title == "" {
		d.Title = aux.Name
	}
	return nil
}
