package bina

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// PhoneClient calls the phone-reveal XHR endpoint. The endpoint checks the
// CSRF token embedded in the listing page and the XMLHttpRequest marker.
type PhoneClient struct {
	baseURL string
	client  *http.Client
}

func NewPhoneClient(baseURL string) *PhoneClient {
	return &PhoneClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type phonesResponse struct {
	Phones []string `json:"phones"`
}

// GetPhones fetches the revealed phone numbers for a listing. csrfToken
// comes from the listing page's meta tag; an empty token is sent as-is and
// usually rejected by the site.
func (c *PhoneClient) GetPhones(ctx context.Context, listingID, csrfToken string) ([]string, error) {
	sourceLink := fmt.Sprintf("%s/items/%s", c.baseURL, listingID)
	endpoint := fmt.Sprintf("%s/items/%s/phones?%s", c.baseURL, listingID, url.Values{
		"source_link":    {sourceLink},
		"trigger_button": {"main"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build phones request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Referer", sourceLink)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if csrfToken != "" {
		req.Header.Set("X-CSRF-Token", csrfToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("phones request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("phones endpoint status %d", resp.StatusCode)
	}

	var parsed phonesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode phones response: %w", err)
	}
	return parsed.Phones, nil
}
