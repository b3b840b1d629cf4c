package tap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PhoneClient calls the tap.az phone disclosure endpoint. Phone numbers are
// not part of the listing markup and must be requested separately per ad.
type PhoneClient struct {
	baseURL string
	client  *http.Client
}

func NewPhoneClient(baseURL string) *PhoneClient {
	return &PhoneClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type phonesResponse struct {
	Phones []string `json:"phones"`
}

func (c *PhoneClient) GetPhones(ctx context.Context, listingID string) ([]string, error) {
	url := fmt.Sprintf("%s/ads/%s/phones", c.baseURL, listingID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating phones request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", fmt.Sprintf("%s/elanlar/dasinmaz-emlak/menziller/%s", c.baseURL, listingID))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting phones for %s: %w", listingID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("phones endpoint returned status %d for %s", resp.StatusCode, listingID)
	}

	var out phonesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding phones response: %w", err)
	}
	return out.Phones, nil
}
