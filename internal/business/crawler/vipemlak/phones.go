package vipemlak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelshowParams are the form values the vipemlak.az phone endpoint expects.
// They are scraped off the #telshow button on the detail page.
type TelshowParams struct {
	ID   string
	Type string
	Hash string
	Ref  string
}

// PhoneClient reveals listing phone numbers through the site's ajax.php
// endpoint, mimicking the on-page "show phone" button.
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

type telshowResponse struct {
	OK  int    `json:"ok"`
	Tel string `json:"tel"`
}

func (c *PhoneClient) GetPhone(ctx context.Context, p TelshowParams, referer string) (string, error) {
	form := url.Values{
		"act": {"telshow"},
		"id":  {p.ID},
		"t":   {p.Type},
		"h":   {p.Hash},
		"rf":  {p.Ref},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ajax.php", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating telshow request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", referer)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting phone for %s: %w", p.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("telshow endpoint returned status %d for %s", resp.StatusCode, p.ID)
	}

	var out telshowResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding telshow response: %w", err)
	}
	if out.OK != 1 || out.Tel == "" {
		return "", fmt.Errorf("telshow endpoint returned no phone for %s", p.ID)
	}
	return out.Tel, nil
}
