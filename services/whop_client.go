// points-ledger-system/services/whop_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// WhopClient talks to the Whop platform API. Only the member listing is
// needed here; everything identity-related otherwise arrives via headers or
// webhooks.
type WhopClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// WhopMember is the subset of the platform's member payload we mirror.
type WhopMember struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

type listMembersResponse struct {
	Data []WhopMember `json:"data"`
}

func NewWhopClient(baseURL, apiKey string) *WhopClient {
	if baseURL == "" {
		baseURL = "https://api.whop.com"
	}
	return &WhopClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchMembers lists the members of one community.
func (c *WhopClient) FetchMembers(ctx context.Context, companyID string) ([]WhopMember, error) {
	url := fmt.Sprintf("%s/api/v2/companies/%s/members", c.BaseURL, companyID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Whop members API returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("whop members fetch failed: %d", resp.StatusCode)
	}

	var out listMembersResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
