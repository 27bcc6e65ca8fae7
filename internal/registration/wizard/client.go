package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	identitymodels "tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Client implements Validator over the registration HTTP API. Transport
// failures surface as the retryable network code; validation rejections carry
// the server's error code.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type validateEmailRequest struct {
	Email           string `json:"email"`
	LeaderAccountID string `json:"leader_account_id"`
	EventID         string `json:"event_id"`
}

type validateNikRequest struct {
	NIK                string   `json:"nik"`
	CurrentMemberEmail string   `json:"current_member_email"`
	OtherNiks          []string `json:"other_niks,omitempty"`
	TeamID             string   `json:"team_id,omitempty"`
	EventID            string   `json:"event_id"`
}

type validateResponse struct {
	Valid   bool                            `json:"valid"`
	User    *identitymodels.ProfileSnapshot `json:"user,omitempty"`
	Code    string                          `json:"code,omitempty"`
	Message string                          `json:"message,omitempty"`
}

func (c *Client) ValidateEmail(ctx context.Context, eventID id.EventID, leaderID id.AccountID, email string) (*identitymodels.ProfileSnapshot, error) {
	req := validateEmailRequest{
		Email:           email,
		LeaderAccountID: leaderID.String(),
		EventID:         eventID.String(),
	}
	var resp validateResponse
	if err := c.post(ctx, "/api/v1/registration/validate-email", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Valid {
		return nil, dErrors.New(dErrors.Code(resp.Code), resp.Message)
	}
	if resp.User == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "valid response without a user profile")
	}
	return resp.User, nil
}

func (c *Client) ValidateNik(ctx context.Context, eventID id.EventID, memberEmail, nikValue string, otherNiks []string) error {
	req := validateNikRequest{
		NIK:                nikValue,
		CurrentMemberEmail: memberEmail,
		OtherNiks:          otherNiks,
		EventID:            eventID.String(),
	}
	var resp validateResponse
	if err := c.post(ctx, "/api/v1/registration/validate-nik", req, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return dErrors.New(dErrors.Code(resp.Code), resp.Message)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "validation request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return dErrors.Newf(dErrors.CodeNetwork, "validation service returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeNetwork, "decode validation response")
	}
	return nil
}
