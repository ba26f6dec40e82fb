package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteVerifier delegates token verification to the identity provider's
// verification endpoint over HTTP. The token is never parsed locally.
type RemoteVerifier struct {
	endpoint string
	client   *http.Client
}

func NewRemoteVerifier(endpoint string) *RemoteVerifier {
	return &RemoteVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteVerifyRequest struct {
	IDToken string `json:"idToken"`
}

type remoteVerifyResponse struct {
	Success     bool   `json:"success"`
	UID         string `json:"uid"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Error       string `json:"error"`
}

// Verify posts the token to the provider and maps the reply onto Claims.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	body, err := json.Marshal(remoteVerifyRequest{IDToken: token})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var out remoteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success || out.UID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SubjectID: out.UID,
		Phone:     out.PhoneNumber,
		Email:     out.Email,
	}, nil
}
