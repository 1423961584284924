package ims

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shin2080/asset-selector-http-api/internal/transport"
)

// Exchanger trades a signed assertion for an access token through the
// local relay. Browsers cannot call the authorization endpoint directly
// because of cross-origin restrictions, so the assertion is posted to the
// relay, which forwards it upstream.
type Exchanger struct {
	client   *http.Client
	relayURL string
	logger   *zap.Logger
}

// NewExchanger builds an Exchanger posting to the given relay URL. A zero
// timeout leaves deadline control to the request context.
func NewExchanger(relayURL string, timeout time.Duration, logger *zap.Logger) *Exchanger {
	if logger == nil {
		logger = zap.L()
	}
	return &Exchanger{
		client:   transport.NewClient(timeout),
		relayURL: relayURL,
		logger:   logger,
	}
}

// Exchange posts the assertion as form fields to the relay and decodes the
// token response. Non-2xx responses, and 2xx bodies carrying an "error"
// field, are reported as *ExchangeError with the status and raw body.
func (e *Exchanger) Exchange(ctx context.Context, clientID, clientSecret, assertion, endpoint string) (*AccessToken, error) {
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("jwt_token", assertion)
	form.Set("ims_endpoint", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.relayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, transport.ClassifyError(ctx, "exchange token", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, transport.ClassifyError(ctx, "exchange token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transport.ClassifyError(ctx, "read exchange response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Warn("token exchange failed",
			zap.Int("status", resp.StatusCode),
			zap.String("client_id", clientID),
		)
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
		ErrorCode   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}
	if payload.ErrorCode != "" {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	e.logger.Debug("token exchange succeeded", zap.String("client_id", clientID), zap.Int64("expires_in", payload.ExpiresIn))

	return &AccessToken{
		Value:     payload.AccessToken,
		TokenType: payload.TokenType,
		ExpiresIn: payload.ExpiresIn,
		IssuedAt:  time.Now(),
	}, nil
}

// Issuer composes assertion building and exchange into one call.
type Issuer struct {
	exchanger *Exchanger
}

// NewIssuer wires an Issuer around the given exchanger.
func NewIssuer(exchanger *Exchanger) *Issuer {
	return &Issuer{exchanger: exchanger}
}

// IssueAccessToken builds the assertion and exchanges it, surfacing
// failures from either stage unchanged so callers can tell a local
// cryptographic problem from a remote rejection.
func (i *Issuer) IssueAccessToken(ctx context.Context, creds ServiceAccountCredentials) (*AccessToken, error) {
	assertion, err := BuildAssertion(creds)
	if err != nil {
		return nil, err
	}
	return i.exchanger.Exchange(ctx, creds.ClientID, creds.ClientSecret, assertion, creds.Endpoint)
}
