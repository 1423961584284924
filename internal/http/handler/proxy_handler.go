package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shin2080/asset-selector-http-api/internal/config"
	"github.com/shin2080/asset-selector-http-api/internal/dam"
	"github.com/shin2080/asset-selector-http-api/internal/ims"
	"github.com/shin2080/asset-selector-http-api/internal/transport"
)

// statusClientClosedRequest is the nginx convention for a request aborted
// by the caller; net/http defines no constant for it.
const statusClientClosedRequest = 499

// ProxyHandler serves the local development surface: the JWT exchange
// relay, server-side token issuing, and authenticated DAM passthroughs.
type ProxyHandler struct {
	cfg    config.Config
	issuer *ims.Issuer
	assets *dam.Client
	client *http.Client
	logger *zap.Logger
}

// NewProxyHandler creates the handler set.
func NewProxyHandler(cfg config.Config, issuer *ims.Issuer, assets *dam.Client, logger *zap.Logger) *ProxyHandler {
	if logger == nil {
		logger = zap.L()
	}
	return &ProxyHandler{
		cfg:    cfg,
		issuer: issuer,
		assets: assets,
		client: transport.NewClient(cfg.UpstreamTimeout),
		logger: logger,
	}
}

// ExchangeJWT relays a signed assertion to the real authorization endpoint
// and streams the response back. Browsers cannot call the endpoint
// directly because of cross-origin restrictions; this route is the trusted
// intermediary they post to instead.
func (h *ProxyHandler) ExchangeJWT(c *gin.Context) {
	var req struct {
		ClientID     string `form:"client_id" binding:"required"`
		ClientSecret string `form:"client_secret" binding:"required"`
		JWTToken     string `form:"jwt_token" binding:"required"`
		IMSEndpoint  string `form:"ims_endpoint" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "client_id, client_secret, jwt_token, and ims_endpoint are required."})
		return
	}

	form := url.Values{}
	form.Set("client_id", req.ClientID)
	form.Set("client_secret", req.ClientSecret)
	form.Set("jwt_token", req.JWTToken)

	base := strings.TrimSpace(req.IMSEndpoint)
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	endpoint := fmt.Sprintf("%s/ims/exchange/jwt", strings.TrimSuffix(base, "/"))
	upstream, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		h.respondError(c, transport.ClassifyError(c.Request.Context(), "relay exchange", err))
		return
	}
	upstream.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(upstream)
	if err != nil {
		h.respondError(c, transport.ClassifyError(c.Request.Context(), "relay exchange", err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.respondError(c, transport.ClassifyError(c.Request.Context(), "read exchange response", err))
		return
	}

	h.logger.Info("relayed jwt exchange",
		zap.String("endpoint", req.IMSEndpoint),
		zap.Int("status", resp.StatusCode),
	)
	c.Data(resp.StatusCode, "application/json", body)
}

// IssueToken issues an access token from the credentials configured on the
// server, for demo setups where the browser holds no secrets.
func (h *ProxyHandler) IssueToken(c *gin.Context) {
	creds := ims.ServiceAccountCredentials{
		ClientID:           h.cfg.IMSClientID,
		ClientSecret:       h.cfg.IMSClientSecret,
		TechnicalAccountID: h.cfg.IMSTechnicalAccountID,
		Org:                h.cfg.IMSOrg,
		PrivateKeyPEM:      h.cfg.IMSPrivateKeyPEM,
		Scopes:             h.cfg.IMSScopes,
		Endpoint:           h.cfg.IMSEndpoint,
	}
	if creds.ClientID == "" || creds.PrivateKeyPEM == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_configured", "error_description": "No service-account credentials configured on the server."})
		return
	}

	token, err := h.issuer.IssueAccessToken(c.Request.Context(), creds)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token.Value,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
	})
}

// ListAssets proxies a folder listing and returns the normalized result.
func (h *ProxyHandler) ListAssets(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}
	list, err := h.assets.ListAssets(c.Request.Context(), token, c.Param("assetPath"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AssetMetadata proxies a metadata read and returns the normalized schema.
func (h *ProxyHandler) AssetMetadata(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}
	schema, err := h.assets.AssetMetadata(c.Request.Context(), token, c.Param("assetPath"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// UpdateMetadata proxies a metadata write.
func (h *ProxyHandler) UpdateMetadata(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		return
	}
	var properties map[string]interface{}
	if err := c.ShouldBindJSON(&properties); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Body must be a JSON object of metadata properties."})
		return
	}
	if err := h.assets.UpdateMetadata(c.Request.Context(), token, c.Param("assetPath"), properties); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *ProxyHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr *ims.ValidationError
		keyFormatErr  *ims.KeyFormatError
		keyImportErr  *ims.KeyImportError
		exchangeErr   *ims.ExchangeError
		requestErr    *dam.RequestError
		shapeErr      *dam.ShapeError
		networkErr    *transport.NetworkError
	)
	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": err.Error()})
	case errors.As(err, &keyFormatErr), errors.As(err, &keyImportErr):
		h.logger.Warn("private key rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_key", "error_description": err.Error()})
	case errors.As(err, &exchangeErr):
		h.logger.Warn("token exchange rejected", zap.Int("status", exchangeErr.Status))
		c.Data(exchangeErr.Status, "application/json", []byte(exchangeErr.Body))
	case errors.As(err, &requestErr):
		h.logger.Warn("dam rejected request", zap.Int("status", requestErr.Status))
		c.Data(requestErr.Status, "application/json", []byte(requestErr.Body))
	case errors.As(err, &shapeErr):
		h.logger.Error("unexpected upstream payload", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "bad_upstream_payload", "error_description": err.Error()})
	case errors.Is(err, transport.ErrTimeout):
		h.logger.Warn("upstream timeout", zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "upstream_timeout", "error_description": err.Error()})
	case errors.Is(err, transport.ErrCancelled):
		c.Status(statusClientClosedRequest)
	case errors.As(err, &networkErr):
		h.logger.Error("upstream unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream_unreachable", "error_description": err.Error()})
	default:
		h.logger.Error("proxy failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authorization header missing or invalid."})
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
