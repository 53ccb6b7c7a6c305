package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

const (
	userInfoKey = "apigateway_user_info"
	tokenKey    = "auth_token"
)

// DefaultUserInfoHeader is the header the API gateway uses to forward caller claims.
const DefaultUserInfoHeader = "X-Apigateway-Api-Userinfo"

// RequiredClaims lists the claims every token must carry, in check order.
var RequiredClaims = []string{"sub", "cid", "role", "aud"}

// GatewayMiddleware decodes the identity blob the API gateway attaches to requests.
// The gateway has already authenticated the caller; the blob is not verified here.
type GatewayMiddleware struct {
	header string
	logger *zap.Logger
}

// NewGatewayMiddleware constructs middleware reading the given header.
func NewGatewayMiddleware(header string, logger *zap.Logger) *GatewayMiddleware {
	if header == "" {
		header = DefaultUserInfoHeader
	}
	return &GatewayMiddleware{header: header, logger: logger}
}

// Handle attaches the decoded claim mapping, if any, to the request.
func (m *GatewayMiddleware) Handle(c *fiber.Ctx) error {
	encoded := strings.TrimSpace(c.Get(m.header))
	if encoded == "" {
		return c.Next()
	}
	claims, err := DecodeUserInfo(encoded)
	if err != nil {
		m.logger.Warn("discarding undecodable gateway user info", zap.Error(err))
		return c.Next()
	}
	c.Locals(userInfoKey, claims)
	return c.Next()
}

// DecodeUserInfo decodes a base64 JSON object, accepting padded and unpadded alphabets.
func DecodeUserInfo(encoded string) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding, base64.RawStdEncoding} {
		raw, err = enc.DecodeString(encoded)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("parse user info: %w", err)
	}
	if claims == nil {
		return nil, fmt.Errorf("user info is not an object")
	}
	return claims, nil
}

// RequireToken rejects requests without a complete gateway token and exposes it to handlers.
func RequireToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, _ := c.Locals(userInfoKey).(map[string]any)
		token, err := ExtractToken(claims)
		if err != nil {
			return err
		}
		c.Locals(tokenKey, token)
		return c.Next()
	}
}

// ExtractToken checks the claim mapping for required keys; the first missing key wins.
func ExtractToken(claims map[string]any) (domain.Token, error) {
	if claims == nil {
		return domain.Token{}, apperrors.NewUnauthenticated("Token is missing")
	}
	for _, field := range RequiredClaims {
		if _, ok := claims[field]; !ok {
			return domain.Token{}, apperrors.NewUnauthenticated(field + " is missing in token")
		}
	}

	token := domain.Token{
		Subject:  claimString(claims["sub"]),
		Role:     domain.Role(claimString(claims["role"])),
		Audience: claimString(claims["aud"]),
	}
	if cid, ok := clientClaim(claims["cid"]); ok {
		token.ClientID = &cid
	}
	return token, nil
}

// clientClaim renders any non-null cid as a string. JSON numbers keep their
// integer form.
func clientClaim(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			return claimString(val[0])
		}
	}
	return ""
}

// TokenFromContext retrieves the token placed by RequireToken.
func TokenFromContext(c *fiber.Ctx) (domain.Token, bool) {
	token, ok := c.Locals(tokenKey).(domain.Token)
	return token, ok
}
