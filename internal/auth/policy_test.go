package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

func tokenWith(role domain.Role, clientID *string) domain.Token {
	return domain.Token{Subject: "u1", ClientID: clientID, Role: role, Audience: "a"}
}

func strPtr(s string) *string { return &s }

func TestPolicySelfReportAllowsAnyRole(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleAnalyst, domain.RoleUser, "unknown"} {
		assert.NoError(t, policy.Authorize(tokenWith(role, nil), VariantSelfReport), "role %s", role)
	}
}

func TestPolicyWeb(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	cases := []struct {
		name    string
		token   domain.Token
		status  int
		code    string
		message string
	}{
		{name: "admin", token: tokenWith(domain.RoleAdmin, strPtr("c1"))},
		{name: "agent", token: tokenWith(domain.RoleAgent, strPtr("c1"))},
		{name: "user", token: tokenWith(domain.RoleUser, strPtr("c1")), status: 403, code: apperrors.CodeForbidden, message: msgForbidden},
		{name: "analyst", token: tokenWith(domain.RoleAnalyst, strPtr("c1")), status: 403, code: apperrors.CodeForbidden, message: msgForbidden},
		{name: "admin without client", token: tokenWith(domain.RoleAdmin, nil), status: 401, code: apperrors.CodeUnauthorized, message: msgNoClient},
		{name: "user without client fails on role first", token: tokenWith(domain.RoleUser, nil), status: 403, code: apperrors.CodeForbidden, message: msgForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Authorize(tc.token, VariantWeb)
			if tc.status == 0 {
				assert.NoError(t, err)
				return
			}
			domainErr := apperrors.ToDomainError(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.status, domainErr.HTTPStatus)
			assert.Equal(t, tc.code, domainErr.Code)
			assert.Equal(t, tc.message, domainErr.Message)
		})
	}
}

func TestPolicyMobile(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	assert.NoError(t, policy.Authorize(tokenWith(domain.RoleUser, strPtr("c2")), VariantMobile))
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleAnalyst} {
		err := policy.Authorize(tokenWith(role, strPtr("c2")), VariantMobile)
		assert.True(t, apperrors.IsKind(err, apperrors.CodeForbidden), "role %s", role)
	}
}
