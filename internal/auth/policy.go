package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// Variant identifies an incident creation endpoint.
type Variant string

const (
	VariantSelfReport Variant = "incidents:self"
	VariantWeb        Variant = "incidents:web"
	VariantMobile     Variant = "incidents:mobile"
)

const actionCreate = "create"

const (
	msgForbidden   = "Forbidden: You do not have access to this resource."
	msgNoClient    = "Unauthorized: You do not belong to any client."
	policyModelDef = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && r.obj == p.obj && r.act == p.act
`
)

var defaultRules = [][]string{
	{"*", string(VariantSelfReport), actionCreate},
	{string(domain.RoleAdmin), string(VariantWeb), actionCreate},
	{string(domain.RoleAgent), string(VariantWeb), actionCreate},
	{string(domain.RoleUser), string(VariantMobile), actionCreate},
}

// Policy decides whether a token may use an incident creation variant.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the role policy from an in-memory casbin model.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModelDef)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, rule := range defaultRules {
		if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", rule, err)
		}
	}
	return &Policy{enforcer: enforcer}, nil
}

// Authorize checks role first, then client association for variants that need one.
func (p *Policy) Authorize(token domain.Token, variant Variant) error {
	allowed, err := p.enforcer.Enforce(string(token.Role), string(variant), actionCreate)
	if err != nil {
		return apperrors.NewUnexpectedError(err)
	}
	if !allowed {
		return apperrors.NewForbidden(msgForbidden)
	}
	if variant == VariantWeb && !token.HasClient() {
		return apperrors.NewUnauthorized(msgNoClient)
	}
	return nil
}
