package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// rolePolicies is the static role -> resource -> action grant table. The
// relationship checks (request owner, manager of owner) live in the time-off
// service; this only gates routes by coarse role.
var rolePolicies = [][3]string{
	{"employee", "timeoff", "read"},
	{"employee", "timeoff", "create"},
	{"employee", "timeoff", "withdraw"},
	{"employee", "timeoff", "reschedule"},
	{"employee", "employee", "read"},
	{"employee", "policy", "read"},

	{"manager", "timeoff", "read"},
	{"manager", "timeoff", "create"},
	{"manager", "timeoff", "withdraw"},
	{"manager", "timeoff", "reschedule"},
	{"manager", "timeoff", "approve"},
	{"manager", "timeoff", "read_all"},
	{"manager", "employee", "read"},
	{"manager", "policy", "read"},

	{"admin", "timeoff", "read"},
	{"admin", "timeoff", "create"},
	{"admin", "timeoff", "withdraw"},
	{"admin", "timeoff", "reschedule"},
	{"admin", "timeoff", "approve"},
	{"admin", "timeoff", "read_all"},
	{"admin", "employee", "read"},
	{"admin", "employee", "create"},
	{"admin", "policy", "read"},
	{"admin", "policy", "write"},
	{"admin", "policy", "reset"},
}

// NewEnforcer builds a casbin enforcer from the embedded model and the static
// grant table. No storage adapter: the policy is part of the binary.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range rolePolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	return e, nil
}
