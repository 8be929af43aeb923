package service

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/kevinaaaquil/newsroom/models"
)

type Resource string

type Action string

const (
	ResArticles      Resource = "articles"
	ResNewsletters   Resource = "newsletters"
	ResSubscriptions Resource = "subscriptions"
	ResPublishers    Resource = "publishers"
	ResCategories    Resource = "categories"
	ResJournalists   Resource = "journalists"
)

const (
	ActList    Action = "list"
	ActRead    Action = "read"
	ActCreate  Action = "create"
	ActUpdate  Action = "update"
	ActDelete  Action = "delete"
	ActApprove Action = "approve"
	ActReject  Action = "reject"
	ActSubmit  Action = "submit"
	ActManage  Action = "manage"
)

// rolePolicy is the complete capability table. Anything not listed is denied.
var rolePolicy = [][]string{
	{"reader", "articles", "list"},
	{"reader", "articles", "read"},
	{"reader", "newsletters", "list"},
	{"reader", "newsletters", "read"},
	{"reader", "subscriptions", "list"},
	{"reader", "subscriptions", "read"},
	{"reader", "subscriptions", "create"},
	{"reader", "subscriptions", "delete"},
	{"reader", "publishers", "list"},
	{"reader", "categories", "list"},
	{"reader", "journalists", "list"},

	{"journalist", "articles", "list"},
	{"journalist", "articles", "read"},
	{"journalist", "articles", "create"},
	{"journalist", "articles", "update"},
	{"journalist", "articles", "delete"},
	{"journalist", "articles", "submit"},
	{"journalist", "newsletters", "list"},
	{"journalist", "newsletters", "read"},
	{"journalist", "newsletters", "create"},
	{"journalist", "newsletters", "delete"},
	{"journalist", "publishers", "list"},
	{"journalist", "categories", "list"},
	{"journalist", "journalists", "list"},

	{"editor", "articles", "list"},
	{"editor", "articles", "read"},
	{"editor", "articles", "update"},
	{"editor", "articles", "delete"},
	{"editor", "articles", "approve"},
	{"editor", "articles", "reject"},
	{"editor", "newsletters", "list"},
	{"editor", "newsletters", "read"},
	{"editor", "newsletters", "delete"},
	{"editor", "publishers", "list"},
	{"editor", "publishers", "manage"},
	{"editor", "categories", "list"},
	{"editor", "categories", "create"},
	{"editor", "journalists", "list"},
}

// Capabilities answers (role, resource, action) questions from a casbin
// enforcer loaded with rolePolicy.
type Capabilities struct {
	enforcer *casbin.Enforcer
}

func NewCapabilities() (*Capabilities, error) {
	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "r.sub == p.sub && r.obj == p.obj && r.act == p.act")

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	if _, err := e.AddPolicies(rolePolicy); err != nil {
		return nil, fmt.Errorf("capabilities: load policy: %w", err)
	}
	return &Capabilities{enforcer: e}, nil
}

// Can reports whether role may perform act on res. Unknown roles are denied.
func (c *Capabilities) Can(role models.Role, res Resource, act Action) bool {
	if !role.Valid() {
		return false
	}
	ok, err := c.enforcer.Enforce(string(role), string(res), string(act))
	return err == nil && ok
}

// Require returns a permission error unless u may perform act on res.
func (c *Capabilities) Require(u *models.User, res Resource, act Action) error {
	if u == nil || !c.Can(u.Role, res, act) {
		return permissionError("you do not have permission to %s %s", act, res)
	}
	return nil
}
