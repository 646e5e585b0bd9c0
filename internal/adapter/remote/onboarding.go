package remote

import (
	"context"
	"errors"
	"net/http"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

type createdResponse struct {
	ID flexID `json:"id"`
}

type roleName struct {
	Name string `json:"name"`
}

type rolesRequest struct {
	Company string     `json:"company"`
	Name    []roleName `json:"name"`
}

type hierarchyLevel struct {
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	Quantity int     `json:"quantity"`
}

type hierarchyRequest struct {
	Company    string           `json:"company"`
	Jerarquias []hierarchyLevel `json:"jerarquias"`
}

// CreateCompany posts the company identity as a multipart form and returns
// the id assigned by the remote API.
func (c *Client) CreateCompany(ctx context.Context, actor domain.Identity, company domain.CompanyIdentity) (string, error) {
	form := (&multipartForm{}).
		field("name", company.Name).
		field("color", company.Color)
	if len(company.Logo) > 0 {
		filename := company.LogoFilename
		if filename == "" {
			filename = "logo"
		}
		form.file("file", filename, company.Logo)
	}

	r := request{method: http.MethodPost, path: "/company", form: form}

	var out createdResponse
	if err := c.do(ctx, actor, r, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &domain.TransportError{Op: r.op(), Err: errors.New("response carried no id")}
	}
	return string(out.ID), nil
}

// CreateRoles posts the role names for a company.
func (c *Client) CreateRoles(ctx context.Context, actor domain.Identity, companyID string, names []string) error {
	body := rolesRequest{Company: companyID, Name: make([]roleName, len(names))}
	for i, n := range names {
		body.Name[i] = roleName{Name: n}
	}
	return c.do(ctx, actor, request{method: http.MethodPost, path: "/role", jsonBody: body}, nil)
}

// CreateHierarchy posts the hierarchy levels, parents referenced by name.
func (c *Client) CreateHierarchy(ctx context.Context, actor domain.Identity, companyID string, levels []domain.HierarchyLevel) error {
	body := hierarchyRequest{Company: companyID, Jerarquias: make([]hierarchyLevel, len(levels))}
	for i, l := range levels {
		body.Jerarquias[i] = hierarchyLevel{Name: l.Name, Parent: l.Parent, Quantity: l.Quantity}
	}
	return c.do(ctx, actor, request{method: http.MethodPost, path: "/hierarchy", jsonBody: body}, nil)
}
