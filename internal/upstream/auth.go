package upstream

import (
	"context"
	"net/http"

	"dormgate/internal/models"
)

type LoginResult struct {
	Token  string
	Tenant models.Tenant
}

// Login exchanges tenant credentials for a backend bearer token. A 401 here is
// a plain credential failure, not a session revocation.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp struct {
		Token    string     `json:"token"`
		TokenAlt string     `json:"access_token"`
		Tenant   tenantWire `json:"tenant"`
		User     tenantWire `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/auth/login", "", body, &resp, callOpts{
		resource:   "auth",
		authExempt: true,
	})
	if err != nil {
		return nil, err
	}

	tenant := resp.Tenant
	if tenant.ID == 0 {
		tenant = resp.User
	}
	return &LoginResult{
		Token:  pickStr(resp.Token, resp.TokenAlt),
		Tenant: tenant.toModel(),
	}, nil
}

// VerifyToken checks that a stored token is still accepted by the backend and
// returns the tenant profile bound to it.
func (c *Client) VerifyToken(ctx context.Context, token string) (*models.Tenant, error) {
	var resp struct {
		Tenant tenantWire `json:"tenant"`
		User   tenantWire `json:"user"`
	}
	err := c.call(ctx, http.MethodGet, "/auth/verify", token, nil, &resp, callOpts{
		resource:   "auth",
		authExempt: true,
	})
	if err != nil {
		return nil, err
	}

	wire := resp.Tenant
	if wire.ID == 0 {
		wire = resp.User
	}
	tenant := wire.toModel()
	return &tenant, nil
}
