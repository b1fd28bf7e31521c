package honeybadger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Deploy describes a finished deployment.
type Deploy struct {
	Environment string
	Revision    string
	Username    string // optional
	Repository  string // optional
}

// NotifyDeploy registers a deployment with Honeybadger.
func (c *Client) NotifyDeploy(ctx context.Context, apiKey string, d Deploy) error {
	form := url.Values{}
	form.Set("api_key", apiKey)
	form.Set("deploy[environment]", d.Environment)
	form.Set("deploy[revision]", d.Revision)
	if d.Username != "" {
		form.Set("deploy[local_username]", d.Username)
	}
	if d.Repository != "" {
		form.Set("deploy[repository]", d.Repository)
	}

	endpoint := c.BaseURL + deploysPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.WithFields(log.Fields{
		"environment": d.Environment,
		"revision":    d.Revision,
	}).Debug("registering deployment")

	return c.do(req)
}
