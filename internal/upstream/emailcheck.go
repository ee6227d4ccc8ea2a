// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package upstream

import (
	"context"
	"net/url"

	"github.com/tomtom215/cinematographus/internal/models"
)

// EmailCheck is the client for the email verification provider, consulted
// during registration to reject malformed or undeliverable addresses.
type EmailCheck struct {
	*baseClient
}

// NewEmailCheck builds an EmailCheck client from opts.
func NewEmailCheck(opts Options) *EmailCheck {
	return &EmailCheck{baseClient: newBaseClient(opts)}
}

type emailCheckResponse struct {
	Email          string `json:"email"`
	Deliverability string `json:"deliverability"`
	IsValidFormat  struct {
		Text string `json:"text"`
	} `json:"is_valid_format"`
}

// Verify returns the provider's verdict on an address.
func (c *EmailCheck) Verify(ctx context.Context, email string) (*models.EmailCheck, error) {
	params := url.Values{}
	params.Set("api_key", c.opts.APIKey)
	params.Set("email", email)

	var resp emailCheckResponse
	if err := c.getJSON(ctx, "/", params, &resp); err != nil {
		return nil, err
	}
	return &models.EmailCheck{
		Email:          resp.Email,
		Deliverability: resp.Deliverability,
		IsValidFormat:  resp.IsValidFormat.Text == "TRUE",
	}, nil
}
