// Apelle - Collaborative Music Queue Service
// Copyright 2026 The Apelle Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/apelle/apelle

package peers

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// clientWrapper centralizes the get/post-with-query-params-and-typed-result
// pattern every peer client in this package needs.
type clientWrapper struct {
	name   string
	client *resty.Client
}

func newWrapper(name, baseURL string, timeout time.Duration) *clientWrapper {
	return &clientWrapper{name: name, client: newClient(baseURL, timeout)}
}

func (w *clientWrapper) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := withTrace(ctx, w.client.R()).SetQueryParams(query).SetResult(out)
	resp, err := req.Get(path)
	return asPeerError(w.name, resp, err)
}

func (w *clientWrapper) post(ctx context.Context, path string, query map[string]string, body, out any) error {
	req := withTrace(ctx, w.client.R()).SetQueryParams(query).SetBody(body).SetResult(out)
	resp, err := req.Post(path)
	return asPeerError(w.name, resp, err)
}
