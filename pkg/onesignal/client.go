// Package onesignal schedules deferred push notifications through the
// OneSignal REST API.
package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/tasknotify/pkg/auth"
	"github.com/harrisonrobin/tasknotify/pkg/clock"
	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

const DefaultBaseURL = "https://api.onesignal.com"

type Config struct {
	AppID   string
	APIKey  string
	BaseURL string
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// Client implements engine.Scheduler.
type Client struct {
	appID       string
	baseURL     string
	http        *http.Client
	subscribers engine.SubscriberSource
}

var _ engine.Scheduler = (*Client)(nil)

func NewClient(cfg Config, subscribers engine.SubscriberSource) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		appID:       cfg.AppID,
		baseURL:     base,
		http:        auth.NewBasicClient(cfg.APIKey, cfg.Timeout),
		subscribers: subscribers,
	}
}

type localized struct {
	En string `json:"en"`
}

type aliases struct {
	ExternalID []string `json:"external_id"`
}

type createRequest struct {
	AppID          string    `json:"app_id"`
	TargetChannel  string    `json:"target_channel"`
	IncludeAliases aliases   `json:"include_aliases"`
	Headings       localized `json:"headings"`
	Contents       localized `json:"contents"`
	SendAfter      string    `json:"send_after"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// response covers both endpoints. Errors is kept raw because the API returns
// it as a list of strings or as an object depending on the failure.
type response struct {
	ID     string          `json:"id"`
	Errors json.RawMessage `json:"errors"`
}

func (r response) failed() bool {
	return len(r.Errors) > 0 && string(r.Errors) != "null"
}

// Create schedules n for the current subscriber and returns the notification id.
func (c *Client) Create(ctx context.Context, n engine.Notification) (string, error) {
	subscriber, err := c.subscribers.SubscriberID(ctx)
	if err != nil {
		return "", model.Fail(model.KindStore, "create", fmt.Errorf("read subscriber id: %w", err))
	}
	if subscriber == "" {
		return "", model.Fail(model.KindValidation, "create", model.ErrNoSubscriber)
	}

	body, err := json.Marshal(createRequest{
		AppID:          c.appID,
		TargetChannel:  "push",
		IncludeAliases: aliases{ExternalID: []string{subscriber}},
		Headings:       localized{En: n.Title},
		Contents:       localized{En: n.Body},
		SendAfter:      clock.FormatISO(n.SendAfter),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return "", model.Fail(model.KindValidation, "create", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return "", model.Fail(model.KindTransport, "create", err)
	}

	res, err := c.do(req)
	if err != nil {
		return "", model.Fail(model.KindTransport, "create", err)
	}
	if res.failed() {
		return "", model.Fail(model.KindProvider, "create", providerError(res.Errors))
	}
	if res.ID == "" {
		return "", model.Fail(model.KindProvider, "create", errors.New("response carries no notification id"))
	}
	return res.ID, nil
}

// Cancel deletes a scheduled notification. Not-found is reported like any other provider error.
func (c *Client) Cancel(ctx context.Context, id string) error {
	u := fmt.Sprintf("%s/notifications/%s?%s", c.baseURL, url.PathEscape(id), url.Values{"app_id": {c.appID}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return model.Fail(model.KindTransport, "cancel", err)
	}

	res, err := c.do(req)
	if err != nil {
		return model.Fail(model.KindTransport, "cancel", err)
	}
	if res.failed() {
		return model.Fail(model.KindProvider, "cancel", providerError(res.Errors))
	}
	return nil
}

// do sends req and decodes the JSON body regardless of status; the body
// decides success, as the provider reports rejections in an "errors" field.
func (c *Client) do(req *http.Request) (response, error) {
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, err
	}
	var res response
	if err := json.Unmarshal(raw, &res); err != nil {
		return response{}, fmt.Errorf("onesignal http status %s: unreadable body: %w", resp.Status, err)
	}
	if resp.StatusCode >= http.StatusBadRequest && !res.failed() {
		res.Errors = json.RawMessage(fmt.Sprintf("%q", resp.Status))
	}
	return res, nil
}

func providerError(raw json.RawMessage) error {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return errors.New(strings.Join(list, "; "))
	}
	return errors.New(string(raw))
}
