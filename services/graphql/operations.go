package graphql

import (
	"context"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/activity"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/notify"
	"github.com/darasahq/darasa/core/session"
)

// Operation documents. These must stay in sync with the server schema.
const (
	loginDoc = `mutation Login($input: LoginInput!) {
  login(input: $input) {
    token
    user { id name email role { name } }
  }
}`

	registerDoc = `mutation Register($input: RegisterInput!) {
  register(input: $input) {
    token
    user { id name email role { name } }
  }
}`

	meDoc = `query Me {
  me { id name email role { name id } }
}`

	notificationsDoc = `query Notifications {
  notifications { id user { name id } message isRead createdAt metadata }
}`

	markNotificationReadDoc = `mutation MarkNotificationAsRead($id: ID, $all: Boolean) {
  markNotificationAsRead(id: $id, all: $all)
}`

	activitiesDoc = `query Activities($userId: ID, $status: String, $limit: Int) {
  activities(userId: $userId, status: $status, limit: $limit) {
    id user { id name email } type timestamp status metadata
  }
}`

	logActivityDoc = `mutation LogActivity($input: LogActivityInput!) {
  logActivity(input: $input) { id user { id name } type timestamp status metadata }
}`

	dashboardStatsDoc = `query GetDashboardStats {
  getDashboardStats {
    totalActivities completedActivities pendingActivities perType { type count }
  }
}`

	notificationSubscriptionDoc = `subscription NotificationReceived {
  notificationReceived { id user { id name } message isRead createdAt metadata }
}`

	activitySubscriptionDoc = `subscription NewActivityLogged {
  newActivityLogged { id user { id name } type timestamp status }
}`
)

type authPayload struct {
	Token string            `json:"token"`
	User  identity.Identity `json:"user"`
}

var _ session.Authenticator = (*Client)(nil)

// Authenticate runs the Login mutation. A rejection comes back as a
// ValidationError so the login form can show it inline.
func (c *Client) Authenticate(ctx context.Context, creds session.Credentials) (identity.Identity, string, error) {
	var out struct {
		Login authPayload `json:"login"`
	}
	vars := map[string]interface{}{
		"input": map[string]interface{}{"username": creds.Username, "password": creds.Password},
	}
	if err := c.Do(ctx, loginDoc, "Login", vars, &out); err != nil {
		if aErr, ok := IsAPIError(err); ok {
			return identity.Identity{}, "", core.NewValidationError(errors.New(aErr.Error()))
		}
		return identity.Identity{}, "", err
	}
	if out.Login.Token == "" {
		return identity.Identity{}, "", core.NewValidationError(errors.New("invalid credentials"))
	}
	return out.Login.User, out.Login.Token, nil
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (identity.Identity, string, error) {
	var out struct {
		Register authPayload `json:"register"`
	}
	vars := map[string]interface{}{"input": input}
	if err := c.Do(ctx, registerDoc, "Register", vars, &out); err != nil {
		return identity.Identity{}, "", err
	}
	return out.Register.User, out.Register.Token, nil
}

// Me fetches the current authenticated user.
func (c *Client) Me(ctx context.Context) (identity.Identity, error) {
	var out struct {
		Me identity.Identity `json:"me"`
	}
	err := c.Do(ctx, meDoc, "Me", nil, &out)
	return out.Me, err
}

func (c *Client) Notifications(ctx context.Context) ([]notify.Notification, error) {
	var out struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	err := c.Do(ctx, notificationsDoc, "Notifications", nil, &out)
	return out.Notifications, err
}

// MarkNotificationRead marks one notification read, or all of them when all
// is set.
func (c *Client) MarkNotificationRead(ctx context.Context, id string, all bool) (bool, error) {
	var out struct {
		Done bool `json:"markNotificationAsRead"`
	}
	vars := map[string]interface{}{"all": all}
	if id != "" {
		vars["id"] = id
	}
	err := c.Do(ctx, markNotificationReadDoc, "MarkNotificationAsRead", vars, &out)
	return out.Done, err
}

type ActivityFilter struct {
	UserID string
	Status string
	Limit  int
}

func (c *Client) Activities(ctx context.Context, filter ActivityFilter) ([]activity.Activity, error) {
	var out struct {
		Activities []activity.Activity `json:"activities"`
	}
	vars := map[string]interface{}{}
	if filter.UserID != "" {
		vars["userId"] = filter.UserID
	}
	if filter.Status != "" {
		vars["status"] = filter.Status
	}
	if filter.Limit > 0 {
		vars["limit"] = filter.Limit
	}
	err := c.Do(ctx, activitiesDoc, "Activities", vars, &out)
	return out.Activities, err
}

type LogActivityInput struct {
	Type     string                 `json:"type" validate:"required"`
	Status   string                 `json:"status"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (c *Client) LogActivity(ctx context.Context, input LogActivityInput) (activity.Activity, error) {
	var out struct {
		LogActivity activity.Activity `json:"logActivity"`
	}
	vars := map[string]interface{}{"input": input}
	err := c.Do(ctx, logActivityDoc, "LogActivity", vars, &out)
	return out.LogActivity, err
}

func (c *Client) DashboardStats(ctx context.Context) (activity.Stats, error) {
	var out struct {
		Stats activity.Stats `json:"getDashboardStats"`
	}
	err := c.Do(ctx, dashboardStatsDoc, "GetDashboardStats", nil, &out)
	return out.Stats, err
}

// SubscribeNotifications opens the NotificationReceived stream.
func (c *Client) SubscribeNotifications(ctx context.Context) (*Subscription, error) {
	return c.Subscribe(ctx, notificationSubscriptionDoc, "NotificationReceived", nil)
}

// SubscribeActivities opens the NewActivityLogged stream.
func (c *Client) SubscribeActivities(ctx context.Context) (*Subscription, error) {
	return c.Subscribe(ctx, activitySubscriptionDoc, "NewActivityLogged", nil)
}

// DecodeNotification unpacks a NotificationReceived event.
func DecodeNotification(ev Event) (notify.Notification, error) {
	var out struct {
		Notification notify.Notification `json:"notificationReceived"`
	}
	err := errors.Wrap(ev.Decode(&out), "decoding notification event")
	return out.Notification, err
}

// DecodeActivity unpacks a NewActivityLogged event.
func DecodeActivity(ev Event) (activity.Activity, error) {
	var out struct {
		Activity activity.Activity `json:"newActivityLogged"`
	}
	err := errors.Wrap(ev.Decode(&out), "decoding activity event")
	return out.Activity, err
}
