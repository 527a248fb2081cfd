package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lendsqr-admin/internal/config"
	"lendsqr-admin/internal/core/domain"

	"github.com/go-resty/resty/v2"
)

// UserSource fetches the full user dataset from the upstream mock API.
// The endpoint has no paging; every call downloads everything.
type UserSource struct {
	httpClient *resty.Client
	url        string
	apiKey     string
}

// NewUserSource creates the remote user feed client
func NewUserSource(cfg config.RemoteConfig) *UserSource {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &UserSource{
		httpClient: client,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
	}
}

// remoteUser is the wire shape. Some feeds put username, email and phone
// at the top level and send numeric ids.
type remoteUser struct {
	domain.UserRecord
	ID          domain.FlexString `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber"`
}

// FetchAll downloads every user record
func (s *UserSource) FetchAll(ctx context.Context) ([]domain.UserRecord, error) {
	req := s.httpClient.R().SetContext(ctx)
	if s.apiKey != "" {
		req.SetQueryParam("key", s.apiKey)
	}

	resp, err := req.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}

	if resp.StatusCode() != http.StatusOK {
		message := strings.TrimSpace(resp.Status())
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, &domain.HTTPError{StatusCode: resp.StatusCode(), Message: message}
	}

	return decodeUsers(resp.Body())
}

func decodeUsers(body []byte) ([]domain.UserRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array of users", domain.ErrParse)
	}

	var raw []remoteUser
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}

	users := make([]domain.UserRecord, 0, len(raw))
	for i := range raw {
		user, err := raw[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", domain.ErrParse, i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *remoteUser) toDomain() (domain.UserRecord, error) {
	user := r.UserRecord
	user.ID = strings.TrimSpace(string(r.ID))
	if user.ID == "" {
		return domain.UserRecord{}, fmt.Errorf("missing id")
	}
	if !user.Status.Valid() {
		return domain.UserRecord{}, fmt.Errorf("user %s: invalid status %q", user.ID, user.Status)
	}

	if user.Profile.Username == "" {
		user.Profile.Username = r.Username
	}
	if user.Profile.Email == "" {
		user.Profile.Email = r.Email
	}
	if user.Profile.PhoneNumber == "" {
		user.Profile.PhoneNumber = r.PhoneNumber
	}
	if user.Guarantors == nil {
		user.Guarantors = domain.Guarantors{}
	}
	return user, nil
}
