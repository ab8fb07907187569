package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"menteam-auth/internal/config"
)

var ErrMissingAuthedUser = errors.New("slack: oauth response has no authed user")

// Access is the grant returned by oauth.v2.access.
type Access struct {
	AccessToken     string `json:"access_token"`
	TeamID          string `json:"team_id"`
	AuthedUserID    string `json:"authed_user_id"`
	AuthedUserToken string `json:"-"`
}

// User is the subset of the users.info payload the service relies on.
type User struct {
	ID       string  `json:"id"`
	TeamID   string  `json:"team_id"`
	Name     string  `json:"name"`
	RealName string  `json:"real_name"`
	Profile  Profile `json:"profile"`
}

type Profile struct {
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	RealName      string `json:"real_name"`
	IsCustomImage bool   `json:"is_custom_image"`
	Image24       string `json:"image_24"`
	Image32       string `json:"image_32"`
	Image48       string `json:"image_48"`
	Image72       string `json:"image_72"`
	Image192      string `json:"image_192"`
	Image512      string `json:"image_512"`
}

type AuthTestResult struct {
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type usersInfoResponse struct {
	apiResponse
	User *User `json:"user"`
}

type authTestResponse struct {
	apiResponse
	AuthTestResult
}

type Client struct {
	oauth      oauth2.Config
	cfg        config.SlackConfig
	httpClient *http.Client
}

func NewClient(cfg config.SlackConfig) *Client {
	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// AuthCodeURL builds the Slack authorize URL for the given redirect target.
func (c *Client) AuthCodeURL(redirectURI string) string {
	oauthCfg := c.oauth
	oauthCfg.RedirectURL = redirectURI

	var opts []oauth2.AuthCodeOption
	if c.cfg.Scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", c.cfg.Scope))
	}
	if c.cfg.UserScope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("user_scope", c.cfg.UserScope))
	}

	return oauthCfg.AuthCodeURL("", opts...)
}

// Exchange trades an authorization code for an access grant.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*Access, error) {
	oauthCfg := c.oauth
	oauthCfg.RedirectURL = redirectURI

	token, err := oauthCfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), code)
	if err != nil {
		return nil, fmt.Errorf("slack oauth.v2.access: %w", err)
	}

	access := &Access{AccessToken: token.AccessToken}

	if team, ok := token.Extra("team").(map[string]interface{}); ok {
		access.TeamID, _ = team["id"].(string)
	}

	authedUser, ok := token.Extra("authed_user").(map[string]interface{})
	if !ok {
		return nil, ErrMissingAuthedUser
	}
	access.AuthedUserID, _ = authedUser["id"].(string)
	access.AuthedUserToken, _ = authedUser["access_token"].(string)
	if access.AuthedUserID == "" {
		return nil, ErrMissingAuthedUser
	}

	return access, nil
}

// UserInfo fetches a workspace member with the bot token.
func (c *Client) UserInfo(ctx context.Context, slackUserID string) (*User, error) {
	var resp usersInfoResponse
	endpoint := c.cfg.APIURL + "/users.info?" + url.Values{"user": {slackUserID}}.Encode()

	if err := c.call(ctx, c.cfg.BotToken, http.MethodGet, endpoint, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack users.info: %s", resp.Error)
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, errors.New("slack users.info: response has no user")
	}

	return resp.User, nil
}

// AuthTest checks an access token against auth.test.
func (c *Client) AuthTest(ctx context.Context, accessToken string) (*AuthTestResult, error) {
	var resp authTestResponse

	if err := c.call(ctx, accessToken, http.MethodPost, c.cfg.APIURL+"/auth.test", &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack auth.test: %s", resp.Error)
	}

	return &resp.AuthTestResult, nil
}

func (c *Client) call(ctx context.Context, token, method, endpoint string, out interface{}) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = c.cfg.HTTPTimeout

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("slack request failed with status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode slack response: %w", err)
	}

	return nil
}
