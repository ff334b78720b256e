package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	pkgjwt "doctor-duty-notifier/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	FCMScope           = "https://www.googleapis.com/auth/firebase.messaging"
	DefaultFCMEndpoint = "https://fcm.googleapis.com"
	defaultTokenURI    = "https://oauth2.googleapis.com/token"

	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// Cached tokens are refreshed this long before they expire.
	tokenExpiryLeeway = 60 * time.Second
)

// ServiceAccount is the subset of a Google service-account key file used here.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account: %w", err)
	}
	return ParseServiceAccount(raw)
}

func ParseServiceAccount(raw []byte) (*ServiceAccount, error) {
	var account ServiceAccount
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("%w: client_email and private_key are required", ErrInvalidCredentials)
	}
	if account.TokenURI == "" {
		account.TokenURI = defaultTokenURI
	}
	return &account, nil
}

type FCMConfig struct {
	ProjectID  string // overrides the service account project
	Endpoint   string
	HTTPClient *http.Client
}

// SendResult counts per-token outcomes of a fan-out.
type SendResult struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// FCMSender posts one HTTP v1 message per registration token.
// A nil *FCMSender is a disabled transport.
type FCMSender struct {
	projectID string
	endpoint  string
	client    *http.Client
	tokens    oauth2.TokenSource
	log       *logrus.Logger
}

func NewFCMSender(account *ServiceAccount, cfg FCMConfig, log *logrus.Logger) (*FCMSender, error) {
	signer, err := pkgjwt.NewAssertionSigner(pkgjwt.AssertionConfig{
		Issuer:   account.ClientEmail,
		Audience: account.TokenURI,
		Scope:    FCMScope,
		KeyID:    account.PrivateKeyID,
	}, []byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultFCMEndpoint
	}
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = account.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: project id is required", ErrInvalidCredentials)
	}

	source := &assertionTokenSource{
		signer:   signer,
		tokenURI: account.TokenURI,
		client:   client,
	}

	return &FCMSender{
		projectID: projectID,
		endpoint:  strings.TrimRight(endpoint, "/"),
		client:    client,
		tokens:    oauth2.ReuseTokenSourceWithExpiry(nil, source, tokenExpiryLeeway),
		log:       log,
	}, nil
}

func (s *FCMSender) Enabled() bool {
	return s != nil
}

// Send delivers msg to every token. Failures are counted, not returned.
func (s *FCMSender) Send(ctx context.Context, tokens []string, msg Message) SendResult {
	var result SendResult
	if !s.Enabled() {
		result.Failure = len(tokens)
		return result
	}

	token, err := s.tokens.Token()
	if err != nil {
		s.log.Warnf("Failed to obtain FCM access token: %+v", err)
		result.Failure = len(tokens)
		return result
	}

	for _, deviceToken := range tokens {
		if err := s.sendOne(ctx, token.AccessToken, deviceToken, msg); err != nil {
			s.log.Warnf("Failed to send FCM message to %s: %+v", abbreviate(deviceToken), err)
			result.Failure++
			continue
		}
		result.Success++
	}

	s.log.Infof("FCM batch sent: %d success, %d failed", result.Success, result.Failure)
	return result
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      fcmAndroid        `json:"android"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority     string                 `json:"priority"`
	Notification fcmAndroidNotification `json:"notification"`
}

type fcmAndroidNotification struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Sound string `json:"sound"`
}

func (s *FCMSender) sendOne(ctx context.Context, accessToken, deviceToken string, msg Message) error {
	payload, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        deviceToken,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Android: fcmAndroid{
			Priority:     "high",
			Notification: fcmAndroidNotification{Icon: "ic_notification", Color: "#667eea", Sound: "default"},
		},
	}})
	if err != nil {
		return err
	}

	sendURL := fmt.Sprintf("%s/v1/projects/%s/messages:send", s.endpoint, url.PathEscape(s.projectID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; UTF-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// assertionTokenSource exchanges a pkg/jwt-signed assertion for an access
// token (RFC 7523 jwt-bearer grant). It is wrapped in
// oauth2.ReuseTokenSourceWithExpiry for caching.
type assertionTokenSource struct {
	mu       sync.Mutex
	signer   *pkgjwt.AssertionSigner
	tokenURI string
	client   *http.Client
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *assertionTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	assertion, err := s.signer.Sign(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrantType},
		"assertion":  {assertion},
	}
	resp, err := s.client.PostForm(s.tokenURI, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrTokenExchange, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	if decoded.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	return &oauth2.Token{
		AccessToken: decoded.AccessToken,
		TokenType:   decoded.TokenType,
		Expiry:      now.Add(time.Duration(decoded.ExpiresIn) * time.Second),
	}, nil
}

func abbreviate(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
