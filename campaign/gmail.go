package campaign

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	gmailTokenURL = "https://oauth2.googleapis.com/token"
	gmailSendURL  = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
)

// GmailProvider sends through the Gmail API. The From header must match
// the token's google_email.
type GmailProvider struct {
	cfg      config.OAuthConfig
	tokenURL string
	sendURL  string
	client   *http.Client
}

func NewGmailProvider() *GmailProvider {
	return &GmailProvider{
		cfg:      config.GetGmailConfig(),
		tokenURL: gmailTokenURL,
		sendURL:  gmailSendURL,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

func (p *GmailProvider) Name() string { return "gmail" }

func (p *GmailProvider) Prepare(ctx context.Context, tx *gorm.DB, userId uuid.UUID) (*PreparedSender, error) {
	token, err := models.GetActiveGmailToken(tx, userId)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}

	accessToken := token.AccessToken
	if time.Now().After(token.ExpiresAt.Add(-refreshSkew)) {
		accessToken, err = p.refresh(ctx, tx, token)
		if err != nil {
			return nil, err
		}
		if accessToken == "" {
			return nil, nil
		}
	}
	return &PreparedSender{AccessToken: accessToken, SenderEmail: token.GoogleEmail}, nil
}

func (p *GmailProvider) refresh(ctx context.Context, tx *gorm.DB, token *models.GmailUserToken) (string, error) {
	form := url.Values{}
	form.Set("client_id", p.cfg.ClientId)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		config.LogError(config.GetLogger(), "gmail.go", "refresh", "TokenEndpoint", token.UserId,
			utils.NewRemoteApiError(resp.StatusCode, body, "gmail token refresh"))
		err = tx.Model(&models.GmailUserToken{}).Where("id = ?", token.ID).
			Update("is_active", false).Error
		if err != nil {
			return "", err
		}
		return "", nil
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	updates := map[string]any{
		"access_token": payload.AccessToken,
		"expires_at":   time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}
	if payload.RefreshToken != "" {
		updates["refresh_token"] = payload.RefreshToken
	}
	if err := tx.Model(&models.GmailUserToken{}).Where("id = ?", token.ID).Updates(updates).Error; err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

// Send assembles a MIME message, base64url-encodes it and posts it to the
// Gmail API. Gmail acknowledges with 200.
func (p *GmailProvider) Send(ctx context.Context, sender *PreparedSender, to, subject, htmlBody string) error {
	raw := buildMimeMessage(sender.SenderEmail, to, subject, htmlBody)
	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(raw)),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.sendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+sender.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return utils.NewRemoteApiError(resp.StatusCode, body, "gmail send")
	}
	return nil
}

func buildMimeMessage(from, to, subject, htmlBody string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return b.String()
}
