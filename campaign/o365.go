package campaign

import (
	"bytes"
	"context"
	"encoding/json"
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
	o365TokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
	o365SendURL  = "https://graph.microsoft.com/v1.0/me/sendMail"
)

// O365Provider sends through Microsoft Graph with the campaign owner's
// delegated token.
type O365Provider struct {
	cfg      config.OAuthConfig
	tokenURL string
	sendURL  string
	client   *http.Client
}

func NewO365Provider() *O365Provider {
	return &O365Provider{
		cfg:      config.GetO365Config(),
		tokenURL: o365TokenURL,
		sendURL:  o365SendURL,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

func (p *O365Provider) Name() string { return "o365" }

func (p *O365Provider) Prepare(ctx context.Context, tx *gorm.DB, userId uuid.UUID) (*PreparedSender, error) {
	token, err := models.GetActiveO365Token(tx, userId)
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
	return &PreparedSender{AccessToken: accessToken, SenderEmail: token.MicrosoftEmail}, nil
}

// refresh rotates the token at the provider. A non-200 response
// deactivates the row; the caller treats that as "no usable token".
func (p *O365Provider) refresh(ctx context.Context, tx *gorm.DB, token *models.O365UserToken) (string, error) {
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
		config.LogError(config.GetLogger(), "o365.go", "refresh", "TokenEndpoint", token.UserId,
			utils.NewRemoteApiError(resp.StatusCode, body, "o365 token refresh"))
		err = tx.Model(&models.O365UserToken{}).Where("id = ?", token.ID).
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
	if err := tx.Model(&models.O365UserToken{}).Where("id = ?", token.ID).Updates(updates).Error; err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

// Send posts to Graph sendMail. Graph acknowledges with 202.
func (p *O365Provider) Send(ctx context.Context, sender *PreparedSender, to, subject, htmlBody string) error {
	message := map[string]any{
		"message": map[string]any{
			"subject": subject,
			"body": map[string]any{
				"contentType": "HTML",
				"content":     htmlBody,
			},
			"toRecipients": []map[string]any{
				{"emailAddress": map[string]any{"address": to}},
			},
		},
		"saveToSentItems": true,
	}
	payload, err := json.Marshal(message)
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
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return utils.NewRemoteApiError(resp.StatusCode, body, "o365 send")
	}
	return nil
}
