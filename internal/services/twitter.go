// X (Twitter) API v2 [Notifier] implementation
//
// Posts are best effort: callers log failures and move on, so a broken or
// rate limited account never blocks a trade.
package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/stockmind/internal/shared"
)

const (
	defaultTwitterBaseURL string = "https://api.twitter.com"

	// maxPostLength is the platform character limit.
	maxPostLength int = 280

	// linkLength is how many characters the platform counts for any URL
	// after shortening, regardless of its real length.
	linkLength int = 23
)

// TwitterCredentials holds the OAuth 1.0a user-context credentials: the app's
// consumer key pair plus the account's access token pair.
type TwitterCredentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

func (c TwitterCredentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// TwitterService implements [Notifier] against the X API v2.
type TwitterService struct {
	baseURL      string
	enabled      bool
	dashboardURL string
	httpClient   *http.Client
}

// NewTwitterService creates a new X notifier. Requests are signed with OAuth
// 1.0a user context (HMAC-SHA1), the only scheme the v2 tweet endpoint accepts
// for user-issued access tokens. When dashboardURL is set it is appended to
// every post. A disabled or credential-less notifier is still usable; Post
// reports [shared.ErrNotifierDisabled].
func NewTwitterService(enabled bool, creds TwitterCredentials, dashboardURL string) *TwitterService {
	service := &TwitterService{
		baseURL:      defaultTwitterBaseURL,
		enabled:      enabled && creds.complete(),
		dashboardURL: dashboardURL,
		httpClient:   http.DefaultClient,
	}

	if service.enabled {
		service.httpClient = &http.Client{
			Transport: &oauthTransport{signer: newOAuthSigner(creds)},
		}
	}

	return service
}

// Name returns the platform name.
func (t *TwitterService) Name() string {
	return "X"
}

// Enabled reports whether the notifier is configured and active.
func (t *TwitterService) Enabled() bool {
	return t.enabled
}

// Post publishes a message with the dashboard link appended, truncating the
// message so the whole post fits the platform limit.
func (t *TwitterService) Post(ctx context.Context, text string) error {
	if !t.enabled {
		return shared.ErrNotifierDisabled
	}

	budget := maxPostLength
	if t.dashboardURL != "" {
		budget -= linkLength + 2
	}
	text = Truncate(text, budget)
	if t.dashboardURL != "" {
		text += "\n\n" + t.dashboardURL
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: %s (status %d)", shared.ErrAPIRequest, errResp.Detail, resp.StatusCode)
		}
		return fmt.Errorf("%w: x api returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// oauthTransport signs every outgoing request with an OAuth 1.0a
// Authorization header before handing it to the underlying transport.
type oauthTransport struct {
	signer *oauthSigner
	base   http.RoundTripper
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	signed := req.Clone(req.Context())
	signed.Header.Set("Authorization", t.signer.authorization(req.Method, req.URL))
	return base.RoundTrip(signed)
}

// oauthSigner builds OAuth 1.0a HMAC-SHA1 Authorization headers per RFC 5849.
// The nonce and clock are injectable so signatures are reproducible in tests.
type oauthSigner struct {
	creds TwitterCredentials
	nonce func() string
	now   func() time.Time
}

func newOAuthSigner(creds TwitterCredentials) *oauthSigner {
	return &oauthSigner{creds: creds, nonce: shared.GenerateID, now: time.Now}
}

// authorization returns the header value for one request. The signature base
// string covers the oauth protocol parameters and any query parameters; a JSON
// request body is not form-encoded and so does not participate.
func (s *oauthSigner) authorization(method string, u *url.URL) string {
	oauth := map[string]string{
		"oauth_consumer_key":     s.creds.APIKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	params := make(map[string]string, len(oauth))
	for key, value := range oauth {
		params[key] = value
	}
	for key, values := range u.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, percentEncode(key)+"="+percentEncode(params[key]))
	}

	baseURI := u.Scheme + "://" + u.Host + u.Path
	base := strings.ToUpper(method) + "&" + percentEncode(baseURI) + "&" + percentEncode(strings.Join(pairs, "&"))

	mac := hmac.New(sha1.New, []byte(percentEncode(s.creds.APISecret)+"&"+percentEncode(s.creds.AccessTokenSecret)))
	mac.Write([]byte(base))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	names := make([]string, 0, len(oauth))
	for name := range oauth {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		fields = append(fields, fmt.Sprintf("%s=%q", percentEncode(name), percentEncode(oauth[name])))
	}

	return "OAuth " + strings.Join(fields, ", ")
}

// percentEncode applies the RFC 3986 encoding OAuth requires: everything but
// unreserved characters becomes %XX with uppercase hex.
func percentEncode(value string) string {
	var b strings.Builder
	for _, c := range []byte(value) {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			b.WriteByte(c)
		default:
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}

// TradeMessage formats a buy or sell announcement, fitting as much of the
// reasoning as the character limit allows.
func TradeMessage(action, symbol string, shares, price, total, pnl float64, hasPnL bool, reasoning string) string {
	var msg string
	if action == "buy" {
		msg = fmt.Sprintf("StockMind bought %g shares of $%s at $%.2f for $%.2f", shares, symbol, price, total)
	} else {
		pnlStr := ""
		if hasPnL {
			sign := ""
			if pnl >= 0 {
				sign = "+"
			}
			pnlStr = fmt.Sprintf(" | P&L: %s$%.2f", sign, pnl)
		}
		msg = fmt.Sprintf("StockMind sold %g shares of $%s at $%.2f%s", shares, symbol, price, pnlStr)
	}

	if reasoning != "" {
		// " -- " separator plus the shortened link and its newlines
		available := maxPostLength - len(msg) - 4 - (linkLength + 2)
		if available > 10 {
			msg += " -- " + Truncate(reasoning, available)
		}
	}

	return msg
}

// ResearchMessage formats an analysis announcement.
func ResearchMessage(symbol, analysis string) string {
	prefix := fmt.Sprintf("StockMind analyzed $%s: ", symbol)
	available := maxPostLength - len(prefix) - (linkLength + 2)

	clean := strings.Join(strings.Fields(analysis), " ")
	return prefix + Truncate(clean, available)
}

// Truncate shortens text to at most max characters, trimming on an ellipsis.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return strings.TrimRight(string(runes[:max-3]), " ") + "..."
}
