package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/abhayporwals/taskyn/internal/platform/ctxutil"
	"github.com/abhayporwals/taskyn/internal/platform/envutil"
	"github.com/abhayporwals/taskyn/internal/platform/httpx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

const sendEndpoint = "/v3/mail/send"

type Client interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	MaxRetries int
	Backoff    time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     strings.TrimSpace(envutil.String("SENDGRID_API_KEY", "")),
		BaseURL:    strings.TrimSpace(envutil.String("SENDGRID_BASE_URL", "https://api.sendgrid.com")),
		FromEmail:  strings.TrimSpace(envutil.String("SENDGRID_FROM_EMAIL", "no-reply@taskyn.app")),
		FromName:   strings.TrimSpace(envutil.String("SENDGRID_FROM_NAME", "Taskyn")),
		MaxRetries: envutil.Int("SENDGRID_MAX_RETRIES", 3),
	}
}

type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// New returns a SendGrid client, or a logging client when no API key is set.
func New(log *logger.Logger, cfg Config) Client {
	log = log.With("client", "SendGridClient")
	if cfg.APIKey == "" {
		log.Warn("SENDGRID_API_KEY not set; emails will be logged, not sent")
		return &logClient{log: log}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &client{
		log:  log,
		cfg:  cfg,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

type client struct {
	log  *logger.Logger
	cfg  Config
	from *sgmail.Email
}

func (c *client) prepare(msg Message) (*sgmail.SGMailV3, error) {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return nil, fmt.Errorf("sendgrid: recipient required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return nil, fmt.Errorf("sendgrid: subject required")
	}
	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return nil, fmt.Errorf("sendgrid: text or html content required")
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	if t := strings.TrimSpace(msg.Text); t != "" {
		m.AddContent(sgmail.NewContent("text/plain", t))
	}
	if h := strings.TrimSpace(msg.HTML); h != "" {
		m.AddContent(sgmail.NewContent("text/html", h))
	}
	return m, nil
}

func (c *client) Send(ctx context.Context, msg Message) error {
	m, err := c.prepare(msg)
	if err != nil {
		return err
	}
	body := sgmail.GetRequestBody(m)
	ctx = ctxutil.Default(ctx)
	backoff := c.cfg.Backoff

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.sendOnce(ctx, body)
		if err == nil {
			return nil
		}
		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return err
		}
		sleepFor := httpx.JitterSleep(backoff)
		c.log.Warn("Sendgrid request retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
	return errors.New("unreachable retry loop")
}

func (c *client) sendOnce(ctx context.Context, body []byte) error {
	req := sg.GetRequest(c.cfg.APIKey, sendEndpoint, strings.TrimRight(c.cfg.BaseURL, "/"))
	req.Method = http.MethodPost
	req.Body = body

	res, err := sg.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newHTTPError(res.StatusCode, res.Body)
	}
	return nil
}

type errorItem struct {
	Message string `json:"message"`
	Field   any    `json:"field,omitempty"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []errorItem
}

func newHTTPError(status int, body string) *HTTPError {
	he := &HTTPError{StatusCode: status, Body: body}
	var er struct {
		Errors []errorItem `json:"errors"`
	}
	if json.Unmarshal([]byte(body), &er) == nil {
		he.Errors = er.Errors
	}
	return he
}

func (e *HTTPError) Error() string {
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type logClient struct {
	log *logger.Logger
}

func (c *logClient) Send(_ context.Context, msg Message) error {
	c.log.Info("Email not sent (no API key)", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}
