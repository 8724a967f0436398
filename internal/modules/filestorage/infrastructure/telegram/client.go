package telegram

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

	"github.com/saransh1220/filelink/internal/modules/filestorage/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// errRejected marks answers where the API worked but refused this file id.
// They do not count against the circuit breaker.
var errRejected = errors.New("telegram rejected the request")

// Config holds Bot API settings.
type Config struct {
	APIBase         string
	Token           string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// Client resolves Telegram file ids into file download URLs through getFile.
type Client struct {
	cfg    Config
	http   *http.Client
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

type getFileResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Result      struct {
		FileID   string `json:"file_id"`
		FileSize int64  `json:"file_size"`
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// NewClient creates a Bot API client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.telegram.org"
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	st := gobreaker.Settings{
		Name:        "telegram-getfile",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}, nil
}

func (c *Client) Name() string {
	return "telegram"
}

// DirectURL calls getFile and builds the file download URL. The URL embeds
// the bot token and is valid for at least an hour.
func (c *Client) DirectURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := c.cb.Execute(func() (interface{}, error) {
		path, err := c.getFilePath(ctx, fileID)
		// A caller that went away says nothing about Telegram's health.
		if err != nil && errors.Is(ctx.Err(), context.Canceled) && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", context.Canceled, err)
		}
		return path, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		return "", err
	}
	filePath := res.(string)
	return fmt.Sprintf("%s/file/bot%s/%s", c.cfg.APIBase, c.cfg.Token, strings.TrimLeft(filePath, "/")), nil
}

// State reports the breaker state, for health output.
func (c *Client) State() string {
	return c.cb.State().String()
}

func (c *Client) getFilePath(ctx context.Context, fileID string) (string, error) {
	body, err := json.Marshal(map[string]string{"file_id": fileID})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/getFile", c.cfg.APIBase, c.cfg.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstream, redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: getFile: %w", domain.ErrUpstream, redact(err))
	}
	defer resp.Body.Close()

	var out getFileResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: getFile status %d: undecodable body: %w", domain.ErrUpstream, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !out.OK {
		err := fmt.Errorf("%w: getFile status %d: %s", domain.ErrUpstream, resp.StatusCode, out.Description)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %w", errRejected, err)
		}
		return "", err
	}
	if out.Result.FilePath == "" {
		return "", fmt.Errorf("%w: %w: getFile returned no file_path", errRejected, domain.ErrUpstream)
	}
	return out.Result.FilePath, nil
}

// redact drops the request URL, which carries the bot token.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
