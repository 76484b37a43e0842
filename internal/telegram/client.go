package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"catalog-bot/internal/util"

	"go.uber.org/zap"
)

const apiBase = "https://api.telegram.org"

// Client is a minimal Bot API client covering the calls the bot needs:
// sending messages, reply keyboards, file resolution and long polling.
type Client struct {
	token   string
	shopURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Bot API client. shopURL is where the
// storefront web app lives; the welcome message links to it.
func NewClient(token, shopURL string) *Client {
	return &Client{
		token:   token,
		shopURL: shopURL,
		http:    &http.Client{Timeout: 40 * time.Second},
		logger:  util.GetLogger(),
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var wrapped apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !wrapped.OK {
		return fmt.Errorf("%s rejected: %s", method, wrapped.Description)
	}

	if result != nil {
		if err := json.Unmarshal(wrapped.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

type replyKeyboard struct {
	Keyboard       [][]keyButton `json:"keyboard"`
	ResizeKeyboard bool          `json:"resize_keyboard"`
}

type keyButton struct {
	Text string `json:"text"`
}

type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

// Send delivers a plain text message to one chat
func (c *Client) Send(ctx context.Context, identity int64, text string) error {
	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: identity,
		Text:   text,
	}, nil)
}

// SendMenu delivers a message with a reply keyboard attached
func (c *Client) SendMenu(ctx context.Context, identity int64, text string, rows [][]string) error {
	keyboard := make([][]keyButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]keyButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, keyButton{Text: label})
		}
		keyboard = append(keyboard, buttons)
	}

	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: identity,
		Text:   text,
		ReplyMarkup: replyKeyboard{
			Keyboard:       keyboard,
			ResizeKeyboard: true,
		},
	}, nil)
}

const btnOpenShop = "🛍️ Open shop"

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text   string      `json:"text"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

// SendShopLink delivers a message with an inline button opening the
// storefront web app. Without a configured shop URL it degrades to a
// plain message.
func (c *Client) SendShopLink(ctx context.Context, identity int64, text string) error {
	if c.shopURL == "" {
		return c.Send(ctx, identity, text)
	}

	return c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID: identity,
		Text:   text,
		ReplyMarkup: inlineKeyboard{
			InlineKeyboard: [][]inlineButton{{{
				Text:   btnOpenShop,
				WebApp: &webAppInfo{URL: c.shopURL},
			}}},
		},
	}, nil)
}

type fileInfo struct {
	FilePath string `json:"file_path"`
}

// FileLink resolves a file id to its download URL
func (c *Client) FileLink(ctx context.Context, fileID string) (string, error) {
	var info fileInfo
	err := c.call(ctx, "getFile", map[string]string{"file_id": fileID}, &info)
	if err != nil {
		return "", err
	}
	if info.FilePath == "" {
		return "", fmt.Errorf("no file path for %s", fileID)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", apiBase, c.token, info.FilePath), nil
}

// Update is one entry from getUpdates
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message carries the fields the bot reacts to
type Message struct {
	From  *User       `json:"from"`
	Chat  Chat        `json:"chat"`
	Text  string      `json:"text"`
	Photo []PhotoSize `json:"photo"`
}

type User struct {
	ID int64 `json:"id"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// PhotoSize is one rendition of an uploaded photo
type PhotoSize struct {
	FileID   string `json:"file_id"`
	FileSize int64  `json:"file_size"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset"`
	Timeout int   `json:"timeout"`
}

// GetUpdates long-polls for new updates past the given offset
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:  offset,
		Timeout: timeout,
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}
