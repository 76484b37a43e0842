package telegram

import (
	"context"
	"strings"
	"time"

	"catalog-bot/internal/util"
	"catalog-bot/internal/wizard"

	"go.uber.org/zap"
)

// Poller drives the conversation engine from the getUpdates long poll
type Poller struct {
	client *Client
	engine *wizard.Engine
	logger *zap.Logger
}

// NewPoller creates a new update poller
func NewPoller(client *Client, engine *wizard.Engine) *Poller {
	return &Poller{
		client: client,
		engine: engine,
		logger: util.GetLogger(),
	}
}

// Run polls until the context is cancelled
func (p *Poller) Run(ctx context.Context) error {
	var offset int64

	p.logger.Info("Starting update poller")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Update poller stopping")
			return ctx.Err()
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, 30)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("Failed to fetch updates", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	identity := msg.From.ID

	var err error
	switch {
	case len(msg.Photo) > 0:
		err = p.engine.HandlePhoto(ctx, identity, largestPhoto(msg.Photo))

	case strings.HasPrefix(msg.Text, "/"):
		name := strings.TrimPrefix(msg.Text, "/")
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		err = p.engine.HandleCommand(ctx, identity, name)

	case msg.Text != "":
		if cmd, ok := wizard.CommandForButton(msg.Text); ok {
			err = p.engine.HandleCommand(ctx, identity, cmd)
		} else {
			err = p.engine.HandleText(ctx, identity, msg.Text)
		}
	}

	if err != nil {
		p.logger.Error("Failed to handle update",
			zap.Int64("identity", identity),
			zap.Error(err),
		)
	}
}

// largestPhoto picks the biggest rendition of an uploaded photo
func largestPhoto(sizes []PhotoSize) string {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.FileSize > best.FileSize {
			best = s
		}
	}
	return best.FileID
}
