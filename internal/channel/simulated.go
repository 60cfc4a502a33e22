package channel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatedChannel stands in for Telegram when credentials are absent. It
// always reports success with a synthetic message id and never touches the
// network, so the lifecycle can be exercised without external dependencies.
type SimulatedChannel struct {
	logger *zap.Logger
}

func NewSimulatedChannel(logger *zap.Logger) *SimulatedChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedChannel{logger: logger}
}

func (c *SimulatedChannel) Name() string { return "simulated" }

func (c *SimulatedChannel) Deliver(_ context.Context, content string) (*Result, error) {
	messageID := fmt.Sprintf("simulated-%s", uuid.NewString())

	c.logger.Info("simulated delivery",
		zap.String("messageId", messageID),
		zap.Int("contentLength", len(content)),
	)

	return &Result{
		MessageID: messageID,
		Content:   content,
	}, nil
}
