package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"basegraph.app/bugrelay/internal/crisp"
	"basegraph.app/bugrelay/internal/mapper"
	"basegraph.app/bugrelay/internal/model"
)

// ConversationSource is the subset of the Crisp client the fetcher needs.
type ConversationSource interface {
	GetMessages(ctx context.Context, websiteID, sessionID string) ([]crisp.ConversationMessage, error)
	GetMeta(ctx context.Context, websiteID, sessionID string) (*crisp.ConversationMeta, error)
}

type ConversationFetcher interface {
	Fetch(ctx context.Context, websiteID, sessionID string) (*model.Conversation, error)
}

type conversationFetcher struct {
	source ConversationSource
	mapper *mapper.CrispMapper
	logger *slog.Logger
}

func NewConversationFetcher(source ConversationSource, logger *slog.Logger) ConversationFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &conversationFetcher{
		source: source,
		mapper: mapper.NewCrispMapper(),
		logger: logger,
	}
}

// Fetch loads messages and metadata concurrently. Messages are required;
// a metadata failure is logged and yields empty metadata.
func (f *conversationFetcher) Fetch(ctx context.Context, websiteID, sessionID string) (*model.Conversation, error) {
	var (
		messages []crisp.ConversationMessage
		meta     *crisp.ConversationMeta
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		messages, err = f.source.GetMessages(gctx, websiteID, sessionID)
		if err != nil {
			return wrapKind(ErrUpstreamFetch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		meta, err = f.source.GetMeta(gctx, websiteID, sessionID)
		if err != nil {
			f.logger.WarnContext(ctx, "conversation meta unavailable, continuing without it",
				"error", err)
			meta = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.Conversation{
		Messages: f.mapper.MapMessages(messages),
		Meta:     f.mapper.MapMeta(meta),
	}, nil
}
