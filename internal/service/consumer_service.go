package service

import (
	"context"
	"encoding/json"
	"time"

	"ops-assistant-be/internal/dto"
	"ops-assistant-be/internal/pkg/logger"
	"ops-assistant-be/pkg/events"
	pktNats "ops-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService bridges the in-process ingestion topic onto the NATS bus
// so external collaborators can follow ingestion progress without coupling
// to this service.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		eventPublisher: eventPublisher,
		logger:         sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishDocumentIngestedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal ingestion message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads would retry forever otherwise
		return
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_INGESTED",
			Data: map[string]interface{}{
				"doc_id":      payload.DocId.String(),
				"filename":    payload.Filename,
				"chunk_count": payload.ChunkCount,
				"replaced":    payload.Replaced,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("consumer", "failed to forward event to NATS", map[string]interface{}{
				"doc_id": payload.DocId.String(),
				"error":  err.Error(),
			})
		}
	}

	msg.Ack()
}
