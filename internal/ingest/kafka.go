package ingest

import (
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/usageworks/accounting/internal/config"
	"go.uber.org/zap"
)

func NewSubscriber(cfg config.Config, log *zap.Logger) (message.Subscriber, error) {
	return kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:       cfg.KafkaBrokers,
			ConsumerGroup: cfg.KafkaConsumerGroup,
			Unmarshaler:   kafka.DefaultMarshaler{},
		},
		newWatermillLogger(log.Named("ingest.kafka")),
	)
}
