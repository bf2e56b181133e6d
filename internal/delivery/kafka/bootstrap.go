package kafka

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/azizikri/yeoubi-storefront/internal/config"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

func EnsureTopics(ctx context.Context, client *kgo.Client, cfg *config.Config) error {
	adm := kadm.NewClient(client)

	topics := make([]string, 0, len(Topics)*2)
	for _, topic := range Topics {
		topics = append(topics, topic, topic+TopicDLQSuffix)
	}

	partitions := cfg.TopicPartitions()
	replicationFactor := cfg.ReplicationFactor()
	minISR := cfg.KafkaMinISR
	configs := map[string]*string{"min.insync.replicas": &minISR}

	for _, topic := range topics {
		p := partitions
		if strings.HasSuffix(topic, TopicDLQSuffix) {
			p = 1
		}

		resp, err := adm.CreateTopics(ctx, int32(p), replicationFactor, configs, topic)
		if err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic, err)
		}
		for _, detail := range resp {
			if detail.Err != nil && !strings.Contains(detail.Err.Error(), "already exists") {
				return fmt.Errorf("failed to create topic %s: %w", detail.Topic, detail.Err)
			}
		}
	}

	log.Println("All topics ensured")
	return nil
}
