package notify

import (
	"log"

	"github.com/example/afparfum/internal/config"
)

// FromConfig builds the fan-out configured by cfg. With Kafka enabled,
// customer email is left to the notifier consuming the topic. The returned
// func releases producer resources.
func FromConfig(cfg *config.Config, metrics *Metrics) (*Multi, func()) {
	sinks := NewMulti(metrics)
	closeFn := func() {}

	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChat != "" {
		sinks.Add("telegram", NewTelegram(cfg.TelegramBotToken, cfg.TelegramAdminChat))
	}
	switch {
	case cfg.KafkaEnabled():
		producer := NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks.Add("kafka", producer)
		closeFn = func() {
			if err := producer.Close(); err != nil {
				log.Printf("[Kafka] close producer: %v", err)
			}
		}
	case cfg.EmailEnabled():
		sinks.Add("email", NewEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom))
	}

	return sinks, closeFn
}
