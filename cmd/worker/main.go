package main

import (
	"encoding/json"

	"presalecontrol/internal/events"
	"presalecontrol/pkg/config"

	logrus "github.com/sirupsen/logrus"
)

// The worker drains the settlement events queue and writes structured audit
// logs. Downstream consumers (notifications, analytics) hang off the same
// queue in production.
func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	msgConsumer, err := config.NewConsumer(config.SettlementEventsQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Settlement events worker started, waiting for messages...")

	err = msgConsumer.Consume(func(msg []byte) error {
		var event events.SettlementEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			// 格式错误的消息重投也无法恢复，直接丢弃
			logrus.Errorf("Failed to unmarshal event, dropping: %v", err)
			return nil
		}

		logrus.WithFields(logrus.Fields{
			"type":         event.Type,
			"presale_id":   event.PresaleID,
			"mint":         event.Mint,
			"user":         event.User,
			"amount":       event.Amount,
			"tokens":       event.Tokens,
			"total_raised": event.TotalRaised,
			"timestamp":    event.Timestamp,
		}).Info("settlement event")

		return nil
	})
	if err != nil {
		logrus.Fatal("Consumer stopped: ", err)
	}
}
