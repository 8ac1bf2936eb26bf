package rabbitmq_client

import (
	"fmt"
	"os"
	"scorecardbackend/types"

	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var (
	Connection *amqp.Connection
	Channel    *amqp.Channel
	Queue      amqp.Queue
)

// GetEnv retrieves the environment variable with a default value if not set.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func Close() {
	Channel.Close()
	Connection.Close()
}

// SendScorecardEvent publishes a scoring event on the scorecard queue.
func SendScorecardEvent(event types.ScorecardEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	zap.L().Sugar().Infof("Sending message to rabbitmq: %s", message)

	return Channel.Publish(
		"",         // Exchange (empty means default)
		Queue.Name, // Routing key (queue name in this case)
		false,      // Mandatory
		false,      // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
		})
}

func init() {
	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		panic("oh noes!")
	}

	zap.ReplaceGlobals(logger)

	rabbitServer := GetEnv("RABBITMQ_SERVER", "localhost")
	rabbitPort := GetEnv("RABBITMQ_PORT", "5672")
	rabbitUser := GetEnv("RABBITMQ_USER", "guest")
	rabbitPass := GetEnv("RABBITMQ_PASS", "guest")

	zap.L().Sugar().Infof("RabbitMQ Server: %s", rabbitServer)
	zap.L().Sugar().Infof("RabbitMQ Port: %s", rabbitPort)
	zap.L().Sugar().Infof("RabbitMQ User: %s", rabbitUser)

	newConn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/", rabbitUser, rabbitPass, rabbitServer, rabbitPort))
	if err != nil {
		zap.L().Error("RabbitMQ initialization failed: ", zap.Any("error", err.Error()))
	}
	Connection = newConn

	ch, err := Connection.Channel()
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to open a channel: ", zap.Any("error", err.Error()))
	}

	Channel = ch

	// Declare the queue so it exists before the first publish.
	queueName := "scorecardbackend"
	q, err := ch.QueueDeclare(
		queueName, // Name of the queue
		true,      // Durable
		false,     // Delete when unused
		false,     // Exclusive
		false,     // No-wait
		nil,       // Arguments
	)
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to declare a queue: ", zap.Any("error", err.Error()))
	}

	Queue = q

	zap.L().Info("Connected to RabbitMQ.")
}
