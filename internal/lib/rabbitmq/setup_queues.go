package rabbitmq

// QueueConfig binds one queue to a routing key on the notifications exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Routing keys used by the scheduler and the API.
const (
	RoutingKeyTrialExpiring = "trial.expiring"
	RoutingKeyPremiumLapsed = "premium.lapsed"
	RoutingKeyPasswordReset = "password.reset"
)

// GetNotificationQueues returns the queues the notification sender consumes.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.trial", RoutingKey: RoutingKeyTrialExpiring},
		{QueueName: "notification.lapsed", RoutingKey: RoutingKeyPremiumLapsed},
		{QueueName: "notification.reset", RoutingKey: RoutingKeyPasswordReset},
	}
}
