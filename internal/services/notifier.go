package services

import "github.com/rs/zerolog/log"

// Notifier publishes an event after a submission has been persisted.
// *rabbitmq.Client satisfies it.
type Notifier interface {
	Notify(routingKey string, payload interface{}) error
}

// notify is best effort: the submission already succeeded, so a failed
// publish is only logged.
func notify(n Notifier, routingKey string, payload interface{}) {
	if n == nil {
		return
	}
	if err := n.Notify(routingKey, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish submission event")
	}
}
