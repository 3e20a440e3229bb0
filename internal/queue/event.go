// Package queue defines the activity events exchanged over RabbitMQ and the
// consumer that records them.
package queue

import "time"

// ActivityQueue is the durable queue activity events are published to.
const ActivityQueue = "review.activity"

// Activity kinds.
const (
	KindUserRegistered = "user.registered"
	KindUserRenamed    = "user.renamed"
	KindUserDeleted    = "user.deleted"
	KindReviewCreated  = "review.created"
	KindReviewDeleted  = "review.deleted"
)

// ActivityEvent describes one completed write.  Fields that do not apply to
// a kind are left empty.
type ActivityEvent struct {
	Kind        string    `json:"kind"`
	Username    string    `json:"username"`
	UserID      string    `json:"user_id,omitempty"`
	NewUsername string    `json:"new_username,omitempty"`
	ReviewID    string    `json:"review_id,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
