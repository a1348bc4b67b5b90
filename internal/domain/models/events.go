package models

import "time"

// DeploymentConfirmedMessage is published to dispatch_topic when a deployment is confirmed.
type DeploymentConfirmedMessage struct {
	Deployment Deployment `json:"deployment"`
	Timestamp  time.Time  `json:"timestamp"`
}

// RedirectionStatusMessage is published to dispatch_topic when a plan status changes.
type RedirectionStatusMessage struct {
	Change    RedirectionStatusChange `json:"change"`
	Timestamp time.Time               `json:"timestamp"`
}
