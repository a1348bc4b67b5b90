package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionDashboardRefresh  = "dashboard_refresh"
	ActionUpstreamFallback  = "upstream_fallback"
	ActionConfirmDeployment = "confirm_deployment"
	ActionRedirectionUpdate = "update_redirection_status"
	ActionLiveHotspotsPoll  = "live_hotspots_poll"
	ActionSimulationStep    = "simulation_step"
	ActionFrameConsumed     = "simulation_frame_consumed"
)
