package telemetry

// Event names. Properties never carry the user identity or plan content.
const (
	EventLogin             = "session_login"
	EventLogout            = "session_logout"
	EventTaskToggled       = "task_toggled"
	EventTaskSaved         = "task_saved"
	EventEventSaved        = "event_saved"
	EventEventDeleted      = "event_deleted"
	EventReconcileAccepted = "reconcile_accepted"
	EventReconcileRejected = "reconcile_rejected"
	EventChatTurn          = "chat_turn"
	EventQuoteFetched      = "quote_fetched"
	EventCommandExecuted   = "command_executed"
)
