package events

// Topic constants for domain events emitted by the till.
const (
	TopicInvoiceCreated   = "invoice.created"
	TopicInvoiceCompleted = "invoice.completed"
)
