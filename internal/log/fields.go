package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldMonth       = "month"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldType        = "type"
	FieldTxID        = "transaction_id"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
	FieldSheetName   = "sheet_name"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentService = "service"
)
