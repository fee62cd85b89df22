package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDuration   = "duration_ms"
	FieldPath       = "path"
	FieldRecordID   = "record_id"
	FieldRecordType = "record_type"
	FieldAmount     = "amount"
	FieldDate       = "date"
	FieldCategoryID = "category_id"
	FieldAccountID  = "account_id"
	FieldBudgetID   = "budget_id"
	FieldPeriod     = "period"
	FieldAction     = "action"
	FieldCount      = "count"
	FieldSheetRow   = "sheet_row"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStorage = "storage"
	ComponentRecord  = "record"
	ComponentBudget  = "budget"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpMigrate  = "migrate"
	OpBackup   = "backup"
	OpRestore  = "restore"
	OpPublish  = "publish"
	OpSync     = "sync"
	OpImport   = "import"
	OpExport   = "export"
	OpCheck    = "check"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds record-related fields
func (f LogFields) WithRecord(id, recordType string, amount float64, date string) LogFields {
	f[FieldRecordID] = id
	f[FieldRecordType] = recordType
	f[FieldAmount] = amount
	f[FieldDate] = date
	return f
}

// WithAccount adds the account id when the record has one
func (f LogFields) WithAccount(accountID *string) LogFields {
	if accountID != nil && *accountID != "" {
		f[FieldAccountID] = *accountID
	}
	return f
}

// With adds an arbitrary field
func (f LogFields) With(key string, value any) LogFields {
	f[key] = value
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
