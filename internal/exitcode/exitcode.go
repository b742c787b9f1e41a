package exitcode

const (
	Success         = 0
	UsageError      = 1
	MalformedInput  = 2
	MissingSheet    = 3
	MultipleInvoice = 4
	CoercionError   = 5
	WriteError      = 6
)
