package usecase

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// Códigos usados pelo Orchestrator. SNAPSHOT_READ e nada mais é fatal
// para o pass; o resto vira contagem no summary.
const (
	CodeSnapshotRead     = "SNAPSHOT_READ"
	CodeDispatchFailed   = "DISPATCH_FAILED"
	CodePersistAfterSend = "PERSIST_AFTER_SEND"
	CodeLeadNotFound     = "LEAD_NOT_FOUND"
)
