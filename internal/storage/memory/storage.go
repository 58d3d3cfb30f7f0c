package memory

// Storage bundles the in-memory repositories into the full storage
// interface for handler-level tests.
type Storage struct {
	*SessionRepository
	*FileRepository
}

func NewStorage() *Storage {
	return &Storage{
		SessionRepository: NewSessionRepository(),
		FileRepository:    NewFileRepository(),
	}
}
