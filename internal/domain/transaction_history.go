package domain

import "time"

// TransactionHistory is an immutable audit entry for one lifecycle change.
type TransactionHistory struct {
	ID            string
	TransactionID string
	ActorID       *string
	Operation     TransactionOperation
	OldStatus     *TransactionStatus
	NewStatus     TransactionStatus
	Note          *string
	CreatedAt     time.Time
}

// OperationCreate marks the history entry written when a transaction is opened.
const OperationCreate TransactionOperation = "create"
