package domain

// TransactionOperation names a transition that callers may request.
type TransactionOperation string

const (
	OperationApprove  TransactionOperation = "approve"
	OperationReject   TransactionOperation = "reject"
	OperationComplete TransactionOperation = "complete"
	OperationCancel   TransactionOperation = "cancel"
)

// TransactionOperations lists every operation.
var TransactionOperations = []TransactionOperation{
	OperationApprove,
	OperationReject,
	OperationComplete,
	OperationCancel,
}

// Transition describes one edge of the lifecycle.
type Transition struct {
	From        []TransactionStatus
	To          TransactionStatus
	OwnerOnly   bool
	RecordsNote bool
}

var transitions = map[TransactionOperation]Transition{
	OperationApprove: {
		From:        []TransactionStatus{TransactionStatusPending},
		To:          TransactionStatusApproved,
		OwnerOnly:   true,
		RecordsNote: true,
	},
	OperationReject: {
		From:        []TransactionStatus{TransactionStatusPending},
		To:          TransactionStatusRejected,
		OwnerOnly:   true,
		RecordsNote: true,
	},
	OperationComplete: {
		From:      []TransactionStatus{TransactionStatusApproved},
		To:        TransactionStatusCompleted,
		OwnerOnly: true,
	},
	OperationCancel: {
		From: []TransactionStatus{TransactionStatusPending, TransactionStatusApproved},
		To:   TransactionStatusCancelled,
	},
}

// TransitionFor returns the lifecycle edge for op.
func TransitionFor(op TransactionOperation) (Transition, bool) {
	t, ok := transitions[op]
	return t, ok
}

// NextStatus returns the status reached by applying op from current.
func NextStatus(current TransactionStatus, op TransactionOperation) (TransactionStatus, bool) {
	t, ok := transitions[op]
	if !ok {
		return "", false
	}
	if !t.allows(current) {
		return "", false
	}
	return t.To, true
}

func (t Transition) allows(current TransactionStatus) bool {
	for _, from := range t.From {
		if from == current {
			return true
		}
	}
	return false
}
