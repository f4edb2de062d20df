package entities

import (
	"fmt"
	"time"
)

// RequestKind tags an approval request as a deposit or a withdrawal
type RequestKind string

const (
	RequestKindDeposit    RequestKind = "deposit"
	RequestKindWithdrawal RequestKind = "withdrawal"
)

// IsValid returns true for the two supported kinds
func (k RequestKind) IsValid() bool {
	return k == RequestKindDeposit || k == RequestKindWithdrawal
}

// RequestStatus is the lifecycle state of an approval request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusApproved  RequestStatus = "APPROVED"  // Terminal, withdrawals
	RequestStatusConfirmed RequestStatus = "CONFIRMED" // Terminal, deposits
	RequestStatusRejected  RequestStatus = "REJECTED"
)

// IsTerminal returns true for every status other than PENDING
func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

// Decision is an administrator's verdict on a pending request
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// IsValid returns true for approve and reject
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// TerminalStatusFor resolves the status a request of the given kind moves to.
// Approving a deposit confirms it; approving a withdrawal approves it.
func TerminalStatusFor(kind RequestKind, decision Decision) (RequestStatus, error) {
	switch {
	case decision == DecisionReject && kind.IsValid():
		return RequestStatusRejected, nil
	case decision == DecisionApprove && kind == RequestKindDeposit:
		return RequestStatusConfirmed, nil
	case decision == DecisionApprove && kind == RequestKindWithdrawal:
		return RequestStatusApproved, nil
	default:
		return "", fmt.Errorf("unsupported decision %q for request kind %q", decision, kind)
	}
}

// ApprovalRequest is a deposit or withdrawal awaiting an administrator decision
type ApprovalRequest struct {
	ID        int64         `db:"id"`
	Kind      RequestKind   `db:"kind"`
	AccountID int64         `db:"account_id"`
	Amount    int64         `db:"amount"`
	Status    RequestStatus `db:"status"`
	DecidedBy *int64        `db:"decided_by"`
	DecidedAt *time.Time    `db:"decided_at"`
	CreatedAt time.Time     `db:"created_at"`
}

// IsPending returns true while the request awaits a decision
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
