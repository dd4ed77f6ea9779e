package domain

// DialogueState identifies the active multi-turn flow step for a session.
// The zero value StateNone means no flow is in progress.
type DialogueState string

const (
	// StateNone means no conversation flow is active.
	StateNone DialogueState = ""
	// StateAwaitingAccountNumber is the verification step of the balance flow.
	StateAwaitingAccountNumber DialogueState = "awaiting_account_number"
	// StateAwaitingRecipient is the first slot of the transfer flow.
	StateAwaitingRecipient DialogueState = "awaiting_recipient"
	// StateAwaitingAmount is the second slot of the transfer flow.
	StateAwaitingAmount DialogueState = "awaiting_amount"
	// StateAwaitingConfirmation is the terminal yes/no step of the transfer flow.
	StateAwaitingConfirmation DialogueState = "awaiting_confirmation"
)

// Valid reports whether s is one of the enumerated states.
func (s DialogueState) Valid() bool {
	switch s {
	case StateNone, StateAwaitingAccountNumber, StateAwaitingRecipient,
		StateAwaitingAmount, StateAwaitingConfirmation:
		return true
	}
	return false
}

// InFlow reports whether a multi-turn flow is in progress.
func (s DialogueState) InFlow() bool {
	return s != StateNone && s.Valid()
}

// Well-known intent labels. The response catalog may define more; these are
// the ones the engine branches on.
const (
	IntentCheckBalance  = "check_balance"
	IntentTransferMoney = "transfer_money"
	IntentOutOfScope    = "out_of_scope"
	IntentSlotFilling   = "slot_filling"
	IntentError         = "error"
	IntentUnknown       = "n/a"
)

// TransferDetails holds the slots collected during a transfer flow. It lives
// only between the recipient step and the terminal confirmation step. Amount
// is a string of digits; it is parsed to a number only at confirmation.
type TransferDetails struct {
	Recipient string `json:"recipient,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// Empty reports whether no slots have been collected yet.
func (t TransferDetails) Empty() bool {
	return t.Recipient == "" && t.Amount == ""
}

// ClearFlow resets the dialogue state and all collected slots together.
// Every terminal branch of a flow must end here.
func (s *Session) ClearFlow() {
	s.State = StateNone
	s.Transfer = TransferDetails{}
}
