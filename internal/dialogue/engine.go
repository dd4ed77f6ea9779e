// Package dialogue implements the conversational core of the bank assistant:
// a per-session state machine that either continues an in-progress
// slot-filling flow, starts a new one, or answers a one-shot query.
//
// The engine is a pure function of (session state, utterance, collaborator
// responses): classification, reply templates and the account ledger are all
// injected, and every turn runs to completion before returning.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/srt-bank/srtbank/internal/catalog"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/ledger"
	"github.com/srt-bank/srtbank/internal/nlu"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConfidenceThreshold is the minimum classifier score required to accept a
// predicted intent. At or below it the prediction is discarded and replaced
// with out_of_scope; the raw label is never surfaced.
const ConfidenceThreshold = 0.65

// Fixed reply strings for turns that never reach the catalog.
const (
	replyAuthError       = "Authentication error."
	replyModelDown       = "Sorry, AI model not available."
	replyNoIntent        = "I'm sorry, I'm not sure how to help with that."
	replyAccountMismatch = "That account number doesn't seem to match our records. Please try again."
	replyNoRecipient     = "Sorry, I didn't catch a name. Who do you want to send money to?"
	replyNoAmount        = "Sorry, I didn't understand the amount. How much?"
	replyCancelled       = "OK, I've cancelled the transaction."
	replyTransferFailed  = "Transaction failed: insufficient balance."
	replyBadAmount       = "Sorry, something went wrong with that transfer. I've cancelled it."
)

// Turn is one inbound message for an authenticated (or not) session.
type Turn struct {
	Authenticated bool
	Utterance     string
}

// Outcome is the engine's answer for one turn. The session passed to Process
// carries the updated dialogue state.
type Outcome struct {
	Reply  string `json:"reply"`
	Intent string `json:"intent"`
}

// Engine decides how each turn advances the conversation.
type Engine struct {
	classifier nlu.Classifier // nil when the NLU sidecar is unavailable
	picker     *catalog.Picker
	ledger     ledger.Ledger
	logger     *slog.Logger
}

// NewEngine creates a dialogue engine. classifier may be nil, in which case
// new-conversation turns report the model as unavailable.
func NewEngine(classifier nlu.Classifier, picker *catalog.Picker, ldg ledger.Ledger, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		classifier: classifier,
		picker:     picker,
		ledger:     ldg,
		logger:     logger,
	}
}

// Process runs one turn against the session. It mutates sess in place and
// returns the reply plus the reported intent. All failures surface as a
// reply with a machine-readable intent tag; none are silently dropped.
func (e *Engine) Process(ctx context.Context, sess *domain.Session, turn Turn) Outcome {
	if !turn.Authenticated {
		// Rejected before any state-machine logic runs.
		return Outcome{Reply: replyAuthError, Intent: domain.IntentError}
	}

	utterance := strings.TrimSpace(turn.Utterance)

	if sess.State.InFlow() {
		return e.continueFlow(ctx, sess, utterance)
	}
	// Defensive: an unknown persisted state never drives a flow.
	sess.ClearFlow()

	return e.startConversation(ctx, sess, utterance)
}

// continueFlow advances an in-progress flow. The utterance is sent for
// entity extraction only; intent classification runs exclusively in state
// NONE.
func (e *Engine) continueFlow(ctx context.Context, sess *domain.Session, utterance string) Outcome {
	result, err := e.extract(ctx, utterance)
	if err != nil {
		// Fatal to this turn only; the flow stays where it was.
		e.logger.Error("entity extraction failed mid-flow", "state", sess.State, "error", err)
		return Outcome{Reply: replyModelDown, Intent: domain.IntentError}
	}

	switch sess.State {
	case domain.StateAwaitingAccountNumber:
		return e.verifyAccountNumber(sess, result)
	case domain.StateAwaitingRecipient:
		return e.collectRecipient(sess, result)
	case domain.StateAwaitingAmount:
		return e.collectAmount(sess, result)
	case domain.StateAwaitingConfirmation:
		return e.confirmTransfer(sess, utterance)
	}

	// Unreachable given InFlow, but terminate rather than wedge the session.
	sess.ClearFlow()
	return Outcome{Reply: replyBadAmount, Intent: domain.IntentError}
}

// verifyAccountNumber handles the single step of the balance flow. The span
// must exactly equal the stored account number; no partial match succeeds.
func (e *Engine) verifyAccountNumber(sess *domain.Session, result nlu.Result) Outcome {
	accNum, ok := result.First(nlu.KindAccountNumber)
	if !ok || accNum != e.ledger.AccountNumber() {
		return Outcome{Reply: replyAccountMismatch, Intent: domain.IntentSlotFilling}
	}

	reply := fmt.Sprintf(
		"Thank you for verifying. Your current balance is ₹%.2f. Is there anything else I can help with?",
		e.ledger.Balance(),
	)
	sess.ClearFlow()
	return Outcome{Reply: reply, Intent: domain.IntentSlotFilling}
}

// collectRecipient fills the first transfer slot.
func (e *Engine) collectRecipient(sess *domain.Session, result nlu.Result) Outcome {
	name, ok := result.First(nlu.KindPerson)
	if !ok {
		return Outcome{Reply: replyNoRecipient, Intent: domain.IntentSlotFilling}
	}

	recipient := cases.Title(language.English).String(name)
	sess.Transfer.Recipient = recipient
	sess.State = domain.StateAwaitingAmount
	return Outcome{
		Reply:  fmt.Sprintf("OK. How much would you like to send to %s?", recipient),
		Intent: domain.IntentSlotFilling,
	}
}

// collectAmount fills the second transfer slot. The span is stripped to its
// digits and stored as a string; it is parsed to a number only at
// confirmation time.
func (e *Engine) collectAmount(sess *domain.Session, result nlu.Result) Outcome {
	span, ok := result.First(nlu.KindMoney)
	amount := stripNonDigits(span)
	if !ok || amount == "" {
		return Outcome{Reply: replyNoAmount, Intent: domain.IntentSlotFilling}
	}

	sess.Transfer.Amount = amount
	sess.State = domain.StateAwaitingConfirmation
	return Outcome{
		Reply:  fmt.Sprintf("Please confirm: send ₹%s to %s? (yes/no)", amount, sess.Transfer.Recipient),
		Intent: domain.IntentSlotFilling,
	}
}

// confirmTransfer is the terminal step of the transfer flow. It always
// clears the flow, success or failure, so conversations cannot get stuck
// past confirmation.
func (e *Engine) confirmTransfer(sess *domain.Session, utterance string) Outcome {
	defer sess.ClearFlow()

	if !strings.Contains(strings.ToLower(utterance), "yes") {
		return Outcome{Reply: replyCancelled, Intent: domain.IntentSlotFilling}
	}

	amount, err := strconv.ParseFloat(sess.Transfer.Amount, 64)
	if err != nil || amount < 0 {
		// Should be unreachable given the digit guard; treat as cancellation.
		e.logger.Warn("malformed transfer amount at confirmation", "amount", sess.Transfer.Amount)
		return Outcome{Reply: replyBadAmount, Intent: domain.IntentSlotFilling}
	}

	newBalance, err := e.ledger.Transfer(sess.Transfer.Recipient, amount)
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		return Outcome{Reply: replyTransferFailed, Intent: domain.IntentSlotFilling}
	}
	if err != nil {
		e.logger.Error("transfer commit failed", "error", err)
		return Outcome{Reply: replyBadAmount, Intent: domain.IntentSlotFilling}
	}

	reply := fmt.Sprintf("✅ Success! Sent ₹%g to %s. Your new balance is ₹%.2f.",
		amount, sess.Transfer.Recipient, newBalance)
	return Outcome{Reply: reply, Intent: domain.IntentSlotFilling}
}

// startConversation classifies a new utterance and dispatches on intent.
func (e *Engine) startConversation(ctx context.Context, sess *domain.Session, utterance string) Outcome {
	if e.classifier == nil {
		return Outcome{Reply: replyModelDown, Intent: domain.IntentError}
	}

	result, err := e.classifier.Classify(ctx, utterance)
	if err != nil {
		e.logger.Error("classification failed", "error", err)
		return Outcome{Reply: replyModelDown, Intent: domain.IntentError}
	}

	intent, confidence, ok := result.TopIntent()
	if !ok {
		return Outcome{Reply: replyNoIntent, Intent: domain.IntentUnknown}
	}

	if confidence <= ConfidenceThreshold {
		// Low confidence is downgraded silently, never surfaced as an error.
		return Outcome{
			Reply:  e.picker.Pick(domain.IntentOutOfScope),
			Intent: domain.IntentOutOfScope,
		}
	}

	switch intent {
	case domain.IntentCheckBalance:
		sess.State = domain.StateAwaitingAccountNumber
	case domain.IntentTransferMoney:
		sess.State = domain.StateAwaitingRecipient
		sess.Transfer = domain.TransferDetails{}
	}

	return Outcome{Reply: e.picker.Pick(intent), Intent: intent}
}

// extract runs the classifier for its entity spans only.
func (e *Engine) extract(ctx context.Context, utterance string) (nlu.Result, error) {
	if e.classifier == nil {
		return nlu.Result{}, errors.New("classifier unavailable")
	}
	return e.classifier.Classify(ctx, utterance)
}

// stripNonDigits drops every non-digit rune, mirroring how the amount slot
// is normalized before storage.
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
