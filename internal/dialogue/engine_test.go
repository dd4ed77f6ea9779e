package dialogue

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/srt-bank/srtbank/internal/catalog"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/ledger"
	"github.com/srt-bank/srtbank/internal/nlu"
)

// fakeClassifier returns canned results and records how often it was called.
type fakeClassifier struct {
	result nlu.Result
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (nlu.Result, error) {
	f.calls++
	return f.result, f.err
}

// fakeCatalog maps intents to a single template so picks are deterministic.
type fakeCatalog map[string][]string

func (f fakeCatalog) Templates(intent string) []string { return f[intent] }

func testCatalog() fakeCatalog {
	return fakeCatalog{
		"check_balance":  {"Sure. What is your account number?"},
		"transfer_money": {"Who should receive the money?"},
		"greet":          {"Hello!"},
		"out_of_scope":   {"I can only help with banking."},
	}
}

func newTestEngine(t *testing.T, fc *fakeClassifier) (*Engine, *ledger.Memory) {
	t.Helper()
	ldg := ledger.NewFixture()
	picker := catalog.NewPicker(testCatalog(), rand.New(rand.NewSource(1)))
	var classifier nlu.Classifier
	if fc != nil {
		classifier = fc
	}
	return NewEngine(classifier, picker, ldg, nil), ldg
}

func scores(pairs map[string]float64) nlu.Result {
	return nlu.Result{IntentScores: pairs}
}

func TestUnauthenticatedTurnShortCircuits(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: scores(map[string]float64{"greet": 0.99})}
	engine, _ := newTestEngine(t, fc)

	sess := &domain.Session{State: domain.StateAwaitingRecipient}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: false, Utterance: "hello"})

	if out.Intent != domain.IntentError {
		t.Fatalf("expected intent %q, got %q", domain.IntentError, out.Intent)
	}
	if fc.calls != 0 {
		t.Fatalf("classifier must not run for unauthenticated turns, got %d calls", fc.calls)
	}
	if sess.State != domain.StateAwaitingRecipient {
		t.Fatalf("state must be untouched, got %q", sess.State)
	}
}

func TestNilClassifierReportsModelUnavailable(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, nil)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "hi"})

	if out.Intent != domain.IntentError {
		t.Fatalf("expected intent %q, got %q", domain.IntentError, out.Intent)
	}
	if sess.State != domain.StateNone {
		t.Fatalf("state must stay NONE, got %q", sess.State)
	}
}

func TestClassifierErrorReportsModelUnavailable(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{err: errors.New("sidecar down")}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "hi"})

	if out.Intent != domain.IntentError {
		t.Fatalf("expected intent %q, got %q", domain.IntentError, out.Intent)
	}
}

func TestEmptyScoresFallBackToUnknownIntent(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "zzz"})

	if out.Intent != domain.IntentUnknown {
		t.Fatalf("expected intent %q, got %q", domain.IntentUnknown, out.Intent)
	}
	if sess.State != domain.StateNone {
		t.Fatalf("state must stay NONE, got %q", sess.State)
	}
}

func TestLowConfidenceDowngradesToOutOfScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
	}{
		{"well below threshold", 0.2},
		{"exactly at threshold", 0.65},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fc := &fakeClassifier{result: scores(map[string]float64{"transfer_money": tc.confidence})}
			engine, _ := newTestEngine(t, fc)
			sess := &domain.Session{}
			out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "maybe send cash"})

			if out.Intent != domain.IntentOutOfScope {
				t.Fatalf("expected out_of_scope, got %q", out.Intent)
			}
			if sess.State != domain.StateNone {
				t.Fatalf("low-confidence turn must not start a flow, got state %q", sess.State)
			}
		})
	}
}

func TestHighConfidenceSingleShotIntentStaysOutOfFlow(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: scores(map[string]float64{"greet": 0.9})}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "hello"})

	if out.Intent != "greet" {
		t.Fatalf("expected intent greet, got %q", out.Intent)
	}
	if out.Reply != "Hello!" {
		t.Fatalf("expected catalog reply, got %q", out.Reply)
	}
	if sess.State != domain.StateNone {
		t.Fatalf("single-shot intent must not start a flow, got state %q", sess.State)
	}
}

func TestRecognizedIntentWithoutTemplateFallsBack(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: scores(map[string]float64{"faq_branch_hours": 0.9})}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "when are you open"})

	if out.Intent != "faq_branch_hours" {
		t.Fatalf("expected classified intent, got %q", out.Intent)
	}
	if out.Reply != catalog.NoTemplateFallback {
		t.Fatalf("expected no-template fallback, got %q", out.Reply)
	}
	if sess.State != domain.StateNone {
		t.Fatalf("state must stay NONE, got %q", sess.State)
	}
}

func TestCheckBalanceStartsBalanceFlow(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: scores(map[string]float64{"check_balance": 0.9})}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "what is my balance"})

	if out.Intent != domain.IntentCheckBalance {
		t.Fatalf("expected check_balance, got %q", out.Intent)
	}
	if sess.State != domain.StateAwaitingAccountNumber {
		t.Fatalf("expected awaiting_account_number, got %q", sess.State)
	}
}

func TestBalanceFlowRevealsBalanceOnExactMatch(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{
		Entities: []nlu.Entity{{Kind: nlu.KindAccountNumber, Text: "96182240"}},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{State: domain.StateAwaitingAccountNumber}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "it's 96182240"})

	if !strings.Contains(out.Reply, "75000.00") {
		t.Fatalf("expected reply to include current balance, got %q", out.Reply)
	}
	if sess.State != domain.StateNone {
		t.Fatalf("expected flow to terminate, got state %q", sess.State)
	}
}

func TestBalanceFlowRejectsPartialMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entities []nlu.Entity
	}{
		{"no span", nil},
		{"wrong number", []nlu.Entity{{Kind: nlu.KindAccountNumber, Text: "11111111"}}},
		{"prefix only", []nlu.Entity{{Kind: nlu.KindAccountNumber, Text: "9618224"}}},
		{"superstring", []nlu.Entity{{Kind: nlu.KindAccountNumber, Text: "961822400"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fc := &fakeClassifier{result: nlu.Result{Entities: tc.entities}}
			engine, _ := newTestEngine(t, fc)
			sess := &domain.Session{State: domain.StateAwaitingAccountNumber}
			out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "account"})

			if strings.Contains(out.Reply, "75000") {
				t.Fatalf("balance must not be revealed: %q", out.Reply)
			}
			if sess.State != domain.StateAwaitingAccountNumber {
				t.Fatalf("retry must keep state, got %q", sess.State)
			}
		})
	}
}

func TestInFlowTurnNeverReclassifiesIntent(t *testing.T) {
	t.Parallel()

	// The classifier also returns a high-confidence intent; an in-flow turn
	// must use it for extraction only.
	fc := &fakeClassifier{result: nlu.Result{
		IntentScores: map[string]float64{"check_balance": 0.99},
		Entities:     []nlu.Entity{{Kind: nlu.KindPerson, Text: "priya"}},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{State: domain.StateAwaitingRecipient}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "send to priya"})

	if out.Intent != domain.IntentSlotFilling {
		t.Fatalf("in-flow turn must report slot_filling, got %q", out.Intent)
	}
	if sess.State != domain.StateAwaitingAmount {
		t.Fatalf("expected awaiting_amount, got %q", sess.State)
	}
}

func TestRecipientIsTitleCased(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{
		Entities: []nlu.Entity{{Kind: nlu.KindPerson, Text: "priya"}},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{State: domain.StateAwaitingRecipient}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "send to priya"})

	if sess.Transfer.Recipient != "Priya" {
		t.Fatalf("expected title-cased recipient, got %q", sess.Transfer.Recipient)
	}
	if !strings.Contains(out.Reply, "Priya") {
		t.Fatalf("reply should reference the recipient: %q", out.Reply)
	}
}

func TestMissingRecipientReprompts(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{State: domain.StateAwaitingRecipient}
	engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "ummm"})

	if sess.State != domain.StateAwaitingRecipient {
		t.Fatalf("retry must keep state, got %q", sess.State)
	}
	if sess.Transfer.Recipient != "" {
		t.Fatalf("no recipient should be stored, got %q", sess.Transfer.Recipient)
	}
}

func TestAmountIsDigitStripped(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{
		Entities: []nlu.Entity{{Kind: nlu.KindMoney, Text: "₹500"}},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingAmount,
		Transfer: domain.TransferDetails{Recipient: "Priya"},
	}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "₹500"})

	if sess.Transfer.Amount != "500" {
		t.Fatalf("expected amount %q, got %q", "500", sess.Transfer.Amount)
	}
	if sess.State != domain.StateAwaitingConfirmation {
		t.Fatalf("expected awaiting_confirmation, got %q", sess.State)
	}
	if !strings.Contains(out.Reply, "500") || !strings.Contains(out.Reply, "Priya") {
		t.Fatalf("confirmation prompt should name amount and recipient: %q", out.Reply)
	}
}

func TestAmountWithoutDigitsReprompts(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{
		Entities: []nlu.Entity{{Kind: nlu.KindMoney, Text: "some rupees"}},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingAmount,
		Transfer: domain.TransferDetails{Recipient: "Priya"},
	}
	engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "some rupees"})

	if sess.State != domain.StateAwaitingAmount {
		t.Fatalf("retry must keep state, got %q", sess.State)
	}
	if sess.Transfer.Amount != "" {
		t.Fatalf("no amount should be stored, got %q", sess.Transfer.Amount)
	}
}

func TestConfirmedTransferDebitsAndLogs(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, ldg := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingConfirmation,
		Transfer: domain.TransferDetails{Recipient: "Priya", Amount: "500"},
	}
	before := len(ldg.Transactions())

	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "yes"})

	if got := ldg.Balance(); got != 74500 {
		t.Fatalf("expected balance 74500, got %v", got)
	}
	txns := ldg.Transactions()
	if len(txns) != before+1 {
		t.Fatalf("expected exactly one new transaction, got %d", len(txns)-before)
	}
	if txns[0].Amount != -500 {
		t.Fatalf("expected prepended amount -500, got %v", txns[0].Amount)
	}
	if !strings.Contains(txns[0].Description, "Priya") {
		t.Fatalf("transaction description should reference recipient: %q", txns[0].Description)
	}
	if sess.State != domain.StateNone || !sess.Transfer.Empty() {
		t.Fatalf("terminal branch must clear state and slots, got %q %+v", sess.State, sess.Transfer)
	}
	if !strings.Contains(out.Reply, "74500.00") {
		t.Fatalf("success reply should report new balance: %q", out.Reply)
	}
}

func TestConfirmationAcceptsYesSubstring(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, ldg := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingConfirmation,
		Transfer: domain.TransferDetails{Recipient: "Priya", Amount: "500"},
	}
	engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "Yes, go ahead"})

	if got := ldg.Balance(); got != 74500 {
		t.Fatalf("expected balance 74500, got %v", got)
	}
}

func TestDeclinedTransferCancelsWithoutMutation(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, ldg := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingConfirmation,
		Transfer: domain.TransferDetails{Recipient: "Priya", Amount: "500"},
	}
	before := len(ldg.Transactions())

	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "no"})

	if got := ldg.Balance(); got != 75000 {
		t.Fatalf("balance must be unchanged, got %v", got)
	}
	if len(ldg.Transactions()) != before {
		t.Fatalf("no transaction should be recorded")
	}
	if sess.State != domain.StateNone || !sess.Transfer.Empty() {
		t.Fatalf("cancellation must clear state and slots, got %q %+v", sess.State, sess.Transfer)
	}
	if !strings.Contains(out.Reply, "cancelled") {
		t.Fatalf("expected cancellation reply, got %q", out.Reply)
	}
}

func TestInsufficientBalanceClearsStateWithoutMutation(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, ldg := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingConfirmation,
		Transfer: domain.TransferDetails{Recipient: "Priya", Amount: "80000"},
	}
	before := len(ldg.Transactions())

	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "yes"})

	if got := ldg.Balance(); got != 75000 {
		t.Fatalf("balance must be unchanged, got %v", got)
	}
	if len(ldg.Transactions()) != before {
		t.Fatalf("no transaction should be recorded")
	}
	if sess.State != domain.StateNone || !sess.Transfer.Empty() {
		t.Fatalf("failure must still terminate the flow, got %q %+v", sess.State, sess.Transfer)
	}
	if !strings.Contains(out.Reply, "insufficient") {
		t.Fatalf("expected insufficient-balance reply, got %q", out.Reply)
	}
}

func TestMalformedAmountAtConfirmationCancels(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{}}
	engine, ldg := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingConfirmation,
		Transfer: domain.TransferDetails{Recipient: "Priya", Amount: "not-digits"},
	}

	engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "yes"})

	if got := ldg.Balance(); got != 75000 {
		t.Fatalf("balance must be unchanged, got %v", got)
	}
	if sess.State != domain.StateNone || !sess.Transfer.Empty() {
		t.Fatalf("malformed amount must clear state, got %q %+v", sess.State, sess.Transfer)
	}
}

func TestExtractionBackendFailureLeavesFlowIntact(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{err: errors.New("sidecar down")}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{
		State:    domain.StateAwaitingAmount,
		Transfer: domain.TransferDetails{Recipient: "Priya"},
	}
	out := engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "₹500"})

	if out.Intent != domain.IntentError {
		t.Fatalf("expected error intent, got %q", out.Intent)
	}
	if sess.State != domain.StateAwaitingAmount {
		t.Fatalf("state must be unchanged after backend failure, got %q", sess.State)
	}
	if sess.Transfer.Recipient != "Priya" {
		t.Fatalf("collected slots must survive, got %+v", sess.Transfer)
	}
}

func TestTransferFlowEndToEnd(t *testing.T) {
	t.Parallel()

	ldg := ledger.NewFixture()
	picker := catalog.NewPicker(testCatalog(), rand.New(rand.NewSource(1)))
	fc := &fakeClassifier{result: scores(map[string]float64{"transfer_money": 0.92})}
	engine := NewEngine(fc, picker, ldg, nil)
	sess := &domain.Session{}
	ctx := context.Background()

	out := engine.Process(ctx, sess, Turn{Authenticated: true, Utterance: "i want to send money"})
	if out.Intent != domain.IntentTransferMoney || sess.State != domain.StateAwaitingRecipient {
		t.Fatalf("transfer start: intent=%q state=%q", out.Intent, sess.State)
	}

	fc.result = nlu.Result{Entities: []nlu.Entity{{Kind: nlu.KindPerson, Text: "priya"}}}
	engine.Process(ctx, sess, Turn{Authenticated: true, Utterance: "send to priya"})
	if sess.State != domain.StateAwaitingAmount || sess.Transfer.Recipient != "Priya" {
		t.Fatalf("recipient step: state=%q transfer=%+v", sess.State, sess.Transfer)
	}

	fc.result = nlu.Result{Entities: []nlu.Entity{{Kind: nlu.KindMoney, Text: "₹500"}}}
	engine.Process(ctx, sess, Turn{Authenticated: true, Utterance: "₹500"})
	if sess.State != domain.StateAwaitingConfirmation || sess.Transfer.Amount != "500" {
		t.Fatalf("amount step: state=%q transfer=%+v", sess.State, sess.Transfer)
	}

	out = engine.Process(ctx, sess, Turn{Authenticated: true, Utterance: "yes"})
	if !strings.Contains(out.Reply, "74500.00") {
		t.Fatalf("expected new balance in reply, got %q", out.Reply)
	}
	if got := ldg.Balance(); got != 74500 {
		t.Fatalf("expected balance 74500, got %v", got)
	}
	if sess.State != domain.StateNone || !sess.Transfer.Empty() {
		t.Fatalf("flow must terminate clean, got %q %+v", sess.State, sess.Transfer)
	}
}

func TestFirstEntityOfKindWins(t *testing.T) {
	t.Parallel()

	fc := &fakeClassifier{result: nlu.Result{
		Entities: []nlu.Entity{
			{Kind: nlu.KindPerson, Text: "priya"},
			{Kind: nlu.KindPerson, Text: "ravi"},
		},
	}}
	engine, _ := newTestEngine(t, fc)
	sess := &domain.Session{State: domain.StateAwaitingRecipient}
	engine.Process(context.Background(), sess, Turn{Authenticated: true, Utterance: "priya or ravi"})

	if sess.Transfer.Recipient != "Priya" {
		t.Fatalf("expected first PERSON span, got %q", sess.Transfer.Recipient)
	}
}

func TestStripNonDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"₹500", "500"},
		{"1,200 rupees", "1200"},
		{"no digits here", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := stripNonDigits(tc.in); got != tc.want {
			t.Errorf("stripNonDigits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
