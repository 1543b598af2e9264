package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openbuilders/campaign-api/internal/billing"
	"github.com/openbuilders/campaign-api/internal/dispatch"
	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/repository/memory"
	"github.com/openbuilders/campaign-api/internal/schedule"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/shopspring/decimal"
)

const accountID = 7

type env struct {
	store        *memory.Store
	orchestrator *dispatch.Orchestrator
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEnv(t *testing.T, balance string, atomic bool, ledger dispatch.Ledger) *env {
	t.Helper()

	store := memory.New()
	store.AddAccount(types.Account{ID: accountID, Balance: dec(balance), CurrencyID: 1})
	store.AddTariff(1, types.ChannelSMS, dec("1.0"))
	store.AddTariff(2, types.ChannelViber, dec("1.5"))
	store.AddTimeSeparator(types.TimeSeparator{ID: 20, Minutes: 60})
	store.AddTimeSeparator(types.TimeSeparator{ID: 26, Minutes: 1440})
	store.AddSender(types.Sender{AccountID: accountID, Channel: types.ChannelSMS, Name: "Shop", Available: true, Active: true})
	store.AddSender(types.Sender{AccountID: accountID, Channel: types.ChannelSMS, Name: "Blocked", Available: true})
	store.AddSender(types.Sender{AccountID: accountID, Channel: types.ChannelViber, Name: "ShopViber", Available: true, Active: true})

	resolver := billing.NewTariffResolver(store, map[types.Channel]int64{
		types.ChannelSMS:   1,
		types.ChannelViber: 2,
	})
	if ledger == nil {
		ledger = billing.NewLedger(store)
	}
	catalog := schedule.NewCatalog(&schedule.Config{DefaultLiveTimeID: 26}, store, nil)

	o := dispatch.NewOrchestrator(
		&dispatch.Config{AtomicDebit: atomic},
		store,
		billing.NewEstimator(resolver),
		ledger,
		catalog,
		dispatch.SMS{},
		dispatch.Viber{},
	)

	return &env{store: store, orchestrator: o}
}

func (e *env) account(t *testing.T) types.Account {
	t.Helper()

	acc, err := e.store.Account(context.Background(), accountID)
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	return acc
}

func recipients(n int) string {
	numbers := make([]string, n)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("380501%06d", i)
	}
	return strings.Join(numbers, "\n")
}

func smsSubmission(recipientCount int) types.Submission {
	return types.Submission{
		Channel:    types.ChannelSMS,
		Name:       "spring sale",
		Recipients: recipients(recipientCount),
		Sender:     "Shop",
		Message:    strings.Repeat("a", 50),
	}
}

func expectKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got success", kind)
	}
	if got := apperrors.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func TestSMSDispatchIsCreatedAndPaid(t *testing.T) {
	e := newEnv(t, "100", false, nil)

	outcome, err := e.orchestrator.Submit(context.Background(), e.account(t), smsSubmission(10))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !outcome.Estimate.TotalCost.Equal(dec("10")) {
		t.Fatalf("total cost is %s, expected 10", outcome.Estimate.TotalCost)
	}
	if !outcome.NewBalance.Equal(dec("90")) || !e.account(t).Balance.Equal(dec("90")) {
		t.Fatalf("balance is %s, expected 90", e.account(t).Balance)
	}

	d, ok := e.store.Dispatch(outcome.DispatchID)
	if !ok {
		t.Fatalf("dispatch %d was not stored", outcome.DispatchID)
	}
	if d.Type != types.DispatchTypeUsual || d.Period != types.DispatchPeriodSingle {
		t.Errorf("unexpected dispatch kind %q/%q", d.Type, d.Period)
	}
	if d.LiveTimeID != 26 || d.Paused {
		t.Errorf("unexpected defaults: live time %d, paused %v", d.LiveTimeID, d.Paused)
	}
	if time.Since(d.StartDate) > time.Minute {
		t.Errorf("start date %s is not now", d.StartDate)
	}

	status, _ := e.store.SendStatus(outcome.DispatchID)
	if status != types.SendStatusWait {
		t.Errorf("turn status is %d, expected Wait", status)
	}

	history := e.store.PaymentHistory(accountID)
	if len(history) != 1 || !history[0].Credit.Equal(dec("10")) {
		t.Fatalf("unexpected payment history %+v", history)
	}
	if history[0].Description != "Снятие денег за рассылку spring sale" {
		t.Errorf("unexpected description %q", history[0].Description)
	}

	if len(e.store.Outbox()) != 1 {
		t.Errorf("expected one outbox event")
	}
}

func TestInsufficientBalanceHasNoSideEffects(t *testing.T) {
	e := newEnv(t, "5", false, nil)

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), smsSubmission(10))
	expectKind(t, err, apperrors.KindInsufficientFunds)

	if len(e.store.Dispatches()) != 0 || len(e.store.PaymentHistory(accountID)) != 0 {
		t.Fatalf("rejected submission left rows behind")
	}
	if !e.account(t).Balance.Equal(dec("5")) {
		t.Fatalf("balance changed to %s", e.account(t).Balance)
	}
}

func TestExactBalanceIsNotEnough(t *testing.T) {
	e := newEnv(t, "10", false, nil)

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), smsSubmission(10))
	expectKind(t, err, apperrors.KindInsufficientFunds)
}

func TestUnknownViberSender(t *testing.T) {
	e := newEnv(t, "100", false, nil)

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), types.Submission{
		Channel:    types.ChannelViber,
		Name:       "viber promo",
		Recipients: "380501112233",
		Sender:     "Nobody",
		Message:    "hello",
	})
	expectKind(t, err, apperrors.KindInvalidSender)

	if len(e.store.Dispatches()) != 0 {
		t.Fatalf("dispatch was created")
	}
}

func TestUnresolvedFallbackSender(t *testing.T) {
	e := newEnv(t, "100", false, nil)

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), types.Submission{
		Channel:    types.ChannelViber,
		Name:       "viber promo",
		Recipients: "380501112233",
		Sender:     "ShopViber",
		Message:    "hello",
		SMSSender:  "Missing",
		SMSMessage: "hello by sms",
	})
	expectKind(t, err, apperrors.KindInvalidFallbackSender)

	if len(e.store.Dispatches()) != 0 {
		t.Fatalf("dispatch was created")
	}
}

func TestInactiveSenderIsRejected(t *testing.T) {
	e := newEnv(t, "100", false, nil)

	sub := smsSubmission(1)
	sub.Sender = "Blocked"

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), sub)
	expectKind(t, err, apperrors.KindInvalidSender)
}

func TestViberDispatchWithFallback(t *testing.T) {
	e := newEnv(t, "100", false, nil)
	validity := 60

	outcome, err := e.orchestrator.Submit(context.Background(), e.account(t), types.Submission{
		Channel:         types.ChannelViber,
		Name:            "viber promo",
		Recipients:      "380501112233,380501112244",
		Sender:          "ShopViber",
		Message:         "hello",
		ImageURL:        "https://example.com/a.png",
		ButtonName:      "Buy",
		ButtonURL:       "https://example.com",
		SMSSender:       "Shop",
		SMSMessage:      "hello by sms",
		ValidityMinutes: &validity,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !outcome.Estimate.TotalCost.Equal(dec("3")) {
		t.Fatalf("total cost is %s, expected 3", outcome.Estimate.TotalCost)
	}

	d, _ := e.store.Dispatch(outcome.DispatchID)
	if d.LiveTimeID != 20 {
		t.Errorf("live time is %d, expected 20", d.LiveTimeID)
	}
	if d.Content.SMSSenderID == nil || d.Content.Button == nil || d.Content.ImageLink == nil {
		t.Fatalf("content is incomplete: %+v", d.Content)
	}
	if d.Content.Button.Name != "Buy" || d.Content.SMSMessage != "hello by sms" {
		t.Errorf("unexpected content %+v", d.Content)
	}
	if d.Type != "" || d.Period != "" {
		t.Errorf("viber dispatch got kind %q/%q", d.Type, d.Period)
	}
}

func TestImageOnlyViberDispatchIsFree(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		e := newEnv(t, "1", atomic, nil)

		outcome, err := e.orchestrator.Submit(context.Background(), e.account(t), types.Submission{
			Channel:    types.ChannelViber,
			Name:       "picture",
			Recipients: "380501112233",
			Sender:     "ShopViber",
			ImageURL:   "https://example.com/a.png",
		})
		if err != nil {
			t.Fatalf("atomic=%v: submit failed: %v", atomic, err)
		}

		if !outcome.Estimate.TotalCost.IsZero() || !outcome.NewBalance.Equal(dec("1")) {
			t.Fatalf("atomic=%v: image only dispatch was charged %s", atomic, outcome.Estimate.TotalCost)
		}

		if _, ok := e.store.Dispatch(outcome.DispatchID); !ok {
			t.Fatalf("atomic=%v: dispatch %d was not stored", atomic, outcome.DispatchID)
		}

		if history := e.store.PaymentHistory(accountID); len(history) != 0 {
			t.Fatalf("atomic=%v: free dispatch wrote payment history %+v", atomic, history)
		}

		if acc := e.account(t); !acc.Balance.Equal(dec("1")) {
			t.Fatalf("atomic=%v: balance changed to %s", atomic, acc.Balance)
		}
	}
}

func TestFreeDispatchSkipsLedger(t *testing.T) {
	e := newEnv(t, "1", false, failingLedger{})

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), types.Submission{
		Channel:    types.ChannelViber,
		Name:       "button",
		Recipients: "380501112233",
		Sender:     "ShopViber",
		ButtonName: "Open",
		ButtonURL:  "https://example.com",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
}

func TestExplicitStartDate(t *testing.T) {
	e := newEnv(t, "100", false, nil)

	start := time.Date(2027, 3, 1, 9, 0, 0, 0, time.UTC)
	sub := smsSubmission(1)
	sub.StartDate = &start

	outcome, err := e.orchestrator.Submit(context.Background(), e.account(t), sub)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	d, _ := e.store.Dispatch(outcome.DispatchID)
	if !d.StartDate.Equal(start) {
		t.Fatalf("start date is %s, expected %s", d.StartDate, start)
	}
}

type failingLedger struct{}

func (failingLedger) Debit(context.Context, int64, decimal.Decimal, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection reset")
}

func TestLedgerFailureLeavesDispatch(t *testing.T) {
	e := newEnv(t, "100", false, failingLedger{})

	_, err := e.orchestrator.Submit(context.Background(), e.account(t), smsSubmission(10))
	expectKind(t, err, apperrors.KindUndefined)

	if len(e.store.Dispatches()) != 1 {
		t.Fatalf("expected the unpaid dispatch to stay")
	}
	if !e.account(t).Balance.Equal(dec("100")) || len(e.store.PaymentHistory(accountID)) != 0 {
		t.Fatalf("account was charged")
	}
}

func TestAtomicModeRejectsOverdraftUnderLock(t *testing.T) {
	e := newEnv(t, "15", true, nil)
	acc := e.account(t)

	// both submissions are priced against the same snapshot of 15
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.orchestrator.Submit(context.Background(), acc, smsSubmission(10))
		}(i)
	}
	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			expectKind(t, err, apperrors.KindInsufficientFunds)
			failed++
		}
	}

	if failed != 1 {
		t.Fatalf("expected exactly one rejected submission, got %d", failed)
	}
	if len(e.store.Dispatches()) != 1 {
		t.Fatalf("rejected atomic submission left a dispatch behind")
	}
	if !e.account(t).Balance.Equal(dec("5")) {
		t.Fatalf("balance is %s, expected 5", e.account(t).Balance)
	}
}

func TestTwoStepModeNeverOverdraws(t *testing.T) {
	e := newEnv(t, "15", false, nil)
	acc := e.account(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.orchestrator.Submit(context.Background(), acc, smsSubmission(10))
		}()
	}
	wg.Wait()

	if e.account(t).Balance.IsNegative() {
		t.Fatalf("balance went negative: %s", e.account(t).Balance)
	}
	if len(e.store.PaymentHistory(accountID)) != 1 {
		t.Fatalf("expected one debit")
	}
}
