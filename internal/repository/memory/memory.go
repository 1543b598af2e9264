// Package memory is an in-process implementation of every store the service
// needs. Debits are serialized per account like the row lock of the Postgres
// store, so it is used for local runs and for concurrency tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type tariffKey struct {
	accountID int64
	channel   types.Channel
}

type statusKey struct {
	channel  types.Channel
	statusID int
}

type detail struct {
	dispatchID int64
	accountID  int64
	channel    types.Channel
	recipient  string
	price      decimal.Decimal
	senderID   int64
	status     int
}

type Store struct {
	mu sync.Mutex

	accounts       map[int64]*types.Account
	catalog        map[int64]types.Tariff
	accountTariffs map[tariffKey]int64
	senders        []types.Sender
	separators     []types.TimeSeparator
	dispatches     map[int64]types.Dispatch
	turns          map[int64]types.SendStatus
	history        []types.PaymentHistoryEntry
	outbox         []types.OutboxEvent
	details        []detail
	statusNames    map[statusKey]string

	accountLocks map[int64]*sync.Mutex

	lastDispatchID int64
	lastSenderID   int64
	lastHistoryID  int64
	now            func() time.Time
}

func New() *Store {
	return &Store{
		accounts:       map[int64]*types.Account{},
		catalog:        map[int64]types.Tariff{},
		accountTariffs: map[tariffKey]int64{},
		dispatches:     map[int64]types.Dispatch{},
		turns:          map[int64]types.SendStatus{},
		statusNames:    map[statusKey]string{},
		accountLocks:   map[int64]*sync.Mutex{},
		now:            time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) IsUpAndRunning(ctx context.Context) error {
	return s.Ping(ctx)
}

// AddAccount creates or replaces an account.
func (s *Store) AddAccount(account types.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := account
	s.accounts[account.ID] = &acc
}

// AddTariff adds a tariff to the catalog that accounts can be attached to.
func (s *Store) AddTariff(id int64, channel types.Channel, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog[id] = types.Tariff{ID: id, Channel: channel, UnitPrice: price}
}

// AddSender registers a sender and returns its id.
func (s *Store) AddSender(sender types.Sender) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSenderID++
	sender.ID = s.lastSenderID
	s.senders = append(s.senders, sender)

	return sender.ID
}

func (s *Store) AddTimeSeparator(sep types.TimeSeparator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.separators = append(s.separators, sep)
}

// AddDetail records the delivery state of a recipient as the send worker would.
func (s *Store) AddDetail(dispatchID, accountID int64, channel types.Channel,
	recipient string, price decimal.Decimal, senderID int64, status int) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = append(s.details, detail{
		dispatchID: dispatchID,
		accountID:  accountID,
		channel:    channel,
		recipient:  recipient,
		price:      price,
		senderID:   senderID,
		status:     status,
	})
}

func (s *Store) AddDetailStatus(channel types.Channel, statusID int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusNames[statusKey{channel, statusID}] = name
}

func (s *Store) SetSendStatus(dispatchID int64, status types.SendStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[dispatchID] = status
}

func (s *Store) SetPaused(dispatchID int64, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.dispatches[dispatchID]
	d.Paused = paused
	s.dispatches[dispatchID] = d
}

func (s *Store) Account(ctx context.Context, id int64) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return types.Account{}, repository.ErrNotFound
	}

	return *acc, nil
}

func (s *Store) AccountTariff(ctx context.Context, accountID int64,
	channel types.Channel) (types.Tariff, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	tariffID, ok := s.accountTariffs[tariffKey{accountID, channel}]
	if !ok {
		return types.Tariff{}, repository.ErrNotFound
	}

	tariff, ok := s.catalog[tariffID]
	if !ok {
		return types.Tariff{}, repository.ErrNotFound
	}
	tariff.AccountID = accountID
	tariff.Channel = channel

	return tariff, nil
}

func (s *Store) AttachTariff(ctx context.Context, accountID int64,
	channel types.Channel, tariffID int64) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tariffKey{accountID, channel}
	if _, ok := s.accountTariffs[key]; !ok {
		s.accountTariffs[key] = tariffID
	}

	return nil
}

// TariffRows returns how many tariffs the account has on the channel.
func (s *Store) TariffRows(accountID int64, channel types.Channel) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accountTariffs[tariffKey{accountID, channel}]; ok {
		return 1
	}
	return 0
}

func (s *Store) FindSender(ctx context.Context, accountID int64,
	channel types.Channel, name string) (types.Sender, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var found *types.Sender
	for i := range s.senders {
		sender := &s.senders[i]
		if sender.AccountID != accountID || sender.Channel != channel || sender.Name != name {
			continue
		}
		if found == nil || (!found.Eligible() && sender.Eligible()) {
			found = sender
		}
	}

	if found == nil {
		return types.Sender{}, repository.ErrNotFound
	}

	return *found, nil
}

func (s *Store) TimeSeparators(ctx context.Context) ([]types.TimeSeparator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seps := append([]types.TimeSeparator{}, s.separators...)
	sort.Slice(seps, func(i, j int) bool { return seps[i].Minutes < seps[j].Minutes })

	return seps, nil
}

func (s *Store) CreateDispatch(ctx context.Context, d *types.Dispatch) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertDispatch(d), nil
}

func (s *Store) Debit(ctx context.Context, debit types.Debit) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	unlock := s.lockAccount(debit.AccountID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyDebit(debit)
}

func (s *Store) CreateDispatchAndDebit(ctx context.Context, d *types.Dispatch,
	debit types.Debit) (int64, decimal.Decimal, error) {

	if err := ctx.Err(); err != nil {
		return 0, decimal.Zero, err
	}

	unlock := s.lockAccount(debit.AccountID)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// the debit is checked first so nothing has to be undone
	acc, ok := s.accounts[debit.AccountID]
	if !ok {
		return 0, decimal.Zero, repository.ErrNotFound
	}
	if acc.Balance.Sub(debit.Amount).IsNegative() {
		return 0, decimal.Zero, repository.ErrInsufficientFunds
	}

	id := s.insertDispatch(d)
	balance, err := s.applyDebit(debit)
	if err != nil {
		return 0, decimal.Zero, err
	}

	return id, balance, nil
}

// insertDispatch must be called with s.mu held.
func (s *Store) insertDispatch(d *types.Dispatch) int64 {
	s.lastDispatchID++
	d.ID = s.lastDispatchID
	d.CreatedAt = s.now()

	s.dispatches[d.ID] = *d
	s.turns[d.ID] = types.SendStatusWait
	s.outbox = append(s.outbox, types.OutboxEvent{
		ID:         uuid.New(),
		DispatchID: d.ID,
		Channel:    d.Channel,
		Status:     types.OutboxPending,
		CreatedAt:  d.CreatedAt,
	})

	return d.ID
}

// applyDebit must be called with the account lock and s.mu held.
func (s *Store) applyDebit(debit types.Debit) (decimal.Decimal, error) {
	acc, ok := s.accounts[debit.AccountID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}

	next := acc.Balance.Sub(debit.Amount)
	if next.IsNegative() {
		return decimal.Zero, repository.ErrInsufficientFunds
	}

	acc.Balance = next
	s.lastHistoryID++
	s.history = append(s.history, types.PaymentHistoryEntry{
		ID:          s.lastHistoryID,
		AccountID:   acc.ID,
		Credit:      debit.Amount,
		CurrencyID:  acc.CurrencyID,
		Description: debit.Description,
	})

	return next, nil
}

func (s *Store) lockAccount(accountID int64) func() {
	s.mu.Lock()
	lock, ok := s.accountLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.accountLocks[accountID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Store) Dispatch(id int64) (types.Dispatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dispatches[id]
	return d, ok
}

func (s *Store) Dispatches() []types.Dispatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]types.Dispatch, 0, len(s.dispatches))
	for _, d := range s.dispatches {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list
}

func (s *Store) SendStatus(dispatchID int64) (types.SendStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.turns[dispatchID]
	return status, ok
}

func (s *Store) PaymentHistory(accountID int64) []types.PaymentHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []types.PaymentHistoryEntry
	for _, e := range s.history {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}

	return entries
}

func (s *Store) DispatchState(ctx context.Context, accountID int64,
	channel types.Channel, dispatchID int64) (types.DispatchState, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dispatches[dispatchID]
	if !ok || d.AccountID != accountID || d.Channel != channel {
		return types.DispatchState{}, repository.ErrNotFound
	}

	status, ok := s.turns[dispatchID]
	if !ok {
		status = types.SendStatusWait
	}

	return types.DispatchState{
		ID:         d.ID,
		Name:       d.Name,
		Paused:     d.Paused,
		SendStatus: status,
	}, nil
}

func (s *Store) DispatchDetails(ctx context.Context, accountID int64,
	channel types.Channel, dispatchID int64, terminalOnly bool) ([]types.StatDetail, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	details := []types.StatDetail{}
	for _, d := range s.details {
		if d.dispatchID != dispatchID || d.accountID != accountID || d.channel != channel {
			continue
		}
		if terminalOnly && d.status != 2 && d.status != 3 {
			continue
		}

		row := types.StatDetail{
			Recipient: d.recipient,
			Price:     d.price.Round(4),
			StatusID:  d.status,
		}
		for _, sender := range s.senders {
			if sender.ID == d.senderID {
				name := sender.Name
				row.Sender = &name
				break
			}
		}
		if name, ok := s.statusNames[statusKey{channel, d.status}]; ok {
			row.StatusName = &name
		}

		details = append(details, row)
	}

	return details, nil
}

// ClaimOutbox returns pending events. The in-memory store has a single relay,
// so no lease is needed.
func (s *Store) ClaimOutbox(ctx context.Context, limit int) ([]types.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []types.OutboxEvent
	for _, e := range s.outbox {
		if len(events) >= limit {
			break
		}
		if e.Status == types.OutboxPending {
			events = append(events, e)
		}
	}

	return events, nil
}

func (s *Store) MarkOutboxPublished(ctx context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	published := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		published[id] = struct{}{}
	}

	for i := range s.outbox {
		if _, ok := published[s.outbox[i].ID]; ok {
			s.outbox[i].Status = types.OutboxPublished
		}
	}

	return nil
}

func (s *Store) Outbox() []types.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]types.OutboxEvent{}, s.outbox...)
}
