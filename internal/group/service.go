package group

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/susu3304/warikan/internal/ledger"
	"github.com/susu3304/warikan/internal/metrics"
)

var ErrGroupNotFound = errors.New("group not found")

// Journal receives every successful mutation for auditing. It is never read
// back to rebuild a ledger.
type Journal interface {
	RecordParticipant(ctx context.Context, groupID string, p ledger.Participant) error
	RecordExpense(ctx context.Context, groupID string, e *ledger.Expense) error
	RecordPayment(ctx context.Context, groupID string, p ledger.Payment) error
}

type nopJournal struct{}

func (nopJournal) RecordParticipant(context.Context, string, ledger.Participant) error { return nil }
func (nopJournal) RecordExpense(context.Context, string, *ledger.Expense) error        { return nil }
func (nopJournal) RecordPayment(context.Context, string, ledger.Payment) error         { return nil }

// Service keeps one independent ledger per group id.
type Service struct {
	mu      sync.Mutex
	store   map[string]*Group
	journal Journal
	metrics *metrics.Registry
}

// NewService creates an empty service. journal and m may be nil.
func NewService(journal Journal, m *metrics.Registry) *Service {
	if journal == nil {
		journal = nopJournal{}
	}
	return &Service{
		store:   make(map[string]*Group),
		journal: journal,
		metrics: m,
	}
}

// Open returns the group with the given id, creating it on first use.
func (s *Service) Open(groupID string) *Group {
	groupID = strings.TrimSpace(groupID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.store[groupID]; ok {
		return g
	}
	dir := ledger.NewDirectory()
	g := &Group{
		ID:      groupID,
		dir:     dir,
		factory: ledger.NewFactory(dir),
		ledger:  ledger.New(dir),
		journal: s.journal,
		metrics: s.metrics,
	}
	s.store[groupID] = g
	s.metrics.SetGroups(len(s.store))
	log.Debug().Str("group", groupID).Msg("group opened")
	return g
}

func (s *Service) Get(groupID string) (*Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.store[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// Close drops a group and its ledger.
func (s *Service) Close(groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[groupID]; !ok {
		return ErrGroupNotFound
	}
	delete(s.store, groupID)
	s.metrics.SetGroups(len(s.store))
	return nil
}

// IDs returns the open group ids, sorted.
func (s *Service) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.store))
	for id := range s.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Group is one ledger with its directory, plus the audit and metrics sinks.
type Group struct {
	ID string

	dir     *ledger.Directory
	factory *ledger.Factory
	ledger  *ledger.Ledger
	journal Journal
	metrics *metrics.Registry
}

func (g *Group) Directory() *ledger.Directory { return g.dir }
func (g *Group) Ledger() *ledger.Ledger       { return g.ledger }

func (g *Group) Register(ctx context.Context, p ledger.Participant) error {
	p.ID = strings.TrimSpace(p.ID)
	if err := g.dir.Register(p); err != nil {
		g.metrics.OperationFailed("register", err)
		return err
	}
	g.metrics.ParticipantRegistered(g.ID)
	if err := g.journal.RecordParticipant(ctx, g.ID, p); err != nil {
		log.Error().Err(err).Str("group", g.ID).Str("participant", p.ID).Msg("journal: failed to record participant")
	}
	return nil
}

// AddExpense resolves an expense and applies it to the ledger.
func (g *Group) AddExpense(ctx context.Context, kind ledger.Kind, amount decimal.Decimal, payerID string, shares []ledger.Share) (*ledger.Expense, error) {
	e, err := g.factory.CreateExpense(kind, amount, payerID, shares)
	if err != nil {
		g.metrics.OperationFailed("expense", err)
		return nil, err
	}
	if err := g.ledger.ApplyExpense(e); err != nil {
		g.metrics.OperationFailed("expense", err)
		return nil, err
	}
	g.metrics.ExpenseApplied(e)
	log.Info().
		Str("group", g.ID).
		Str("expense_id", e.ID.String()).
		Str("payer", e.PaidBy).
		Str("kind", e.Kind.String()).
		Str("amount", e.Amount.String()).
		Msg("expense applied")
	if err := g.journal.RecordExpense(ctx, g.ID, e); err != nil {
		log.Error().Err(err).Str("group", g.ID).Str("expense_id", e.ID.String()).Msg("journal: failed to record expense")
	}
	return e, nil
}

// Pay applies a direct payment from payer to payee.
func (g *Group) Pay(ctx context.Context, payerID, payeeID string, amount decimal.Decimal) (ledger.Payment, error) {
	p, err := g.ledger.ApplyPayment(payerID, payeeID, amount)
	if err != nil {
		g.metrics.OperationFailed("payment", err)
		return ledger.Payment{}, err
	}
	g.metrics.PaymentApplied(p)
	log.Info().
		Str("group", g.ID).
		Str("payer", p.PaidBy).
		Str("payee", p.PaidTo).
		Str("amount", p.Amount.String()).
		Bool("settled", p.Settled).
		Msg("payment applied")
	if err := g.journal.RecordPayment(ctx, g.ID, p); err != nil {
		log.Error().Err(err).Str("group", g.ID).Str("payment_id", p.ID.String()).Msg("journal: failed to record payment")
	}
	return p, nil
}
