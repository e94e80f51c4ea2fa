package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Load(ctx context.Context, kind Kind) (Collection, error)
	Save(ctx context.Context, c Collection) error
}

// Service is the single writer for both collections: it loads, applies an
// engine operation and saves, one call at a time.
type Service struct {
	repo   Repository
	engine *Engine
	mu     sync.Mutex
}

func NewService(repo Repository, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine()
	}

	return &Service{repo: repo, engine: engine}
}

// Engine exposes the engine so collaborators can mint ids and read the clock.
func (s *Service) Engine() *Engine {
	return s.engine
}

func (s *Service) Collection(ctx context.Context, kind Kind) (Collection, error) {
	if !kind.Valid() {
		return Collection{}, invalid("kind", "unknown ledger kind "+string(kind))
	}

	c, err := s.repo.Load(ctx, kind)
	if err != nil {
		return Collection{}, fmt.Errorf("load %s ledger: %w", kind, err)
	}

	c.Kind = kind

	return c, nil
}

func (s *Service) List(ctx context.Context, kind Kind) ([]Entity, error) {
	c, err := s.Collection(ctx, kind)
	if err != nil {
		return nil, err
	}

	return c.Entities, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id string) (Entity, error) {
	c, err := s.Collection(ctx, kind)
	if err != nil {
		return Entity{}, err
	}

	return c.Get(id)
}

func (s *Service) Create(ctx context.Context, kind Kind, identity EntityParams, first LineItemParams) (Entity, error) {
	var created Entity

	_, err := s.mutate(ctx, kind, func(c Collection) (Collection, error) {
		out, e, err := s.engine.AddEntity(c, identity, first)
		created = e

		return out, err
	})
	if err != nil {
		return Entity{}, err
	}

	return created, nil
}

// Patch rewrites an entity's identity from its current state. The overlay runs
// under the same lock as every other write so concurrent patches compose.
func (s *Service) Patch(ctx context.Context, kind Kind, id string, overlay func(Entity) EntityParams) (Entity, error) {
	return s.mutateEntity(ctx, kind, id, func(c Collection) (Collection, error) {
		current, err := c.Get(id)
		if err != nil {
			return Collection{}, err
		}

		return s.engine.UpdateEntity(c, id, overlay(current))
	})
}

func (s *Service) Delete(ctx context.Context, kind Kind, id string) error {
	_, err := s.mutate(ctx, kind, func(c Collection) (Collection, error) {
		return s.engine.DeleteEntity(c, id)
	})

	return err
}

func (s *Service) AddLineItem(ctx context.Context, kind Kind, id string, params LineItemParams) (Entity, error) {
	return s.mutateEntity(ctx, kind, id, func(c Collection) (Collection, error) {
		return s.engine.AddLineItem(c, id, params)
	})
}

func (s *Service) DeleteLineItem(ctx context.Context, kind Kind, id, itemID string) (Entity, error) {
	return s.mutateEntity(ctx, kind, id, func(c Collection) (Collection, error) {
		return s.engine.DeleteLineItem(c, id, itemID)
	})
}

func (s *Service) AddPayment(ctx context.Context, kind Kind, id, itemID string, params PaymentParams) (Entity, error) {
	return s.mutateEntity(ctx, kind, id, func(c Collection) (Collection, error) {
		return s.engine.AddPayment(c, id, itemID, params)
	})
}

func (s *Service) MarkPaid(ctx context.Context, kind Kind, id, itemID string) (Entity, error) {
	return s.mutateEntity(ctx, kind, id, func(c Collection) (Collection, error) {
		return s.engine.MarkLineItemPaid(c, id, itemID)
	})
}

// Merge reconciles an imported or restored collection into the stored one of
// the same kind.
func (s *Service) Merge(ctx context.Context, incoming Collection) (MergeReport, error) {
	var report MergeReport

	_, err := s.mutate(ctx, incoming.Kind, func(c Collection) (Collection, error) {
		var out Collection
		out, report = s.engine.Merge(c, incoming)

		return out, nil
	})
	if err != nil {
		return MergeReport{}, err
	}

	slog.Info("merged ledger",
		"kind", incoming.Kind,
		"matched", report.Matched,
		"added", report.Added,
		"line_items", report.LineItems,
		"duplicates", report.Duplicates,
	)

	return report, nil
}

func (s *Service) mutateEntity(ctx context.Context, kind Kind, id string, fn func(Collection) (Collection, error)) (Entity, error) {
	c, err := s.mutate(ctx, kind, fn)
	if err != nil {
		return Entity{}, err
	}

	return c.Get(id)
}

func (s *Service) mutate(ctx context.Context, kind Kind, fn func(Collection) (Collection, error)) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Collection(ctx, kind)
	if err != nil {
		return Collection{}, err
	}

	out, err := fn(c)
	if err != nil {
		return Collection{}, err
	}

	if err := s.repo.Save(ctx, out); err != nil {
		return Collection{}, fmt.Errorf("save %s ledger: %w", kind, err)
	}

	return out, nil
}
