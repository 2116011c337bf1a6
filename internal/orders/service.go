package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/enums"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

// Service exposes order reads and the admin status lifecycle.
type Service interface {
	// Get returns the order only when the caller owns it or is an admin.
	Get(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus advances the order through its lifecycle. Transitions
	// outside the state machine, and races that change the status underneath
	// the caller, both surface as state conflicts.
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, logg *logger.Logger) Service {
	if repo == nil {
		panic("orders: repository is required")
	}
	if logg == nil {
		panic("orders: logger is required")
	}
	return &service{repo: repo, logg: logg}
}

func (s *service) Get(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != callerID {
		// Hide existence from non-owners.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next),
		)
	}

	moved, err := s.repo.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	ctx = s.logg.WithOrderID(ctx, id.String())
	s.logg.Info(ctx, fmt.Sprintf("order status %s -> %s", order.Status, next))

	order.Status = next
	return order, nil
}
