package mongo

import (
	"context"
	"fmt"

	apperrors "auravindex/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc receives a context that carries the session when one is active.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// NewManager returns a session-backed manager when transactions are enabled
// and a direct executor otherwise (standalone servers reject transactions).
func NewManager(client *mongo.Client, transactions bool) TransactionManager {
	if !transactions {
		return DirectExecutor{}
	}
	return NewTransactionManager(client)
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// DirectExecutor runs the function without a session.
type DirectExecutor struct{}

func (DirectExecutor) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	return fn(ctx)
}

// InSession reports whether ctx already carries a Mongo session.
func InSession(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}
