package postgres_test

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/repository/postgres"
	"github.com/pratik-mahalle/tasknest/internal/testutil"
)

func TestPaymentEventRepository_MarkProcessed(t *testing.T) {
	repo := postgres.NewPaymentEventRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	evt := account.PaymentConfirmation{
		AccountID:        "acc-1",
		PlanType:         account.TierPro,
		PaymentReference: "cs_test_123",
	}

	first, err := repo.MarkProcessed(ctx, evt)
	if err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if !first {
		t.Error("first delivery must be new")
	}

	again, err := repo.MarkProcessed(ctx, evt)
	if err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if again {
		t.Error("redelivery must be reported as duplicate")
	}

	if err := repo.Release(ctx, evt.PaymentReference); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	released, err := repo.MarkProcessed(ctx, evt)
	if err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	if !released {
		t.Error("a released reference must be processed again")
	}
}
