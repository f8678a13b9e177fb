package reconcile

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/errors"
	"bizpulse/pkg/contracts/domain"
)

func order(id, customerID, productID string) domain.Order {
	return domain.Order{
		OrderID:    id,
		OrderDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		CustomerID: customerID,
		ProductID:  productID,
		Qty:        1,
		UnitPrice:  100,
	}
}

func TestReconciler_Join(t *testing.T) {
	r := NewReconciler(slog.Default())

	orders := []domain.Order{
		order("1", "C1", "P1"),
		order("2", "C1", "P2"), // orphan product
		order("3", "C9", "P1"), // orphan customer
	}
	products := []domain.Product{
		{ProductID: "P1", Name: "Widget", Category: "Electronics", Supplier: "Apex", Cost: 50, TaxRate: 0.18},
	}
	customers := []domain.Customer{
		{CustomerID: "C1", Name: "Ada", City: "Delhi", Region: "North", Segment: "Consumer"},
	}
	returns := []domain.ReturnRecord{
		{OrderID: "1"},
		{OrderID: "1"},        // duplicate return row
		{OrderID: "missing"},  // return for unknown order
	}

	result, err := r.Join(context.Background(), orders, products, customers, returns)
	require.NoError(t, err)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, 1, result.OrphanProducts)
	assert.Equal(t, 1, result.OrphanCustomers)

	joined := result.Rows[0]
	assert.True(t, joined.HasProduct)
	assert.True(t, joined.HasCustomer)
	assert.Equal(t, "Widget", joined.ProductName)
	assert.Equal(t, "Electronics", joined.Category)
	assert.Equal(t, 0.18, joined.TaxRate)
	assert.Equal(t, "North", joined.Region)
	assert.True(t, joined.IsReturned)

	orphanProduct := result.Rows[1]
	assert.False(t, orphanProduct.HasProduct)
	assert.Empty(t, orphanProduct.Category)
	assert.True(t, orphanProduct.HasCustomer)
	assert.False(t, orphanProduct.IsReturned)

	orphanCustomer := result.Rows[2]
	assert.False(t, orphanCustomer.HasCustomer)
	assert.Empty(t, orphanCustomer.Region)

	// A return for an unknown order must not create a fact row.
	for _, row := range result.Rows {
		assert.NotEqual(t, "missing", row.OrderID)
	}
}

func TestReconciler_DuplicateProductKey(t *testing.T) {
	r := NewReconciler(slog.Default())

	products := []domain.Product{
		{ProductID: "P1", Name: "A"},
		{ProductID: "P1", Name: "B"},
	}

	_, err := r.Join(context.Background(), []domain.Order{order("1", "C1", "P1")}, products, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeIntegrity))
	assert.Contains(t, err.Error(), "P1")
}

func TestReconciler_DuplicateCustomerKey(t *testing.T) {
	r := NewReconciler(slog.Default())

	customers := []domain.Customer{
		{CustomerID: "C1"},
		{CustomerID: "C1"},
	}

	_, err := r.Join(context.Background(), []domain.Order{order("1", "C1", "P1")}, nil, customers, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeIntegrity))
}

func TestReconciler_EmptyInputs(t *testing.T) {
	r := NewReconciler(slog.Default())

	result, err := r.Join(context.Background(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Zero(t, result.OrphanProducts)
	assert.Zero(t, result.OrphanCustomers)
}
