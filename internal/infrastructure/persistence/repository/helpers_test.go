package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/database"
)

var baseTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	logger := zap.NewNop()
	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations(database.Migrations()))
	return db.DB
}

func item(id string, qty, price int64) entity.LineItem {
	q := decimal.NewFromInt(qty)
	p := decimal.NewFromInt(price)
	return entity.LineItem{
		ID:          id,
		Description: "item " + id,
		Quantity:    q,
		UnitPrice:   p,
		Total:       q.Mul(p),
	}
}

func newRequisition(id, txID string, created time.Time, items ...entity.LineItem) *entity.Requisition {
	if len(items) == 0 {
		items = []entity.LineItem{item(id+"-a", 2, 100), item(id+"-b", 1, 50)}
	}
	return &entity.Requisition{
		ID:              id,
		TransactionID:   txID,
		OrganizationID:  "org-1",
		RequestedBy:     "emp-1",
		RequestedByName: "Thandi",
		Department:      "Ops",
		Items:           items,
		TotalAmount:     entity.SumItems(items),
		Currency:        "ZAR",
		Urgency:         "NORMAL",
		Status:          entity.RequisitionStatusPendingHOD,
		HODStatus:       entity.HODStatusPending,
		FinanceStatus:   entity.FinanceStatusNotStarted,
		History: []entity.HistoryEntry{{
			Action:    entity.ActionPRCreated,
			ActorID:   "emp-1",
			ActorName: "Thandi",
			Timestamp: created,
		}},
		Version:   1,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func seedRequisition(t *testing.T, repo *RequisitionRepository, id string) *entity.Requisition {
	t.Helper()
	req := newRequisition(id, "PR-20250314-"+id, baseTime)
	require.NoError(t, repo.Create(context.Background(), req))
	return req
}
