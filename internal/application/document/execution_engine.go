package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/inventory"
	"github.com/warehouse/backend/internal/domain/shared"
)

// ExecutionEngine applies an APPROVED document's line effects to the stock
// ledger exactly once. The whole execution runs in a single transaction: the
// document row is locked first, every touched stock line is locked before it
// is read and written, and the EXECUTED status is saved in the same commit.
// A failure on any line rolls back all of it.
type ExecutionEngine struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewExecutionEngine creates a new ExecutionEngine
func NewExecutionEngine(scope TransactionScope, logger *zap.Logger) *ExecutionEngine {
	return &ExecutionEngine{
		scope:  scope,
		logger: logger,
	}
}

// Execute applies the document's effect to the ledger and marks it EXECUTED.
// A document that is not in APPROVED status is rejected, which makes a
// second execution impossible: the first commit already moved it on.
func (e *ExecutionEngine) Execute(ctx context.Context, documentID, operatorID uuid.UUID) (*DocumentResponse, error) {
	if operatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARGUMENT", "Operator ID cannot be empty")
	}

	var response DocumentResponse
	err := e.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.DocumentRepo().FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		if !doc.Status.CanExecute() {
			return shared.NewDomainError("INVALID_TRANSITION",
				fmt.Sprintf("Cannot execute document in %s status", doc.Status))
		}

		switch doc.EffectDirection() {
		case document.EffectInbound:
			err = e.executeInbound(ctx, repos, doc, operatorID)
		case document.EffectOutbound:
			err = e.executeOutbound(ctx, repos, doc, operatorID)
		case document.EffectTransfer:
			err = e.executeTransfer(ctx, repos, doc, operatorID)
		case document.EffectStocktake:
			err = e.executeStocktake(ctx, repos, doc, operatorID)
		default:
			err = shared.NewDomainError("INVALID_ARGUMENT",
				fmt.Sprintf("Unknown business type %s", doc.BusinessType))
		}
		if err != nil {
			return err
		}

		if err := doc.MarkExecuted(operatorID); err != nil {
			return err
		}
		if err := repos.DocumentRepo().SaveWithLock(ctx, doc); err != nil {
			return err
		}

		response = ToDocumentResponse(doc)
		return nil
	})
	if err != nil {
		e.logger.Warn("execution failed",
			zap.String("document_id", documentID.String()),
			zap.String("operator_id", operatorID.String()),
			zap.Error(err))
		return nil, err
	}

	e.logger.Info("document executed",
		zap.String("order_number", response.OrderNumber),
		zap.String("business_type", response.BusinessType.String()),
		zap.String("operator_id", operatorID.String()))

	return &response, nil
}

// executeInbound adds each line's quantity to the target warehouse's stock
// lines, creating lines on first receipt of a (goods, batch) pair.
func (e *ExecutionEngine) executeInbound(ctx context.Context, repos TransactionalRepositories, doc *document.Document, operatorID uuid.UUID) error {
	for idx := range doc.Lines {
		line := &doc.Lines[idx]
		quantity := line.EffectiveQuantity()

		record, err := repos.LedgerRepo().GetOrCreateForUpdate(ctx, *doc.WarehouseID, line.GoodsID, line.BatchNumber)
		if err != nil {
			return err
		}

		wasEmpty := record.Quantity.IsZero()
		before := record.Quantity
		if err := record.Inbound(quantity, line.UnitPrice); err != nil {
			return err
		}
		if wasEmpty && (line.ProductionDate != nil || line.ExpiryDate != nil) {
			if err := record.SetBatchDates(line.ProductionDate, line.ExpiryDate); err != nil {
				return err
			}
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		if err := e.journal(ctx, repos, record, inventory.MovementInbound, quantity, line.UnitPrice, before, doc, operatorID); err != nil {
			return err
		}
	}
	return nil
}

// executeOutbound removes each line's quantity from the warehouse's stock
// lines. Any line short on available stock aborts the whole execution.
func (e *ExecutionEngine) executeOutbound(ctx context.Context, repos TransactionalRepositories, doc *document.Document, operatorID uuid.UUID) error {
	for idx := range doc.Lines {
		line := &doc.Lines[idx]
		quantity := line.EffectiveQuantity()

		record, err := e.findStockLine(ctx, repos, *doc.WarehouseID, line)
		if err != nil {
			return err
		}

		before := record.Quantity
		if err := record.Outbound(quantity); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		if err := e.journal(ctx, repos, record, inventory.MovementOutbound, quantity.Neg(), record.AverageCost, before, doc, operatorID); err != nil {
			return err
		}
	}
	return nil
}

// executeTransfer moves each line from the source to the target warehouse as
// one unit: release the reservation taken at approval, debit the source,
// credit the target at the source's latest cost. The two stock lines are
// locked in a fixed ascending key order so two opposing transfers cannot
// deadlock.
func (e *ExecutionEngine) executeTransfer(ctx context.Context, repos TransactionalRepositories, doc *document.Document, operatorID uuid.UUID) error {
	if err := doc.ValidateTransfer(); err != nil {
		return err
	}

	for idx := range doc.Lines {
		line := &doc.Lines[idx]
		quantity := line.EffectiveQuantity()

		source, target, err := e.lockTransferPair(ctx, repos, doc, line)
		if err != nil {
			return err
		}

		if err := source.UnlockStock(line.PlannedQuantity); err != nil {
			return err
		}
		transferCost := source.LatestCost

		sourceBefore := source.Quantity
		if err := source.Outbound(quantity); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, source); err != nil {
			return err
		}
		if err := e.journal(ctx, repos, source, inventory.MovementOutbound, quantity.Neg(), transferCost, sourceBefore, doc, operatorID); err != nil {
			return err
		}

		targetBefore := target.Quantity
		if err := target.Inbound(quantity, transferCost); err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, target); err != nil {
			return err
		}
		if err := e.journal(ctx, repos, target, inventory.MovementInbound, quantity, transferCost, targetBefore, doc, operatorID); err != nil {
			return err
		}
	}
	return nil
}

// executeStocktake reconciles each counted line to its actual quantity at the
// stock line's existing average cost. Uncounted lines and lines counted at
// their book quantity are left alone.
func (e *ExecutionEngine) executeStocktake(ctx context.Context, repos TransactionalRepositories, doc *document.Document, operatorID uuid.UUID) error {
	for idx := range doc.Lines {
		line := &doc.Lines[idx]
		if !line.IsCounted() {
			continue
		}
		if line.DifferenceQuantity == nil || line.DifferenceQuantity.IsZero() {
			continue
		}

		record, err := e.findStockLine(ctx, repos, *doc.WarehouseID, line)
		if err != nil {
			return err
		}

		before := record.Quantity
		diff, err := record.AdjustTo(*line.ActualQuantity)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().SaveWithLock(ctx, record); err != nil {
			return err
		}

		if !diff.IsZero() {
			if err := e.journal(ctx, repos, record, inventory.MovementAdjustment, diff, record.AverageCost, before, doc, operatorID); err != nil {
				return err
			}
		}

		line.Adjusted = true
	}
	return nil
}

// lockTransferPair acquires exclusive locks on a line's source and target
// stock lines in ascending key order. The source must already exist; the
// target is created empty when the goods have never been stocked there.
func (e *ExecutionEngine) lockTransferPair(ctx context.Context, repos TransactionalRepositories, doc *document.Document, line *document.DocumentLine) (source, target *inventory.LedgerRecord, err error) {
	sourceKey := ledgerKey(*doc.SourceWarehouseID, line.GoodsID, line.BatchNumber)
	targetKey := ledgerKey(*doc.TargetWarehouseID, line.GoodsID, line.BatchNumber)

	lockSource := func() error {
		source, err = e.findStockLine(ctx, repos, *doc.SourceWarehouseID, line)
		return err
	}
	lockTarget := func() error {
		target, err = repos.LedgerRepo().GetOrCreateForUpdate(ctx, *doc.TargetWarehouseID, line.GoodsID, line.BatchNumber)
		return err
	}

	if strings.Compare(sourceKey, targetKey) <= 0 {
		if err = lockSource(); err != nil {
			return nil, nil, err
		}
		if err = lockTarget(); err != nil {
			return nil, nil, err
		}
	} else {
		if err = lockTarget(); err != nil {
			return nil, nil, err
		}
		if err = lockSource(); err != nil {
			return nil, nil, err
		}
	}
	return source, target, nil
}

// findStockLine locks and returns an existing stock line, mapping a missing
// line to an insufficient stock failure: nothing was ever received there.
func (e *ExecutionEngine) findStockLine(ctx context.Context, repos TransactionalRepositories, warehouseID uuid.UUID, line *document.DocumentLine) (*inventory.LedgerRecord, error) {
	record, err := repos.LedgerRepo().FindByKeyForUpdate(ctx, warehouseID, line.GoodsID, line.BatchNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || shared.IsCode(err, "NOT_FOUND") {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("No stock line for goods %s in warehouse", line.GoodsName))
		}
		return nil, err
	}
	return record, nil
}

// journal appends a movement entry for a ledger mutation
func (e *ExecutionEngine) journal(ctx context.Context, repos TransactionalRepositories, record *inventory.LedgerRecord, movementType inventory.MovementType, quantity, unitCost, before decimal.Decimal, doc *document.Document, operatorID uuid.UUID) error {
	movement, err := inventory.NewStockMovement(record, movementType, quantity, unitCost, before)
	if err != nil {
		return err
	}
	movement.WithDocument(doc.ID, doc.OrderNumber, operatorID)
	return repos.MovementRepo().Create(ctx, movement)
}

func ledgerKey(warehouseID, goodsID uuid.UUID, batchNumber string) string {
	return warehouseID.String() + "/" + goodsID.String() + "/" + batchNumber
}
