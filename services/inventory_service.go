package services

import (
	"context"
	"fmt"
	"time"

	"salonpro-suite/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewInventoryService(db *gorm.DB, log *zap.Logger) *InventoryService {
	return &InventoryService{db: db, log: log}
}

type ProcurementItemInput struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

type ProcurementInput struct {
	SalonID    uuid.UUID              `json:"-"`
	UserID     uuid.UUID              `json:"-"`
	Supplier   string                 `json:"supplier" binding:"required"`
	Reference  string                 `json:"reference"`
	ReceivedAt *time.Time             `json:"receivedAt"`
	Notes      string                 `json:"notes"`
	Items      []ProcurementItemInput `json:"items" binding:"required,min=1,dive"`
}

// Receive records a procurement and adds its quantities to stock.
func (s *InventoryService) Receive(ctx context.Context, in ProcurementInput) (*models.Procurement, error) {
	receivedAt := time.Now()
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}

	procurement := models.Procurement{
		Base:            models.Base{ID: uuid.New()},
		SalonID:         in.SalonID,
		CreatedByUserID: in.UserID,
		Supplier:        in.Supplier,
		Reference:       in.Reference,
		ReceivedAt:      receivedAt,
		Notes:           in.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, item := range in.Items {
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be positive", ErrValidation)
			}
			if item.UnitCost.IsNegative() {
				return fmt.Errorf("%w: unit cost must not be negative", ErrValidation)
			}
			var product models.Product
			if err := tx.Where("salon_id = ? AND id = ?", in.SalonID, item.ProductID).
				First(&product).Error; err != nil {
				return notFound(err, "product "+item.ProductID.String())
			}

			lineTotal := item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
			total = total.Add(lineTotal)
			procurement.Items = append(procurement.Items, models.ProcurementItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitCost:    item.UnitCost,
				TotalCost:   lineTotal,
			})

			if _, err := s.move(tx, in.SalonID, product.ID, item.Quantity, models.MovementProcurement, &procurement.ID, "procurement from "+in.Supplier); err != nil {
				return err
			}
			if item.UnitCost.IsPositive() {
				if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).
					Update("cost", item.UnitCost).Error; err != nil {
					return err
				}
			}
		}
		procurement.TotalCost = total
		return tx.Create(&procurement).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("procurement received",
		zap.String("procurement_id", procurement.ID.String()),
		zap.String("supplier", procurement.Supplier),
		zap.Int("lines", len(procurement.Items)))
	return &procurement, nil
}

func (s *InventoryService) ListProcurements(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.Procurement, error) {
	var list []models.Procurement
	err := s.db.WithContext(ctx).Preload("Items").
		Where("salon_id = ? AND received_at BETWEEN ? AND ?", salonID, from, to).
		Order("received_at DESC").Find(&list).Error
	return list, err
}

func (s *InventoryService) GetProcurement(ctx context.Context, salonID, id uuid.UUID) (*models.Procurement, error) {
	var p models.Procurement
	if err := s.db.WithContext(ctx).Preload("Items").
		Where("salon_id = ? AND id = ?", salonID, id).First(&p).Error; err != nil {
		return nil, notFound(err, "procurement")
	}
	return &p, nil
}

// AdjustStock applies a manual signed stock correction.
func (s *InventoryService) AdjustStock(ctx context.Context, salonID, productID uuid.UUID, delta int, reason string) (*models.Product, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: quantity must not be zero", ErrValidation)
	}
	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.move(tx, salonID, productID, delta, models.MovementAdjustment, nil, reason); err != nil {
			return err
		}
		return tx.Where("id = ?", productID).First(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// LowStock lists active products at or below their reorder level.
func (s *InventoryService) LowStock(ctx context.Context, salonID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_active = ? AND stock <= reorder_level", salonID, true).
		Order("stock ASC").Find(&products).Error
	return products, err
}

func (s *InventoryService) Movements(ctx context.Context, salonID, productID uuid.UUID, limit int) ([]models.StockMovement, error) {
	var list []models.StockMovement
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND product_id = ?", salonID, productID).
		Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

// move changes stock by delta and records the movement. Withdrawals are
// guarded in the UPDATE so stock never goes negative.
func (s *InventoryService) move(tx *gorm.DB, salonID, productID uuid.UUID, delta int, kind string, reference *uuid.UUID, reason string) (int, error) {
	q := tx.Model(&models.Product{}).Where("id = ? AND salon_id = ?", productID, salonID)
	if delta < 0 {
		q = q.Where("stock >= ?", -delta)
	}
	res := q.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var product models.Product
		if err := tx.Where("id = ? AND salon_id = ?", productID, salonID).First(&product).Error; err != nil {
			return 0, notFound(err, "product")
		}
		return 0, fmt.Errorf("%w: %s has %d in stock, %d requested", ErrInsufficientStock, product.Name, product.Stock, -delta)
	}

	var stock int
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).
		Select("stock").Scan(&stock).Error; err != nil {
		return 0, err
	}

	movement := models.StockMovement{
		SalonID:    salonID,
		ProductID:  productID,
		Kind:       kind,
		Quantity:   delta,
		StockAfter: stock,
		Reference:  reference,
		Reason:     reason,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return 0, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return stock, nil
}
