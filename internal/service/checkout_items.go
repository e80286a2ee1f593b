package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/lifecycle"
	"github.com/tailor-pos/api/internal/pricing"
)

// GarmentInput is a garment line as entered on the items step.
type GarmentInput struct {
	FabricSource         string
	FabricID             *uuid.UUID
	FabricLength         string
	FabricAmount         string // optional; derived from the fabric price when empty
	Style                string
	Lines                int
	CollarType           string
	CollarButton         string
	JabzourType          string
	JabzourThickness     string
	FrontPocketType      string
	FrontPocketThickness string
	CuffType             string
	CuffThickness        string
	Wallet               bool
	PenHolder            bool
	HomeDelivery         bool
	Express              bool
	Quantity             int32
}

// ShelfInput selects a quantity of one shelf item.
type ShelfInput struct {
	ShelfItemID uuid.UUID
	Quantity    int32
}

func (o *Orchestrator) itemsStep(c *Checkout) error {
	if err := requireCustomer(c); err != nil {
		return err
	}
	if c.Step < StepItems {
		return ErrCustomerRequired
	}
	return nil
}

// AddGarment appends a garment line to a work order.
func (o *Orchestrator) AddGarment(ctx context.Context, brand string, id uuid.UUID, in GarmentInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.garmentStep(c); err != nil {
			return err
		}
		line, err := o.buildGarment(ctx, c, in, -1)
		if err != nil {
			return err
		}
		c.Garments = append(c.Garments, line)
		return nil
	})
}

// UpdateGarment replaces the garment line at index.
func (o *Orchestrator) UpdateGarment(ctx context.Context, brand string, id uuid.UUID, index int, in GarmentInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.garmentStep(c); err != nil {
			return err
		}
		if index < 0 || index >= len(c.Garments) {
			return ErrLineIndex
		}
		line, err := o.buildGarment(ctx, c, in, index)
		if err != nil {
			return err
		}
		line.PieceStage = c.Garments[index].PieceStage
		c.Garments[index] = line
		return nil
	})
}

// RemoveGarment drops the garment line at index.
func (o *Orchestrator) RemoveGarment(ctx context.Context, brand string, id uuid.UUID, index int) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.garmentStep(c); err != nil {
			return err
		}
		if index < 0 || index >= len(c.Garments) {
			return ErrLineIndex
		}
		c.Garments = append(c.Garments[:index], c.Garments[index+1:]...)
		return nil
	})
}

func (o *Orchestrator) garmentStep(c *Checkout) error {
	if c.OrderType != enum.OrderTypeWork {
		return ErrWrongOrderType
	}
	return o.itemsStep(c)
}

// buildGarment validates in and resolves its fabric charge. skip is the index
// of the line being replaced, or -1.
func (o *Orchestrator) buildGarment(ctx context.Context, c *Checkout, in GarmentInput, skip int) (GarmentLine, error) {
	line := GarmentLine{
		FabricSource:         strings.ToUpper(strings.TrimSpace(in.FabricSource)),
		Style:                strings.TrimSpace(in.Style),
		Lines:                in.Lines,
		CollarType:           in.CollarType,
		CollarButton:         in.CollarButton,
		JabzourType:          in.JabzourType,
		JabzourThickness:     in.JabzourThickness,
		FrontPocketType:      in.FrontPocketType,
		FrontPocketThickness: in.FrontPocketThickness,
		CuffType:             in.CuffType,
		CuffThickness:        in.CuffThickness,
		Wallet:               in.Wallet,
		PenHolder:            in.PenHolder,
		HomeDelivery:         in.HomeDelivery,
		Express:              in.Express,
		Quantity:             in.Quantity,
		PieceStage:           lifecycle.PieceAtShop,
	}
	if line.Style == "" {
		line.Style = enum.StyleKuwaiti
	}
	if line.Lines == 0 {
		line.Lines = 1
	}
	if line.Lines != 1 && line.Lines != 2 {
		return GarmentLine{}, invalid("lines", "must be 1 or 2")
	}
	if line.Quantity < 1 {
		return GarmentLine{}, invalid("quantity", "must be at least 1")
	}

	length, err := parseAmount("fabric_length", in.FabricLength)
	if err != nil {
		return GarmentLine{}, err
	}
	line.FabricLength = length

	var pricePerMeter decimal.Decimal
	switch line.FabricSource {
	case enum.FabricSourceInternal:
		if in.FabricID == nil {
			return GarmentLine{}, invalid("fabric_id", "is required for shop fabric")
		}
		fabricID := *in.FabricID
		line.FabricID = &fabricID

		fabric, err := o.cache.Fabric(ctx, o.store, c.Brand, fabricID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return GarmentLine{}, invalid("fabric_id", "fabric not found")
			}
			return GarmentLine{}, fmt.Errorf("load fabric: %w", err)
		}
		stock := numericToDecimal(fabric.StockLength)
		needed := length
		for i, g := range c.Garments {
			if i != skip && g.internal() && g.FabricID != nil && *g.FabricID == fabricID {
				needed = needed.Add(g.FabricLength)
			}
		}
		if needed.GreaterThan(stock) {
			return GarmentLine{}, invalid("fabric_length", "only %s m of %s in stock", stock.String(), fabric.Name)
		}
		pricePerMeter = numericToDecimal(fabric.PricePerMeter)
	case enum.FabricSourceExternal:
	default:
		return GarmentLine{}, invalid("fabric_source", "must be %s or %s", enum.FabricSourceInternal, enum.FabricSourceExternal)
	}

	if strings.TrimSpace(in.FabricAmount) != "" {
		amount, err := parseAmount("fabric_amount", in.FabricAmount)
		if err != nil {
			return GarmentLine{}, err
		}
		line.FabricAmount = amount
	} else {
		line.FabricAmount = pricing.FabricCharge(line.internal(), length, pricePerMeter)
	}
	return line, nil
}

// AddShelfLine appends a shelf item. A duplicate product type and brand or a
// quantity above the available stock is rejected.
func (o *Orchestrator) AddShelfLine(ctx context.Context, brand string, id uuid.UUID, in ShelfInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.itemsStep(c); err != nil {
			return err
		}
		line, err := o.buildShelfLine(ctx, c, in, -1)
		if err != nil {
			return err
		}
		c.Shelf = append(c.Shelf, line)
		return nil
	})
}

// UpdateShelfLine replaces the shelf line at index.
func (o *Orchestrator) UpdateShelfLine(ctx context.Context, brand string, id uuid.UUID, index int, in ShelfInput) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.itemsStep(c); err != nil {
			return err
		}
		if index < 0 || index >= len(c.Shelf) {
			return ErrLineIndex
		}
		line, err := o.buildShelfLine(ctx, c, in, index)
		if err != nil {
			return err
		}
		c.Shelf[index] = line
		return nil
	})
}

// RemoveShelfLine drops the shelf line at index.
func (o *Orchestrator) RemoveShelfLine(ctx context.Context, brand string, id uuid.UUID, index int) (*View, error) {
	return o.mutate(ctx, brand, id, func(c *Checkout, _ pricing.PriceTable) error {
		if err := o.itemsStep(c); err != nil {
			return err
		}
		if index < 0 || index >= len(c.Shelf) {
			return ErrLineIndex
		}
		c.Shelf = append(c.Shelf[:index], c.Shelf[index+1:]...)
		return nil
	})
}

func (o *Orchestrator) buildShelfLine(ctx context.Context, c *Checkout, in ShelfInput, skip int) (ShelfLine, error) {
	if in.Quantity < 1 {
		return ShelfLine{}, invalid("quantity", "must be at least 1")
	}
	item, err := o.cache.ShelfItem(ctx, o.store, c.Brand, in.ShelfItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShelfLine{}, invalid("shelf_item_id", "item not found")
		}
		return ShelfLine{}, fmt.Errorf("load shelf item: %w", err)
	}
	for i, l := range c.Shelf {
		if i != skip && l.ProductType == item.ProductType && l.BrandName == item.BrandName {
			return ShelfLine{}, invalid("shelf_item_id", "%s %s is already on this order", item.BrandName, item.ProductType)
		}
	}
	if in.Quantity > item.Stock {
		return ShelfLine{}, invalid("quantity", "only %d of %s %s in stock", item.Stock, item.BrandName, item.ProductType)
	}
	return ShelfLine{
		ShelfItemID: item.ID,
		ProductType: item.ProductType,
		BrandName:   item.BrandName,
		Quantity:    in.Quantity,
		UnitPrice:   numericToDecimal(item.UnitPrice),
		Stock:       int(item.Stock),
	}, nil
}
