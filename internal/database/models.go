package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Price struct {
	Key         string         `json:"key"`
	Value       pgtype.Numeric `json:"value"`
	Description pgtype.Text    `json:"description"`
}

type Customer struct {
	ID          uuid.UUID   `json:"id"`
	Brand       string      `json:"brand"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Email       pgtype.Text `json:"email"`
	Nationality pgtype.Text `json:"nationality"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Order struct {
	ID                 uuid.UUID      `json:"id"`
	Brand              string         `json:"brand"`
	OrderType          string         `json:"order_type"`
	CheckoutStatus     string         `json:"checkout_status"`
	ProductionStage    pgtype.Text    `json:"production_stage"`
	CustomerID         uuid.UUID      `json:"customer_id"`
	OrderDate          time.Time      `json:"order_date"`
	DeliveryDate       pgtype.Date    `json:"delivery_date"`
	HomeDelivery       bool           `json:"home_delivery"`
	Express            bool           `json:"express"`
	StitchingBase      pgtype.Numeric `json:"stitching_base"`
	FabricCharge       pgtype.Numeric `json:"fabric_charge"`
	StitchingCharge    pgtype.Numeric `json:"stitching_charge"`
	StyleCharge        pgtype.Numeric `json:"style_charge"`
	DeliveryCharge     pgtype.Numeric `json:"delivery_charge"`
	ExpressCharge      pgtype.Numeric `json:"express_charge"`
	ShelfCharge        pgtype.Numeric `json:"shelf_charge"`
	DiscountType       pgtype.Text    `json:"discount_type"`
	DiscountPercentage pgtype.Numeric `json:"discount_percentage"`
	DiscountValue      pgtype.Numeric `json:"discount_value"`
	PaymentType        pgtype.Text    `json:"payment_type"`
	Paid               pgtype.Numeric `json:"paid"`
	OrderTotal         pgtype.Numeric `json:"order_total"`
	InvoiceNumber      pgtype.Int4    `json:"invoice_number"`
	Notes              pgtype.Text    `json:"notes"`
	CreatedBy          pgtype.UUID    `json:"created_by"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type Garment struct {
	ID                   uuid.UUID      `json:"id"`
	OrderID              uuid.UUID      `json:"order_id"`
	Position             int32          `json:"position"`
	FabricSource         string         `json:"fabric_source"`
	FabricID             pgtype.UUID    `json:"fabric_id"`
	FabricLength         pgtype.Numeric `json:"fabric_length"`
	Style                string         `json:"style"`
	Lines                int32          `json:"lines"`
	CollarType           pgtype.Text    `json:"collar_type"`
	CollarButton         pgtype.Text    `json:"collar_button"`
	JabzourType          pgtype.Text    `json:"jabzour_type"`
	JabzourThickness     pgtype.Text    `json:"jabzour_thickness"`
	FrontPocketType      pgtype.Text    `json:"front_pocket_type"`
	FrontPocketThickness pgtype.Text    `json:"front_pocket_thickness"`
	CuffType             pgtype.Text    `json:"cuff_type"`
	CuffThickness        pgtype.Text    `json:"cuff_thickness"`
	Wallet               bool           `json:"wallet"`
	PenHolder            bool           `json:"pen_holder"`
	HomeDelivery         bool           `json:"home_delivery"`
	Express              bool           `json:"express"`
	Quantity             int32          `json:"quantity"`
	PieceStage           string         `json:"piece_stage"`
	FabricPrice          pgtype.Numeric `json:"fabric_price"`
	StitchingPrice       pgtype.Numeric `json:"stitching_price"`
	StylePrice           pgtype.Numeric `json:"style_price"`
	CreatedAt            time.Time      `json:"created_at"`
}

type ShelfItem struct {
	ID          uuid.UUID      `json:"id"`
	Brand       string         `json:"brand"`
	ProductType string         `json:"product_type"`
	BrandName   string         `json:"brand_name"`
	Stock       int32          `json:"stock"`
	UnitPrice   pgtype.Numeric `json:"unit_price"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type OrderShelfLine struct {
	ID          uuid.UUID      `json:"id"`
	OrderID     uuid.UUID      `json:"order_id"`
	ShelfItemID uuid.UUID      `json:"shelf_item_id"`
	ProductType string         `json:"product_type"`
	BrandName   string         `json:"brand_name"`
	Quantity    int32          `json:"quantity"`
	UnitPrice   pgtype.Numeric `json:"unit_price"`
}

type Fabric struct {
	ID            uuid.UUID      `json:"id"`
	Brand         string         `json:"brand"`
	Name          string         `json:"name"`
	Color         pgtype.Text    `json:"color"`
	StockLength   pgtype.Numeric `json:"stock_length"`
	PricePerMeter pgtype.Numeric `json:"price_per_meter"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Employee struct {
	ID    uuid.UUID   `json:"id"`
	Brand string      `json:"brand"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
	Phone pgtype.Text `json:"phone"`
}

type Campaign struct {
	ID       uuid.UUID          `json:"id"`
	Brand    string             `json:"brand"`
	Name     string             `json:"name"`
	Active   bool               `json:"active"`
	StartsAt pgtype.Timestamptz `json:"starts_at"`
	EndsAt   pgtype.Timestamptz `json:"ends_at"`
}

type Style struct {
	ID       uuid.UUID   `json:"id"`
	Brand    string      `json:"brand"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	ImageURL pgtype.Text `json:"image_url"`
}
