package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	CheckoutStatusDraft     = "draft"
	CheckoutStatusConfirmed = "confirmed"
	CheckoutStatusCancelled = "cancelled"
)

const (
	OrderTypeWork  = "WORK"
	OrderTypeSales = "SALES"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	DiscountTypeFlat     = "flat"
	DiscountTypeReferral = "referral"
	DiscountTypeLoyalty  = "loyalty"
	DiscountTypeByValue  = "by_value"
)

const (
	PaymentTypeCash        = "cash"
	PaymentTypeKnet        = "knet"
	PaymentTypeLinkPay     = "link_payment"
	PaymentTypeInstallment = "installments"
)

const (
	FabricSourceInternal = "IN"
	FabricSourceExternal = "OUT"
)

const (
	StyleKuwaiti = "kuwaiti"
	StyleDesign  = "design"
)

const (
	EventInvoiceReady = "invoice.ready"
	EventOrderStage   = "order.stage_changed"
)

const (
	RoleOwner   = "OWNER"
	RoleManager = "MANAGER"
	RoleCashier = "CASHIER"
	RoleTailor  = "TAILOR"
)
