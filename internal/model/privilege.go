package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Record Sale"
}

const (
	PrivProductView    = "product:view"
	PrivProductCreate  = "product:create"
	PrivProductUpdate  = "product:update"
	PrivProductDelete  = "product:delete"
	PrivProductRestock = "product:restock"
	PrivSaleCreate     = "sale:create"
	PrivSaleView       = "sale:view"
	PrivReportPnl      = "report:pnl"
	PrivReportRadar    = "report:radar"
	PrivDashboardView  = "dashboard:view"
	PrivUserView       = "user:view"
	PrivUserApprove    = "user:approve"
	PrivUserUpdate     = "user:update"
	PrivUserDelete     = "user:delete"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Inventory
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Add Product"},
	{Code: PrivProductUpdate, Name: "Edit Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivProductRestock, Name: "Restock Product"},
	// Billing
	{Code: PrivSaleCreate, Name: "Checkout Sale"},
	{Code: PrivSaleView, Name: "View Sales"},
	// Reports
	{Code: PrivReportPnl, Name: "View Daily PNL"},
	{Code: PrivReportRadar, Name: "View Restock Radar"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	// Staff management (OWNER only)
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserApprove, Name: "Approve Users"},
	{Code: PrivUserUpdate, Name: "Change User Role"},
	{Code: PrivUserDelete, Name: "Delete User"},
}

// CashierPrivileges is what a newly approved counter user may do.
var CashierPrivileges = []string{
	PrivProductView,
	PrivProductRestock,
	PrivSaleCreate,
	PrivSaleView,
	PrivReportRadar,
	PrivDashboardView,
}
