package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The storefront and dashboard map these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzShopOnly     = "AUTHZ_SHOP_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Shop (SHOP_) ====================
	ShopNotFound = "SHOP_NOT_FOUND"
	ShopInactive = "SHOP_INACTIVE"

	// ==================== Image map (MAP_) ====================
	MapNotFound      = "MAP_NOT_FOUND"
	MapImageRequired = "MAP_IMAGE_REQUIRED"
	MapNoActiveMap   = "MAP_NO_ACTIVE_MAP"

	// ==================== Hotspot (HOTSPOT_) ====================
	HotspotNotFound        = "HOTSPOT_NOT_FOUND"
	HotspotInvalidPosition = "HOTSPOT_INVALID_POSITION"
	HotspotNotPurchasable  = "HOTSPOT_NOT_PURCHASABLE"

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound    = "PRODUCT_NOT_FOUND"
	ProductOutOfStock  = "PRODUCT_OUT_OF_STOCK"
	ProductInvalidPack = "PRODUCT_INVALID_PACK"

	// ==================== Cart (CART_) ====================
	CartLineNotFound = "CART_LINE_NOT_FOUND"
	CartInvalidQty   = "CART_INVALID_QUANTITY"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Vision analysis (ANALYSIS_) ====================
	AnalysisNotConfigured = "ANALYSIS_NOT_CONFIGURED"
	AnalysisFailed        = "ANALYSIS_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
