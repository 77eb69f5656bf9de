package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The UI layer maps these codes to localized messages.

const (
	// ==================== Session (SESSION_) ====================
	SessionUnauthenticated = "SESSION_UNAUTHENTICATED" // no active session
	SessionTokenInvalid    = "SESSION_TOKEN_INVALID"   // malformed token
	SessionTokenExpired    = "SESSION_TOKEN_EXPIRED"   // token past expiry
	SessionDegraded        = "SESSION_DEGRADED"        // fell back to guest mode

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"    // malformed request
	ValidationInvalidID       = "VALIDATION_INVALID_ID"       // bad vegetable id
	ValidationInvalidQuantity = "VALIDATION_INVALID_QUANTITY" // quantity out of [1,99]
	ValidationRejected        = "VALIDATION_REJECTED"         // server-side validation failure

	// ==================== Cart (CART_) ====================
	CartItemNotFound = "CART_ITEM_NOT_FOUND" // no row for vegetable id
	CartLoadFailed   = "CART_LOAD_FAILED"    // initial load failed

	// ==================== Wishlist (WISHLIST_) ====================
	WishlistLoadFailed = "WISHLIST_LOAD_FAILED" // initial load failed

	// ==================== Sync (SYNC_) ====================
	SyncAlreadyDone = "SYNC_ALREADY_DONE"  // duplicate login trigger
	SyncRoleSkipped = "SYNC_ROLE_SKIPPED"  // non-customer login, nothing merged
	SyncNothingToDo = "SYNC_NOTHING_TO_DO" // empty guest snapshot
	SyncFetchFailed = "SYNC_FETCH_FAILED"  // post-merge reload failed

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR" // unexpected failure
	InternalStorage     = "INTERNAL_STORAGE"      // durable store failure
	InternalRemoteAPI   = "INTERNAL_REMOTE_API"   // grocery API failure
)
