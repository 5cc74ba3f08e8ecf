package contracts

import "errors"

// Analytics errors. All of them are recoverable and map to "not found" at the transport boundary.
var (
	ErrPlanNotFound              = errors.New("jbp plan not found")
	ErrSupplierNotFound          = errors.New("supplier not found")
	ErrInsufficientData          = errors.New("no sales history for supplier")
	ErrInvalidComparisonCategory = errors.New("supplier has no category and no peers to compare against")
)

// IsNotFound reports whether err is one of the analytics lookup errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSupplierNotFound) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidComparisonCategory)
}
