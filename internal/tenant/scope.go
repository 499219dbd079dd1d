package tenant

import "gorm.io/gorm"

// Scope restricts a gorm query to one company's rows. Every multi-tenant
// read goes through it so a missing filter is visible at the call site.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
