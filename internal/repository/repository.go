package repository

import "gorm.io/gorm"

// checkAffected converts a zero-row write into gorm.ErrRecordNotFound.
// An update that matches no row must fail the enclosing transaction,
// not silently no-op while the rest of the workflow commits.
func checkAffected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
