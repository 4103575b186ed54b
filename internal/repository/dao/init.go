package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Admin{},
		&Parent{},
		&Campaign{},
		&Contribution{},
	)
}

// DropTables removes every table so a shared database starts from an empty
// schema.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&Contribution{},
		&Campaign{},
		&Parent{},
		&Admin{},
	)
}
