package main

// Seeds a fresh database with the default accounts, an admin user and a
// handful of demo products. Safe to run repeatedly: existing rows are
// skipped, never overwritten.

import (
	"fmt"
	"os"

	"bizledger/internal/config"
	"bizledger/internal/infra"
	"bizledger/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := seedAccounts(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed accounts")
	}
	if err := seedAdmin(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}
	if err := seedProducts(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed products")
	}

	log.Info().Msg("seed complete")
}

func strPtr(s string) *string { return &s }

func seedAccounts(db *gorm.DB) error {
	accounts := []model.Account{
		{Name: "Cash", Type: "asset", PaymentMethod: strPtr(model.PayCash), IsDefault: true},
		{Name: "Card Settlement", Type: "asset", PaymentMethod: strPtr(model.PayCard), IsDefault: true},
		{Name: "Mobile Money", Type: "asset", PaymentMethod: strPtr(model.PayMobile), IsDefault: true},
		{Name: "Accounts Receivable", Type: "asset", PaymentMethod: strPtr(model.PayCredit), IsDefault: true},
	}
	for _, a := range accounts {
		var count int64
		if err := db.Model(&model.Account{}).Where("name = ?", a.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&a).Error; err != nil {
			return err
		}
		log.Info().Str("account", a.Name).Msg("created account")
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "bizledger2026"
		fmt.Println("WARNING: seeding admin with the default password — change it")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Msg("created admin user")
	return nil
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := []model.Product{
		{SKU: "BEV-001", Name: "Bottled Water 500ml", Category: "beverages", Cost: decimal.NewFromFloat(0.30), Price: decimal.NewFromFloat(1.00), Stock: 120, ReorderLevel: 24},
		{SKU: "BEV-002", Name: "Cola 330ml", Category: "beverages", Cost: decimal.NewFromFloat(0.55), Price: decimal.NewFromFloat(1.50), Stock: 96, ReorderLevel: 24},
		{SKU: "SNK-001", Name: "Potato Chips 150g", Category: "snacks", Cost: decimal.NewFromFloat(0.90), Price: decimal.NewFromFloat(2.25), Stock: 60, ReorderLevel: 12},
		{SKU: "GRO-001", Name: "Rice 1kg", Category: "grocery", Cost: decimal.NewFromFloat(1.20), Price: decimal.NewFromFloat(2.80), Stock: 40, ReorderLevel: 10},
		{SKU: "GRO-002", Name: "Cooking Oil 1L", Category: "grocery", Cost: decimal.NewFromFloat(2.40), Price: decimal.NewFromFloat(4.50), Stock: 30, ReorderLevel: 8},
	}
	for _, p := range products {
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	log.Info().Int("count", len(products)).Msg("created demo products")
	return nil
}
