package database

import (
	"errors"
	"strings"

	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/logger"
	"github.com/sangkips/salesdesk-api/pkg/utils"
	"gorm.io/gorm"
)

// Permission names checked by the routes
const (
	PermManageInvoices   = "manage-invoices"
	PermManageProducts   = "manage-products"
	PermManageCustomers  = "manage-customers"
	PermManageSuppliers  = "manage-suppliers"
	PermManagePromotions = "manage-promotions"
	PermManageStockIns   = "manage-stock-ins"
	PermManageShipments  = "manage-shipments"
	PermManageUsers      = "manage-users"
)

// DefaultRoles maps each seeded role to its permissions
var DefaultRoles = map[string][]string{
	"admin": {
		PermManageInvoices, PermManageProducts, PermManageCustomers, PermManageSuppliers,
		PermManagePromotions, PermManageStockIns, PermManageShipments, PermManageUsers,
	},
	"sales":     {PermManageInvoices, PermManageCustomers, PermManageShipments},
	"warehouse": {PermManageProducts, PermManageSuppliers, PermManageStockIns, PermManageShipments},
}

// SeedDefaultData creates the permissions, roles and, when configured, the first admin
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	log := logger.Get()

	permissions := make(map[string]entity.Permission)
	for _, names := range DefaultRoles {
		for _, name := range names {
			if _, ok := permissions[name]; ok {
				continue
			}
			perm := entity.Permission{Name: name}
			if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
				return err
			}
			permissions[name] = perm
		}
	}

	for roleName, names := range DefaultRoles {
		role := entity.Role{Name: roleName}
		if err := db.Where(entity.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		perms := make([]entity.Permission, 0, len(names))
		for _, name := range names {
			perms = append(perms, permissions[name])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}

	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", strings.ToLower(admin.Email)).First(&existing).Error
	if err == nil {
		log.WithField("email", admin.Email).Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	name := admin.Name
	if name == "" {
		name = "Admin User"
	}
	firstName, lastName, _ := strings.Cut(name, " ")

	user := entity.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     strings.ToLower(admin.Email),
		Password:  hashed,
		IsActive:  true,
		Roles:     []entity.Role{adminRole},
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.WithField("email", admin.Email).Info("admin user created")
	return nil
}
