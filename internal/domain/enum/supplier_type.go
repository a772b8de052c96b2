package enum

import (
	"database/sql/driver"
	"fmt"
)

// SupplierType classifies where stock-ins come from
type SupplierType string

const (
	SupplierTypeDistributor SupplierType = "distributor"
	SupplierTypeWholesaler  SupplierType = "wholesaler"
	SupplierTypeProducer    SupplierType = "producer"
)

func (t SupplierType) IsValid() bool {
	switch t {
	case SupplierTypeDistributor, SupplierTypeWholesaler, SupplierTypeProducer:
		return true
	}
	return false
}

func (t SupplierType) Value() (driver.Value, error) {
	if t == "" {
		return string(SupplierTypeDistributor), nil
	}
	return string(t), nil
}

func (t *SupplierType) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = SupplierTypeDistributor
	case string:
		*t = SupplierType(v)
	case []byte:
		*t = SupplierType(v)
	default:
		return fmt.Errorf("cannot scan %T into SupplierType", value)
	}
	return nil
}
