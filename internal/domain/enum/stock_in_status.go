package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StockInStatus represents the status of a stock-in
type StockInStatus int

const (
	StockInStatusPending  StockInStatus = 0
	StockInStatusApproved StockInStatus = 1
)

func (s StockInStatus) String() string {
	switch s {
	case StockInStatusPending:
		return "Pending"
	case StockInStatusApproved:
		return "Approved"
	}
	return fmt.Sprintf("StockInStatus(%d)", int(s))
}

func (s StockInStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *StockInStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = StockInStatus(i)
		return nil
	}
	status, ok := ParseStockInStatus(str)
	if !ok {
		return fmt.Errorf("unknown stock-in status %q", str)
	}
	*s = status
	return nil
}

// ParseStockInStatus accepts the status name in any case
func ParseStockInStatus(name string) (StockInStatus, bool) {
	switch strings.ToLower(name) {
	case "pending":
		return StockInStatusPending, true
	case "approved":
		return StockInStatusApproved, true
	}
	return 0, false
}

func (s StockInStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *StockInStatus) Scan(value interface{}) error {
	if value == nil {
		*s = StockInStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = StockInStatus(v)
	case int32:
		*s = StockInStatus(v)
	case int:
		*s = StockInStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into StockInStatus", value)
	}
	return nil
}
