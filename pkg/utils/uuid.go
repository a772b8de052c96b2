package utils

import (
	"strings"

	"github.com/google/uuid"
)

func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateInvoiceNo returns INV- followed by eight upper-case hex characters
func GenerateInvoiceNo() string {
	return "INV-" + shortID()
}

// GenerateReferenceNo is used for stock-in references
func GenerateReferenceNo(prefix string) string {
	return prefix + "-" + shortID()
}

func GenerateProductCode() string {
	return "PROD-" + shortID()
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
