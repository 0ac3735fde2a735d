package address

import (
	"time"

	"github.com/google/uuid"
)

type Label string

const (
	LabelHome      Label = "HOME"
	LabelOffice    Label = "OFFICE"
	LabelWarehouse Label = "WAREHOUSE"
	LabelOther     Label = "OTHER"
)

// Address is a saved pickup/delivery location in a customer's address book.
// A customer has at most one default address.
type Address struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Label      Label
	Name       string
	Address1   string
	Address2   *string
	City       string
	State      string
	ZipCode    string
	Phone      *string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
