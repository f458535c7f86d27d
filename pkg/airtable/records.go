package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
)

const defaultVendorLabel = "Non assigné"

// ClientContact is one row of the "clients to recontact" table with
// defaults applied at the parse boundary.
type ClientContact struct {
	RecordID     string  `json:"record_id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	OrderDate    string  `json:"order_date"`
	Amount       float64 `json:"amount"`
	NPS          float64 `json:"nps"`
	Whatsapp     string  `json:"whatsapp"`
	WhatsappLink string  `json:"whatsapp_link"`
	Vendor       string  `json:"vendor"`
	Product      string  `json:"product"`
}

// The base uses French field labels; they are part of its schema.
type clientFields struct {
	Email        string  `json:"Email"`
	FirstName    string  `json:"Prénom"`
	LastName     string  `json:"Nom"`
	Product      string  `json:"Produit acheté"`
	OrderDate    string  `json:"Date commande"`
	Amount       float64 `json:"Montant"`
	NPS          float64 `json:"NPS"`
	Whatsapp     string  `json:"Whatsapp"`
	WhatsappLink string  `json:"Lien WhatsApp"`
	VendorID     string  `json:"ID vendeur"`
	Contacted    bool    `json:"Contacté"`
}

type targetFields struct {
	Date   string  `json:"Date"`
	Amount float64 `json:"Objectif"`
}

// ListClientsToContact returns the most recent not-yet-contacted
// clients that have a WhatsApp number, newest order first.
func (c *Client) ListClientsToContact(ctx context.Context, table, view string, limit int) ([]ClientContact, error) {
	if limit <= 0 {
		limit = 10
	}

	records, err := c.List(ctx, ListParams{
		Table:           table,
		FilterByFormula: `AND({Contacté} = FALSE(), {Whatsapp} != '')`,
		MaxRecords:      limit,
		Sort:            []SortField{{Field: "Date commande", Direction: "desc"}},
		View:            view,
	})
	if err != nil {
		return nil, err
	}

	contacts := make([]ClientContact, 0, len(records))
	for _, record := range records {
		var fields clientFields
		if len(record.Fields) > 0 {
			if err := json.Unmarshal(record.Fields, &fields); err != nil {
				// Partial rows are tolerated; a single malformed record
				// must not abort the whole listing.
				continue
			}
		}

		vendor := strings.TrimSpace(fields.VendorID)
		if vendor == "" {
			vendor = defaultVendorLabel
		}

		contacts = append(contacts, ClientContact{
			RecordID:     record.ID,
			Email:        strings.ToLower(strings.TrimSpace(fields.Email)),
			Name:         strings.TrimSpace(fields.FirstName + " " + fields.LastName),
			OrderDate:    fields.OrderDate,
			Amount:       fields.Amount,
			NPS:          fields.NPS,
			Whatsapp:     fields.Whatsapp,
			WhatsappLink: fields.WhatsappLink,
			Vendor:       vendor,
			Product:      fields.Product,
		})
	}

	return contacts, nil
}

// DailyTarget reads the revenue target configured for the given
// calendar date (YYYY-MM-DD). The bool reports whether a target exists.
func (c *Client) DailyTarget(ctx context.Context, table, date string) (float64, bool, error) {
	records, err := c.List(ctx, ListParams{
		Table:           table,
		FilterByFormula: fmt.Sprintf("{Date} = '%s'", date),
		MaxRecords:      1,
	})
	if err != nil {
		return 0, false, err
	}
	if len(records) == 0 {
		return 0, false, nil
	}

	var fields targetFields
	if err := json.Unmarshal(records[0].Fields, &fields); err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode target record")
	}
	if fields.Amount <= 0 {
		return 0, false, nil
	}
	return fields.Amount, true, nil
}
