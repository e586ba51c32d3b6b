package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrisonrobin/invoicer/pkg/notion"
)

// PlaceholderID is the invoice id reported for dry-run creations.
const PlaceholderID = "test_invoice_id"

var ErrCreationFailed = errors.New("failed to create invoice record in Notion")

// Mode selects whether invoices are actually written to Notion.
type Mode int

const (
	DryRun Mode = iota
	Live
)

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "dry-run"
}

// Invoice is a payment record created (or simulated) for one task.
type Invoice struct {
	ID         string
	Title      string
	TaskID     string
	Properties notion.Properties
}

// AddPaymentForTask creates a payment page titled title and related to the
// task. In DryRun mode nothing is sent and the invoice gets PlaceholderID.
func (w *Workflow) AddPaymentForTask(ctx context.Context, taskID, title string, mode Mode) (*Invoice, error) {
	w.emit(fmt.Sprintf("Adding invoice '%s' for task %s...", title, taskID))

	inv := &Invoice{
		Title:  title,
		TaskID: taskID,
		Properties: notion.Properties{
			w.cfg.InvoiceNumberProperty: notion.TitleValue(title),
			w.cfg.TaskRelationProperty:  notion.RelationValue(taskID),
		},
	}

	if mode == Live {
		page, err := w.client.CreatePage(ctx, w.cfg.PaymentsDatabaseID, inv.Properties)
		if err != nil {
			return nil, fmt.Errorf("invoice '%s': %w", title, err)
		}
		inv.ID = notion.PageID(page)
		if inv.ID == "" {
			return nil, fmt.Errorf("invoice '%s': %w", title, ErrCreationFailed)
		}
	} else {
		inv.ID = PlaceholderID
	}

	w.emit(fmt.Sprintf("Invoice with ID %s added successfully.", inv.ID))
	return inv, nil
}
