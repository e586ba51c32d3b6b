package invoice

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/invoicer/pkg/config"
	"github.com/harrisonrobin/invoicer/pkg/daterange"
	"github.com/harrisonrobin/invoicer/pkg/notion"
)

// Client is the subset of the Notion API the workflow needs.
type Client interface {
	QueryDatabase(ctx context.Context, databaseID string, filter *notion.Filter) ([]notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties) (*notion.Page, error)
}

// StatusFunc receives human-readable progress messages.
type StatusFunc func(message string)

// Workflow creates invoices for the tasks due within a date range.
type Workflow struct {
	cfg    *config.Config
	client Client
	status StatusFunc
}

// Summary describes a finished batch.
type Summary struct {
	// Iterated counts every task returned by the query, including skipped ones.
	Iterated int
	Created  int
	Skipped  int
	Invoices []Invoice
}

func New(cfg *config.Config, client Client, status StatusFunc) *Workflow {
	return &Workflow{cfg: cfg, client: client, status: status}
}

func (w *Workflow) emit(message string) {
	if w.status != nil {
		w.status(message)
	}
}

// Run queries the tasks due within r and adds an invoice titled
// "<title>-<i>" for each, where i is the task's 1-based position in the
// query result. Tasks without an id are skipped but keep their position.
// A failed creation aborts the batch.
func (w *Workflow) Run(ctx context.Context, title string, r daterange.Range, mode Mode) (*Summary, error) {
	start, end := r.Format(daterange.Layout)
	w.emit(fmt.Sprintf("Adding invoices to tasks from %s to %s for person with ID %s...", start, end, w.cfg.AssigneeID))

	tasks, err := w.TasksForPeriod(ctx, r)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if len(tasks) == 0 {
		w.emit("No tasks found for the specified date range.")
		return summary, nil
	}

	for i, task := range tasks {
		summary.Iterated++
		n := i + 1
		if task.ID == "" {
			w.emit(fmt.Sprintf("Task %s does not have a valid ID.", describe(task, w.cfg.TitleProperty)))
			summary.Skipped++
			continue
		}

		taskTitle := propertyOrNone(task, w.cfg.TitleProperty)
		due := propertyOrNone(task, w.cfg.DueProperty)
		w.emit(fmt.Sprintf("Processing task %d/%d: '%s', due on %s.", n, len(tasks), taskTitle, due))

		inv, err := w.AddPaymentForTask(ctx, task.ID, fmt.Sprintf("%s-%d", title, n), mode)
		if err != nil {
			return summary, err
		}
		summary.Created++
		summary.Invoices = append(summary.Invoices, *inv)
	}

	w.emit(fmt.Sprintf("Added invoices to %d tasks.", len(tasks)))
	return summary, nil
}

// TasksForPeriod returns the tasks whose due date falls within r, both ends
// included, narrowed to the configured assignee when one is set.
func (w *Workflow) TasksForPeriod(ctx context.Context, r daterange.Range) ([]notion.Page, error) {
	displayStart, displayEnd := r.Format(daterange.Layout)
	w.emit(fmt.Sprintf("Fetching tasks from %s to %s...", displayStart, displayEnd))

	tasks, err := w.client.QueryDatabase(ctx, w.cfg.TasksDatabaseID, w.filter(r))
	if err != nil {
		return nil, fmt.Errorf("error fetching tasks: %w", err)
	}

	w.emit(fmt.Sprintf("Found %d tasks.", len(tasks)))
	return tasks, nil
}

func (w *Workflow) filter(r daterange.Range) *notion.Filter {
	start, end := r.Format(w.cfg.RemoteDateFormat)
	and := notion.DateBetween(w.cfg.DueProperty, start, end)
	if w.cfg.AssigneeID != "" && w.cfg.AssigneeProperty != "" {
		and = append(and, notion.Filter{
			Property: w.cfg.AssigneeProperty,
			People:   &notion.PeopleFilter{Contains: w.cfg.AssigneeID},
		})
	}
	return &notion.Filter{And: and}
}

func propertyOrNone(page notion.Page, name string) string {
	if v, ok := notion.PageProperty(page, name); ok {
		return v
	}
	return "None"
}

func describe(page notion.Page, titleProperty string) string {
	if v, ok := notion.PageProperty(page, titleProperty); ok {
		return fmt.Sprintf("'%s'", v)
	}
	if page.URL != "" {
		return page.URL
	}
	return "<untitled>"
}
