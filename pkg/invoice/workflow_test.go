package invoice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harrisonrobin/invoicer/pkg/config"
	"github.com/harrisonrobin/invoicer/pkg/daterange"
	"github.com/harrisonrobin/invoicer/pkg/notion"
	"github.com/stretchr/testify/require"
)

type call struct {
	op         string
	databaseID string
	filter     *notion.Filter
	props      notion.Properties
}

type fakeClient struct {
	tasks    []notion.Page
	queryErr error
	// createFn decides the result of the n-th (0-based) CreatePage call.
	createFn func(n int) (*notion.Page, error)
	calls    []call
}

func (f *fakeClient) QueryDatabase(_ context.Context, databaseID string, filter *notion.Filter) ([]notion.Page, error) {
	f.calls = append(f.calls, call{op: "query", databaseID: databaseID, filter: filter})
	return f.tasks, f.queryErr
}

func (f *fakeClient) CreatePage(_ context.Context, databaseID string, props notion.Properties) (*notion.Page, error) {
	n := f.creates()
	f.calls = append(f.calls, call{op: "create", databaseID: databaseID, props: props})
	if f.createFn != nil {
		return f.createFn(n)
	}
	return &notion.Page{ID: fmt.Sprintf("inv-%d", n+1)}, nil
}

func (f *fakeClient) creates() int {
	n := 0
	for _, c := range f.calls {
		if c.op == "create" {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.AssigneeID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	cfg.TasksDatabaseID = "tasks-db"
	cfg.PaymentsDatabaseID = "payments-db"
	return cfg
}

func task(id, title, due string) notion.Page {
	return notion.Page{
		ID: id,
		Properties: notion.Properties{
			"Subtask": {Title: []notion.RichText{{PlainText: title}}},
			"Due":     {Date: &notion.DateValue{Start: due}},
		},
	}
}

func january(t *testing.T) daterange.Range {
	t.Helper()
	r, err := daterange.Parse("01-01-2024", "01-31-2024")
	require.NoError(t, err)
	return r
}

func titles(s *Summary) []string {
	var out []string
	for _, inv := range s.Invoices {
		out = append(out, inv.Title)
	}
	return out
}

func TestRunQueriesInclusiveRangeBeforeCreating(t *testing.T) {
	client := &fakeClient{tasks: []notion.Page{task("t1", "Write", "2024-01-05")}}
	w := New(testConfig(), client, nil)

	_, err := w.Run(context.Background(), "May Invoice", january(t), Live)
	require.NoError(t, err)

	require.Len(t, client.calls, 2)
	require.Equal(t, "query", client.calls[0].op)
	require.Equal(t, "create", client.calls[1].op)
	require.Equal(t, "tasks-db", client.calls[0].databaseID)

	want := &notion.Filter{And: []notion.Filter{
		{Property: "Due", Date: &notion.DateFilter{OnOrAfter: "2024-01-01"}},
		{Property: "Due", Date: &notion.DateFilter{OnOrBefore: "2024-01-31"}},
		{Property: "Assignee", People: &notion.PeopleFilter{Contains: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"}},
	}}
	if diff := cmp.Diff(want, client.calls[0].filter); diff != "" {
		t.Errorf("filter mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWithoutAssigneeFiltersOnDueOnly(t *testing.T) {
	cfg := testConfig()
	cfg.AssigneeID = ""
	client := &fakeClient{}
	_, err := New(cfg, client, nil).Run(context.Background(), "Inv", january(t), DryRun)
	require.NoError(t, err)
	require.Len(t, client.calls[0].filter.And, 2)
}

func TestRunNoTasks(t *testing.T) {
	client := &fakeClient{}
	var messages []string
	w := New(testConfig(), client, func(m string) { messages = append(messages, m) })

	summary, err := w.Run(context.Background(), "May Invoice", january(t), Live)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Iterated)
	require.Equal(t, 0, client.creates())
	require.Equal(t, "No tasks found for the specified date range.", messages[len(messages)-1])
}

func TestRunDryRunTitlesInOrder(t *testing.T) {
	client := &fakeClient{tasks: []notion.Page{
		task("t1", "A", "2024-01-02"),
		task("t2", "B", "2024-01-03"),
		task("t3", "C", "2024-01-04"),
	}}
	w := New(testConfig(), client, nil)

	summary, err := w.Run(context.Background(), "May Invoice", january(t), DryRun)
	require.NoError(t, err)
	require.Equal(t, 0, client.creates())
	require.Equal(t, []string{"May Invoice-1", "May Invoice-2", "May Invoice-3"}, titles(summary))
	for i, inv := range summary.Invoices {
		require.Equal(t, PlaceholderID, inv.ID)
		require.Equal(t, fmt.Sprintf("t%d", i+1), inv.TaskID)
	}
	require.Equal(t, 3, summary.Created)
}

func TestRunMissingIDKeepsPosition(t *testing.T) {
	client := &fakeClient{tasks: []notion.Page{
		task("t1", "A", "2024-01-02"),
		task("", "Broken", "2024-01-03"),
		task("t3", "C", "2024-01-04"),
	}}
	var messages []string
	w := New(testConfig(), client, func(m string) { messages = append(messages, m) })

	summary, err := w.Run(context.Background(), "Inv", january(t), Live)
	require.NoError(t, err)

	require.Equal(t, 2, client.creates())
	require.Equal(t, []string{"Inv-1", "Inv-3"}, titles(summary))
	require.Equal(t, "Inv-3", client.calls[2].props["Invoice #"].Title[0].Text.Content)
	require.Equal(t, 3, summary.Iterated)
	require.Equal(t, 2, summary.Created)
	require.Equal(t, 1, summary.Skipped)

	require.Contains(t, messages, "Task 'Broken' does not have a valid ID.")
	require.Equal(t, "Added invoices to 3 tasks.", messages[len(messages)-1])
}

func TestRunLiveCreationFailureAborts(t *testing.T) {
	client := &fakeClient{
		tasks: []notion.Page{
			task("t1", "A", "2024-01-02"),
			task("t2", "B", "2024-01-03"),
			task("t3", "C", "2024-01-04"),
		},
		createFn: func(n int) (*notion.Page, error) {
			if n == 1 {
				return nil, nil
			}
			return &notion.Page{ID: "ok"}, nil
		},
	}
	var messages []string
	w := New(testConfig(), client, func(m string) { messages = append(messages, m) })

	summary, err := w.Run(context.Background(), "Inv", january(t), Live)
	require.ErrorIs(t, err, ErrCreationFailed)
	require.Equal(t, 2, client.creates())
	require.Equal(t, 1, summary.Created)
	for _, m := range messages {
		require.NotContains(t, m, "Processing task 3/3")
		require.NotContains(t, m, "Added invoices to")
	}
}

func TestRunPropagatesUpstreamErrors(t *testing.T) {
	boom := errors.New("connection reset")

	client := &fakeClient{queryErr: boom}
	_, err := New(testConfig(), client, nil).Run(context.Background(), "Inv", january(t), Live)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, client.creates())

	client = &fakeClient{
		tasks:    []notion.Page{task("t1", "A", "2024-01-02"), task("t2", "B", "2024-01-03")},
		createFn: func(int) (*notion.Page, error) { return nil, boom },
	}
	_, err = New(testConfig(), client, nil).Run(context.Background(), "Inv", january(t), Live)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, client.creates())
}

func TestRunStatusMessages(t *testing.T) {
	client := &fakeClient{tasks: []notion.Page{
		task("t1", "Write report", "2024-01-05"),
		{ID: "t2"},
	}}
	var messages []string
	w := New(testConfig(), client, func(m string) { messages = append(messages, m) })

	_, err := w.Run(context.Background(), "May Invoice", january(t), DryRun)
	require.NoError(t, err)

	want := []string{
		"Adding invoices to tasks from 01-01-2024 to 01-31-2024 for person with ID aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee...",
		"Fetching tasks from 01-01-2024 to 01-31-2024...",
		"Found 2 tasks.",
		"Processing task 1/2: 'Write report', due on 2024-01-05.",
		"Adding invoice 'May Invoice-1' for task t1...",
		"Invoice with ID test_invoice_id added successfully.",
		"Processing task 2/2: 'None', due on None.",
		"Adding invoice 'May Invoice-2' for task t2...",
		"Invoice with ID test_invoice_id added successfully.",
		"Added invoices to 2 tasks.",
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Errorf("status messages mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPaymentForTaskProperties(t *testing.T) {
	client := &fakeClient{}
	w := New(testConfig(), client, nil)

	inv, err := w.AddPaymentForTask(context.Background(), "t9", "Inv-9", Live)
	require.NoError(t, err)
	require.Equal(t, "inv-1", inv.ID)

	c := client.calls[0]
	require.Equal(t, "payments-db", c.databaseID)
	want := notion.Properties{
		"Invoice #": notion.TitleValue("Inv-9"),
		"Task":      notion.RelationValue("t9"),
	}
	if diff := cmp.Diff(want, c.props); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestModeString(t *testing.T) {
	require.Equal(t, "dry-run", DryRun.String())
	require.Equal(t, "live", Live.String())
}
