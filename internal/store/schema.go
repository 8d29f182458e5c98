package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Timestamps are stored as UTC text in timeLayout and documents as JSON
// text, so time and JSON columns are declared as strings.

var (
	// DraftsColumns holds the columns for the "drafts" table.
	DraftsColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeString},
	}
	// DraftsTable holds the schema information for the "drafts" table.
	DraftsTable = &schema.Table{
		Name:       "drafts",
		Columns:    DraftsColumns,
		PrimaryKey: []*schema.Column{DraftsColumns[0]},
	}

	// AssessmentsColumns holds the columns for the "assessments" table.
	AssessmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "job_id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "data", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeString},
	}
	// AssessmentsTable holds the schema information for the "assessments" table.
	AssessmentsTable = &schema.Table{
		Name:       "assessments",
		Columns:    AssessmentsColumns,
		PrimaryKey: []*schema.Column{AssessmentsColumns[0]},
	}

	// AssessmentResponsesColumns holds the columns for the "assessment_responses" table.
	AssessmentResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "job_id", Type: field.TypeString},
		{Name: "assessment_id", Type: field.TypeString},
		{Name: "candidate_id", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "answers", Type: field.TypeString},
		{Name: "submitted_at", Type: field.TypeString},
	}
	// AssessmentResponsesTable holds the schema information for the "assessment_responses" table.
	AssessmentResponsesTable = &schema.Table{
		Name:       "assessment_responses",
		Columns:    AssessmentResponsesColumns,
		PrimaryKey: []*schema.Column{AssessmentResponsesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessmentresponse_candidate_id",
				Unique:  false,
				Columns: []*schema.Column{AssessmentResponsesColumns[3]},
			},
			{
				Name:    "assessmentresponse_assessment_id",
				Unique:  false,
				Columns: []*schema.Column{AssessmentResponsesColumns[2]},
			},
			{
				Name:    "assessmentresponse_job_id",
				Unique:  false,
				Columns: []*schema.Column{AssessmentResponsesColumns[1]},
			},
		},
	}

	// EventsColumns holds the columns for the "events" table. The first
	// and last columns are shared by every activity log entry.
	EventsColumns = []*schema.Column{
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "job_id", Type: field.TypeString, Default: ""},
		{Name: "assessment_id", Type: field.TypeString, Default: ""},
		{Name: "candidate_id", Type: field.TypeString, Default: ""},
		{Name: "detail", Type: field.TypeString, Default: ""},
		{Name: "timestamp", Type: field.TypeString},
	}
	// EventsTable holds the schema information for the "events" table.
	EventsTable = &schema.Table{
		Name:       "events",
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "event_timestamp",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[6]},
			},
			{
				Name:    "event_job_id",
				Unique:  false,
				Columns: []*schema.Column{EventsColumns[2]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		DraftsTable,
		AssessmentsTable,
		AssessmentResponsesTable,
		EventsTable,
	}
)

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver, opts ...schema.MigrateOption) error {
	m, err := schema.NewMigrate(drv, opts...)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
