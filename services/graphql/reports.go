package graphql

import (
	"context"

	"github.com/darasahq/darasa/core/report"
)

// Report operations.
const (
	reportsDoc = `query Reports($userId: ID) {
  reports(userId: $userId) {
    id user { id name email } start_date end_date type content
  }
}`

	reportDoc = `query Report($id: ID!) {
  report(id: $id) {
    id user { name id } start_date end_date type content
  }
}`

	createReportDoc = `mutation CreateReport($input: CreateReportInput!) {
  createReport(input: $input) {
    id user { id name } start_date end_date type content
  }
}`

	updateReportDoc = `mutation UpdateReport($id: ID!, $input: UpdateReportInput!) {
  updateReport(id: $id, input: $input) {
    id user { name } start_date end_date type content
  }
}`

	deleteReportDoc = `mutation DeleteReport($id: ID!) {
  deleteReport(id: $id) { id }
}`
)

// Reports lists reports, optionally filtered to one user.
func (c *Client) Reports(ctx context.Context, userID string) ([]report.Report, error) {
	var out struct {
		Reports []report.Report `json:"reports"`
	}
	vars := map[string]interface{}{}
	if userID != "" {
		vars["userId"] = userID
	}
	err := c.Do(ctx, reportsDoc, "Reports", vars, &out)
	return out.Reports, err
}

func (c *Client) Report(ctx context.Context, id string) (report.Report, error) {
	var out struct {
		Report report.Report `json:"report"`
	}
	err := c.Do(ctx, reportDoc, "Report", map[string]interface{}{"id": id}, &out)
	return out.Report, err
}

type CreateReportInput struct {
	UserID    string `json:"userId" validate:"required"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Type      string `json:"type" validate:"required"`
}

func (c *Client) CreateReport(ctx context.Context, input CreateReportInput) (report.Report, error) {
	var out struct {
		CreateReport report.Report `json:"createReport"`
	}
	err := c.Do(ctx, createReportDoc, "CreateReport", map[string]interface{}{"input": input}, &out)
	return out.CreateReport, err
}

type UpdateReportInput struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Type      string `json:"type,omitempty"`
}

func (c *Client) UpdateReport(ctx context.Context, id string, input UpdateReportInput) (report.Report, error) {
	var out struct {
		UpdateReport report.Report `json:"updateReport"`
	}
	vars := map[string]interface{}{"id": id, "input": input}
	err := c.Do(ctx, updateReportDoc, "UpdateReport", vars, &out)
	return out.UpdateReport, err
}

// DeleteReport removes a report, returning the deleted ID.
func (c *Client) DeleteReport(ctx context.Context, id string) (string, error) {
	var out struct {
		DeleteReport struct {
			ID string `json:"id"`
		} `json:"deleteReport"`
	}
	err := c.Do(ctx, deleteReportDoc, "DeleteReport", map[string]interface{}{"id": id}, &out)
	return out.DeleteReport.ID, err
}
