package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/ad/go-telegram-gorbushka/internal/config"
	"github.com/ad/go-telegram-gorbushka/internal/models"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client reads categories from and writes applications and the black list
// to Google Sheets.
type Client struct {
	svc          *gsheets.Service
	categories   config.SheetRef
	applications config.SheetRef
	approved     config.SheetRef
	blackList    config.SheetRef
	loc          *time.Location
	now          func() time.Time
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(cfg.GoogleCredentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:          svc,
		categories:   cfg.CategoriesSheet(),
		applications: cfg.ApplicationsSheet(),
		approved:     cfg.ApprovedSheet(),
		blackList:    cfg.BlackListSheet(),
		loc:          cfg.Location(),
		now:          time.Now,
	}, nil
}

func (c *Client) GetCategories(ctx context.Context) ([]models.Category, error) {
	if !c.categories.Enabled() {
		return nil, nil
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.categories.SpreadsheetID, c.categories.SheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return ParseCategories(resp.Values), nil
}

func (c *Client) AddApplication(ctx context.Context, app *models.Application) error {
	return c.appendApplication(ctx, c.applications, app, app.CreatedAt)
}

func (c *Client) AddApprovedApplication(ctx context.Context, app *models.Application) error {
	at := c.now()
	if app.DecisionAt != nil {
		at = *app.DecisionAt
	}
	return c.appendApplication(ctx, c.approved, app, at)
}

func (c *Client) appendApplication(ctx context.Context, ref config.SheetRef, app *models.Application, at time.Time) error {
	if !ref.Enabled() {
		return nil
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{ApplicationRow(app, at, c.loc)}}
	_, err := c.svc.Spreadsheets.Values.Append(ref.SpreadsheetID, ref.SheetName+"!A2", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append application %d to %s: %w", app.ID, ref.SheetName, err)
	}
	return nil
}

// SyncBlackList overwrites the sheet with the snapshot and clears rows left
// over from a longer previous snapshot.
func (c *Client) SyncBlackList(ctx context.Context, records []models.BlackListRecord) error {
	if !c.blackList.Enabled() {
		return nil
	}
	values := BlackListValues(records, c.loc)
	_, err := c.svc.Spreadsheets.Values.Update(c.blackList.SpreadsheetID, c.blackList.SheetName+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write black list: %w", err)
	}

	tail := fmt.Sprintf("%s!A%d:C", c.blackList.SheetName, len(values)+1)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.blackList.SpreadsheetID, tail, &gsheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear black list tail: %w", err)
	}
	return nil
}

// Disabled stands in when no credentials are configured.
type Disabled struct{}

func (Disabled) GetCategories(context.Context) ([]models.Category, error)          { return nil, nil }
func (Disabled) AddApplication(context.Context, *models.Application) error         { return nil }
func (Disabled) AddApprovedApplication(context.Context, *models.Application) error { return nil }
func (Disabled) SyncBlackList(context.Context, []models.BlackListRecord) error     { return nil }
