package controllers

import (
	"context"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
	"github.com/vamlemat/sync-ps-to-ps-importer/remote"
	"github.com/vamlemat/sync-ps-to-ps-importer/services"
)

// ImporterAPI is the import engine surface the HTTP layer needs.
type ImporterAPI interface {
	ImportOne(ctx context.Context, remoteProductID int) models.ImportResult
	ImportMany(ctx context.Context, remoteProductIDs []int) models.ImportSummary
}

// QueueAPI queues asynchronous import jobs.
type QueueAPI interface {
	Enqueue(ctx context.Context, remoteProductIDs []int) (string, error)
	Job(ctx context.Context, jobID string) (*services.ImportJob, error)
}

// RemoteAPI is the slice of the webservice client the browse panel uses.
type RemoteAPI interface {
	ListProducts(ctx context.Context, limit, offset int, categoryID int, search string) ([]remote.Record, error)
	Product(ctx context.Context, id int) (remote.Record, error)
	TestConnection(ctx context.Context) error
}

// RunLogAPI exposes the daily import log files.
type RunLogAPI interface {
	List() ([]string, error)
	Read(date string) (string, error)
	Clear(date string) error
}
