package domain

import "context"

type Service interface {
	// Ingest persists a rate sample and advances the estimator for the
	// sample's (workspace, SKU) series. Duplicate uuids are no-ops for
	// the insert but still advance the estimator.
	Ingest(ctx context.Context, msg *SampleMessage) error
}
