package privacy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/utils"
)

// Consent names accepted by UpdateConsent
const (
	ConsentAnalytics    = "analytics"
	ConsentMarketing    = "marketing"
	ConsentDataSharing  = "dataSharing"
	ConsentPhotoStorage = "photoStorage"
)

// Format of a data export
type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a case-insensitive format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", errors.Validationf("unsupported export format %q (json or xlsx)", s)
}

// Center holds consent flags and deletion requests
type Center struct {
	kv    storage.KeyValueStore
	clock utils.Clock
}

func New(kv storage.KeyValueStore, clock utils.Clock) *Center {
	if clock == nil {
		clock = utils.SystemClock
	}
	return &Center{kv: kv, clock: clock}
}

// Consents returns the stored consents. Everything defaults to off.
func (c *Center) Consents(ctx context.Context) (models.Consents, error) {
	var out models.Consents
	if _, err := storage.GetJSON(ctx, c.kv, constants.KeyPrivacyConsents, &out); err != nil {
		return models.Consents{}, err
	}
	return out, nil
}

func (c *Center) UpdateConsent(ctx context.Context, name string, value bool) (models.Consents, error) {
	consents, err := c.Consents(ctx)
	if err != nil {
		logger.Warn("Resetting unreadable consents", "error", err)
		consents = models.Consents{}
	}

	switch strings.ToLower(name) {
	case strings.ToLower(ConsentAnalytics):
		consents.Analytics = value
	case strings.ToLower(ConsentMarketing):
		consents.Marketing = value
	case strings.ToLower(ConsentDataSharing), "data-sharing":
		consents.DataSharing = value
	case strings.ToLower(ConsentPhotoStorage), "photo-storage":
		consents.PhotoStorage = value
	default:
		return models.Consents{}, errors.Validationf("unknown consent %q", name)
	}

	now := c.clock()
	consents.UpdatedAt = &now
	if err := storage.SetJSON(ctx, c.kv, constants.KeyPrivacyConsents, consents); err != nil {
		return models.Consents{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return consents, nil
}

// RequestDeletion records a pending request. Nothing is erased until it is
// processed.
func (c *Center) RequestDeletion(ctx context.Context) (models.DeletionRequest, error) {
	requests, err := c.DeletionRequests(ctx)
	if err != nil {
		return models.DeletionRequest{}, err
	}
	req := models.DeletionRequest{ID: uuid.NewString(), RequestedAt: c.clock(), Status: "pending"}
	requests = append(requests, req)
	if err := storage.SetJSON(ctx, c.kv, constants.KeyDeletionRequests, requests); err != nil {
		return models.DeletionRequest{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	logger.Info("Deletion requested", "id", req.ID)
	return req, nil
}

func (c *Center) DeletionRequests(ctx context.Context) ([]models.DeletionRequest, error) {
	var out []models.DeletionRequest
	if _, err := storage.GetJSON(ctx, c.kv, constants.KeyDeletionRequests, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearLocalData deletes every persisted key and returns how many were removed
func (c *Center) ClearLocalData(ctx context.Context) (int, error) {
	keys, err := c.kv.Keys(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}
	for _, k := range keys {
		if err := c.kv.Delete(ctx, k); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
			return 0, fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	logger.Info("Local data cleared", "keys", len(keys))
	return len(keys), nil
}

// Export writes the bundle in the requested format
func Export(w io.Writer, format Format, bundle models.ExportBundle) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	case FormatXLSX:
		return writeXLSX(w, bundle)
	}
	return errors.Validationf("unsupported export format %q", format)
}

// Filename suggests a download name for an export
func Filename(format Format, bundle models.ExportBundle) string {
	return fmt.Sprintf("reto21d-export-%s.%s", bundle.ExportedAt.Format("20060102-150405"), format)
}
