package review

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mft-data/fitmenthub/app/models"
)

// DeleteFitment soft-deletes one live fitment, releasing its uniqueness slot.
func (s *Service) DeleteFitment(tenantID uint, hash, by string) error {
	return s.fitments.SoftDelete(tenantID, hash, by)
}

// DeleteFitments soft-deletes a batch of fitments by hash. Unknown and
// already-deleted hashes are ignored; the count of flagged rows is returned.
func (s *Service) DeleteFitments(tenantID uint, hashes []string, by string) (int64, error) {
	deleted, err := s.fitments.SoftDeleteBulk(tenantID, hashes, by)
	if err != nil {
		return 0, err
	}
	if int(deleted) < len(hashes) {
		log.Warnf("[Review] Bulk delete flagged %d of %d requested fitments", deleted, len(hashes))
	}
	return deleted, nil
}

// UpdateFitment applies a mutation to the fitment with the given hash. A
// soft-deleted fitment is restored and updated in the same save, so an update
// always leaves the row live.
func (s *Service) UpdateFitment(tenantID uint, hash string, by string, apply func(*models.Fitment)) (*models.Fitment, error) {
	f, err := s.fitments.GetByHashAny(tenantID, hash)
	if err != nil {
		return nil, fmt.Errorf("fitment not found")
	}

	if f.IsDeleted {
		f.MarkRestored(by)
		log.Infof("[Review] Restoring soft-deleted fitment %s on update", hash)
	}
	apply(f)
	f.UpdatedBy = by

	if err := s.fitments.Update(f); err != nil {
		return nil, err
	}
	return f, nil
}
